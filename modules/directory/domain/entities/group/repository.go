package group

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("group not found")

type Repository interface {
	GetAll(ctx context.Context) ([]Group, error)
	GetByID(ctx context.Context, id int64) (Group, error)
	GetForUser(ctx context.Context, userID int64) ([]Group, error)
	MemberIDs(ctx context.Context, groupID int64) ([]int64, error)
	// IsOwnerOrManager reports whether the email is registered as the owner
	// or the DBP manager of any group.
	IsOwnerOrManager(ctx context.Context, email string) (bool, error)
}
