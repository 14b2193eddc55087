package dataset

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("dataset not found")

type Repository interface {
	GetAll(ctx context.Context) ([]Dataset, error)
	GetByID(ctx context.Context, id int64) (Dataset, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Dataset, error)
	// AccessibleByGroup returns datasets the group is already linked to.
	AccessibleByGroup(ctx context.Context, groupID int64) ([]Dataset, error)
	// AvailableForGroup returns datasets the group has no link to yet,
	// i.e. candidates for an access request.
	AvailableForGroup(ctx context.Context, groupID int64) ([]Dataset, error)
}
