package user

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByEmails(ctx context.Context, emails []string) ([]User, error)
}
