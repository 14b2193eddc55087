package application

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("application not found")

type Repository interface {
	GetAll(ctx context.Context) ([]Application, error)
	GetByID(ctx context.Context, id int64) (Application, error)
	// ForDatasets returns the distinct applications linked to any of the
	// given datasets, ordered by name.
	ForDatasets(ctx context.Context, datasetIDs []int64) ([]Application, error)
	// IsOwner reports whether the email owns any application.
	IsOwner(ctx context.Context, email string) (bool, error)
}
