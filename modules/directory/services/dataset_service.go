package services

import (
	"context"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
)

type DatasetService struct {
	datasets dataset.Repository
	apps     application.Repository
}

func NewDatasetService(datasets dataset.Repository, apps application.Repository) *DatasetService {
	return &DatasetService{datasets: datasets, apps: apps}
}

func (s *DatasetService) GetAll(ctx context.Context) ([]dataset.Dataset, error) {
	return s.datasets.GetAll(ctx)
}

func (s *DatasetService) GetByID(ctx context.Context, id int64) (dataset.Dataset, error) {
	return s.datasets.GetByID(ctx, id)
}

func (s *DatasetService) GetByIDs(ctx context.Context, ids []int64) ([]dataset.Dataset, error) {
	return s.datasets.GetByIDs(ctx, ids)
}

// LinkedApplications returns the applications reading from the dataset.
func (s *DatasetService) LinkedApplications(ctx context.Context, datasetID int64) ([]application.Application, error) {
	if _, err := s.datasets.GetByID(ctx, datasetID); err != nil {
		return nil, err
	}
	return s.apps.ForDatasets(ctx, []int64{datasetID})
}
