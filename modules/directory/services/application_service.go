package services

import (
	"context"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/application"
)

type ApplicationService struct {
	repo application.Repository
}

func NewApplicationService(repo application.Repository) *ApplicationService {
	return &ApplicationService{repo: repo}
}

func (s *ApplicationService) GetAll(ctx context.Context) ([]application.Application, error) {
	return s.repo.GetAll(ctx)
}

func (s *ApplicationService) GetByID(ctx context.Context, id int64) (application.Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ApplicationService) ForDatasets(ctx context.Context, datasetIDs []int64) ([]application.Application, error) {
	return s.repo.ForDatasets(ctx, datasetIDs)
}
