package services

import (
	"context"
	"strings"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
)

type UserService struct {
	repo user.Repository
}

func NewUserService(repo user.Repository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetAll(ctx context.Context) ([]user.User, error) {
	return s.repo.GetAll(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}
