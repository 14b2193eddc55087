package services

import (
	"context"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
)

type GroupService struct {
	groups   group.Repository
	datasets dataset.Repository
	users    user.Repository
}

func NewGroupService(groups group.Repository, datasets dataset.Repository, users user.Repository) *GroupService {
	return &GroupService{groups: groups, datasets: datasets, users: users}
}

func (s *GroupService) GetAll(ctx context.Context) ([]group.Group, error) {
	return s.groups.GetAll(ctx)
}

func (s *GroupService) GetByID(ctx context.Context, id int64) (group.Group, error) {
	return s.groups.GetByID(ctx, id)
}

func (s *GroupService) GetForUser(ctx context.Context, userID int64) ([]group.Group, error) {
	return s.groups.GetForUser(ctx, userID)
}

func (s *GroupService) Members(ctx context.Context, groupID int64) ([]user.User, error) {
	ids, err := s.groups.MemberIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.users.GetByIDs(ctx, ids)
}

// DatasetsWithAccess returns datasets the group can already read.
func (s *GroupService) DatasetsWithAccess(ctx context.Context, groupID int64) ([]dataset.Dataset, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.datasets.AccessibleByGroup(ctx, groupID)
}

// DatasetsForRequest returns datasets the group could request access to.
func (s *GroupService) DatasetsForRequest(ctx context.Context, groupID int64) ([]dataset.Dataset, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.datasets.AvailableForGroup(ctx, groupID)
}
