package services

import (
	"context"
	"strings"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	"github.com/dbp-hq/governance/pkg/serrors"
)

type AuthService struct {
	users            user.Repository
	groups           group.Repository
	apps             application.Repository
	dataManagerEmail string
}

func NewAuthService(
	users user.Repository,
	groups group.Repository,
	apps application.Repository,
	dataManagerEmail string,
) *AuthService {
	return &AuthService{
		users:            users,
		groups:           groups,
		apps:             apps,
		dataManagerEmail: strings.TrimSpace(dataManagerEmail),
	}
}

type LoginResult struct {
	User       user.User
	IsApprover bool
}

// Login resolves an identity by email. An approver is anyone who owns or
// manages a group, owns an application, or is the fixed data manager.
func (s *AuthService) Login(ctx context.Context, email string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return LoginResult{}, serrors.NewFieldRequiredError("email", "")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}

	isApprover, err := s.isApprover(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: u, IsApprover: isApprover}, nil
}

func (s *AuthService) isApprover(ctx context.Context, email string) (bool, error) {
	if email == s.dataManagerEmail {
		return true, nil
	}
	if ok, err := s.groups.IsOwnerOrManager(ctx, email); err != nil || ok {
		return ok, err
	}
	return s.apps.IsOwner(ctx, email)
}
