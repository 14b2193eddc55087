package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appentity "github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	"github.com/dbp-hq/governance/modules/directory/infrastructure/persistence"
	"github.com/dbp-hq/governance/modules/directory/services"
	"github.com/dbp-hq/governance/pkg/serrors"
)

type fixture struct {
	users    *persistence.InmemUserRepository
	groups   *persistence.InmemGroupRepository
	datasets *persistence.InmemDatasetRepository
	apps     *persistence.InmemApplicationRepository
}

func newFixture() *fixture {
	users := persistence.NewInmemUserRepository()
	users.Add(user.Hydrate(1, "E001", "Aiko Tanaka", "tanaka@example.com", "atanaka"))
	users.Add(user.Hydrate(2, "E002", "Ben Carter", "carter@example.com", ""))
	users.Add(user.Hydrate(3, "E003", "Chandra Rao", "rao@example.com", "crao"))
	users.Add(user.Hydrate(4, "E004", "Matsumoto", "matsumoto@example.com", ""))
	users.Add(user.Hydrate(5, "E005", "Dana Fox", "fox@example.com", ""))

	groups := persistence.NewInmemGroupRepository()
	groups.Add(group.Hydrate(10, "analytics", "tanaka@example.com", "carter@example.com"), 1, 5)

	datasets := persistence.NewInmemDatasetRepository()
	datasets.Add(dataset.Hydrate(20, "DS-001", "Customer Events"))
	datasets.Add(dataset.Hydrate(21, "DS-002", "Billing Ledger"))
	datasets.LinkGroup(10, 20)

	apps := persistence.NewInmemApplicationRepository()
	apps.Add(appentity.Hydrate(30, "APP-001", "Insights Portal", "rao@example.com", "carter@example.com"), 20)

	return &fixture{users: users, groups: groups, datasets: datasets, apps: apps}
}

func (f *fixture) authService() *services.AuthService {
	return services.NewAuthService(f.users, f.groups, f.apps, "matsumoto@example.com")
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	f := newFixture()

	result, err := f.authService().Login(context.Background(), "fox@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Dana Fox", result.User.Name())
	assert.False(t, result.IsApprover)
}

func TestAuthService_Login_Approvers(t *testing.T) {
	t.Parallel()
	f := newFixture()
	auth := f.authService()

	cases := map[string]string{
		"group owner":       "tanaka@example.com",
		"dbp manager":       "carter@example.com",
		"application owner": "rao@example.com",
		"data manager":      "matsumoto@example.com",
	}
	for name, email := range cases {
		result, err := auth.Login(context.Background(), email)
		require.NoError(t, err, name)
		assert.True(t, result.IsApprover, name)
	}
}

func TestAuthService_Login_BlankEmail(t *testing.T) {
	t.Parallel()
	f := newFixture()

	_, err := f.authService().Login(context.Background(), "   ")
	var validationErr *serrors.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "email", validationErr.Field)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()
	f := newFixture()

	_, err := f.authService().Login(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestGroupService_Members(t *testing.T) {
	t.Parallel()
	f := newFixture()
	svc := services.NewGroupService(f.groups, f.datasets, f.users)

	members, err := svc.Members(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Aiko Tanaka", members[0].Name())
	assert.Equal(t, "Dana Fox", members[1].Name())
}

func TestGroupService_DatasetSplit(t *testing.T) {
	t.Parallel()
	f := newFixture()
	svc := services.NewGroupService(f.groups, f.datasets, f.users)
	ctx := context.Background()

	withAccess, err := svc.DatasetsWithAccess(ctx, 10)
	require.NoError(t, err)
	require.Len(t, withAccess, 1)
	assert.Equal(t, "DS-001", withAccess[0].Code())

	forRequest, err := svc.DatasetsForRequest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, forRequest, 1)
	assert.Equal(t, "DS-002", forRequest[0].Code())
}

func TestGroupService_UnknownGroup(t *testing.T) {
	t.Parallel()
	f := newFixture()
	svc := services.NewGroupService(f.groups, f.datasets, f.users)

	_, err := svc.DatasetsForRequest(context.Background(), 999)
	assert.ErrorIs(t, err, group.ErrNotFound)
}

func TestDatasetService_LinkedApplications(t *testing.T) {
	t.Parallel()
	f := newFixture()
	svc := services.NewDatasetService(f.datasets, f.apps)

	apps, err := svc.LinkedApplications(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Insights Portal", apps[0].Name())
}

func TestUserService_DisplayHandle(t *testing.T) {
	t.Parallel()
	f := newFixture()
	svc := services.NewUserService(f.users)

	withUsername, err := svc.GetByEmail(context.Background(), "tanaka@example.com")
	require.NoError(t, err)
	assert.Equal(t, "atanaka", withUsername.DisplayHandle())

	withoutUsername, err := svc.GetByEmail(context.Background(), "carter@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ben Carter", withoutUsername.DisplayHandle())
}
