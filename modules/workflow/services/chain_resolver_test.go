package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/modules/workflow/services"
	"github.com/dbp-hq/governance/pkg/serrors"
)

func TestChainResolver_DatasetRequest(t *testing.T) {
	t.Parallel()
	f := newFixture()

	res, err := f.resolver.Resolve(context.Background(), datasetRequest("tanaka@example.com"))
	require.NoError(t, err)

	require.Len(t, res.Entries, 3)
	assert.Equal(t, services.Entry{Role: request.RoleGroupOwner, Order: 1, Email: "tanaka@example.com", Name: "Aiko Tanaka"}, res.Entries[0])
	assert.Equal(t, services.Entry{Role: request.RoleDataManager, Order: 2, Email: "matsumoto@example.com", Name: "Matsumoto"}, res.Entries[1])
	assert.Equal(t, services.Entry{Role: request.RoleAppOwner, Order: 3, Email: "rao@example.com", Name: "Chandra Rao"}, res.Entries[2])
}

func TestChainResolver_AppOwnersDedupedAcrossApplications(t *testing.T) {
	t.Parallel()
	f := newFixture()

	res, err := f.resolver.Resolve(context.Background(), datasetRequest("tanaka@example.com"))
	require.NoError(t, err)

	require.Len(t, res.AppOwners, 1)
	assert.Equal(t, "rao@example.com", res.AppOwners[0].Owner.Email)
	assert.ElementsMatch(t, []string{"Insights Portal", "Billing Console"}, res.AppOwners[0].AppNames)
}

func TestChainResolver_OwnerlessGroupSkipsFirstTier(t *testing.T) {
	t.Parallel()
	f := newFixture()

	req := request.New(request.TypeAddMembers, "tanaka@example.com").
		WithGroupID(ownerlessGroupID).
		WithMemberIDs([]int64{3})
	res, err := f.resolver.Resolve(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, request.RoleDataManager, res.Entries[0].Role)
}

func TestChainResolver_MemberRequestHasNoAppOwnerTier(t *testing.T) {
	t.Parallel()
	f := newFixture()

	req := request.New(request.TypeRemoveMembers, "tanaka@example.com").
		WithGroupID(analyticsGroupID).
		WithMemberIDs([]int64{5})
	res, err := f.resolver.Resolve(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, request.RoleGroupOwner, res.Entries[0].Role)
	assert.Equal(t, request.RoleDataManager, res.Entries[1].Role)
	require.Len(t, res.Members, 1)
	assert.Equal(t, "fox@example.com", res.Members[0].Email())
}

func TestChainResolver_CreateGroupUsesRequestedOwner(t *testing.T) {
	t.Parallel()
	f := newFixture()

	req := request.New(request.TypeCreateGroup, "rao@example.com").
		WithNewGroup(request.NewGroup{
			Name:            "ml-platform",
			OwnerEmail:      "rao@example.com",
			DBPManagerEmail: "carter@example.com",
		})
	res, err := f.resolver.Resolve(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "rao@example.com", res.Entries[0].Email)
	assert.Equal(t, "Ben Carter", res.DBPManager.Name)
}

func TestChainResolver_UnknownGroup(t *testing.T) {
	t.Parallel()
	f := newFixture()

	req := datasetRequest("tanaka@example.com").WithGroupID(999)
	_, err := f.resolver.Resolve(context.Background(), req)
	var notFoundErr *serrors.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, "group", notFoundErr.Entity)
}

func TestChainResolver_UnknownDataset(t *testing.T) {
	t.Parallel()
	f := newFixture()

	req := datasetRequest("tanaka@example.com").WithDatasetIDs([]int64{customerEventsID, 888})
	_, err := f.resolver.Resolve(context.Background(), req)
	var notFoundErr *serrors.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, "dataset", notFoundErr.Entity)
}

func TestChainResolver_DBPManagerNeverHoldsASlot(t *testing.T) {
	t.Parallel()
	f := newFixture()

	res, err := f.resolver.Resolve(context.Background(), datasetRequest("tanaka@example.com"))
	require.NoError(t, err)

	for _, e := range res.Entries {
		assert.NotEqual(t, "carter@example.com", e.Email)
	}
	assert.Equal(t, "carter@example.com", res.DBPManager.Email)
}
