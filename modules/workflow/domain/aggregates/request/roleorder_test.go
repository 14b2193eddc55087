package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
)

func TestRoleOrder_DatasetTypesIncludeAppOwnerTier(t *testing.T) {
	t.Parallel()

	for _, typ := range []request.Type{request.TypeDatasetAccess, request.TypeRemoveDatasetAccess} {
		order := request.RoleOrder(typ)
		assert.Equal(t, []request.Role{request.RoleGroupOwner, request.RoleDataManager, request.RoleAppOwner}, order)
	}
}

func TestRoleOrder_GroupTypesHaveTwoTiers(t *testing.T) {
	t.Parallel()

	for _, typ := range []request.Type{
		request.TypeAddMembers,
		request.TypeRemoveMembers,
		request.TypeCreateGroup,
		request.TypeRemoveGroup,
	} {
		order := request.RoleOrder(typ)
		assert.Equal(t, []request.Role{request.RoleGroupOwner, request.RoleDataManager}, order)
	}
}

func TestRoleRank(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, request.RoleRank(request.TypeDatasetAccess, request.RoleGroupOwner))
	assert.Equal(t, 2, request.RoleRank(request.TypeDatasetAccess, request.RoleDataManager))
	assert.Equal(t, 3, request.RoleRank(request.TypeDatasetAccess, request.RoleAppOwner))
	assert.Equal(t, 0, request.RoleRank(request.TypeAddMembers, request.RoleAppOwner))
}

func TestParseType_EmptyStringMeansDatasetAccess(t *testing.T) {
	t.Parallel()

	typ, err := request.ParseType("")
	assert.NoError(t, err)
	assert.Equal(t, request.TypeDatasetAccess, typ)
}

func TestParseType_Unknown(t *testing.T) {
	t.Parallel()

	_, err := request.ParseType("grant_superpowers")
	assert.Error(t, err)
}
