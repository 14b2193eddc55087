package request_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
)

func TestUpsertDTO_Ok(t *testing.T) {
	t.Parallel()

	dto := request.UpsertDTO{
		Type:           "dataset_access",
		GroupID:        10,
		DatasetIDs:     []int64{20},
		RequesterEmail: "  tanaka@example.com  ",
	}
	errs, ok := dto.Ok()
	require.True(t, ok, "unexpected errors: %v", errs)
	assert.Equal(t, "tanaka@example.com", dto.RequesterEmail)
}

func TestUpsertDTO_Ok_RequesterRequired(t *testing.T) {
	t.Parallel()

	dto := request.UpsertDTO{Type: "add_members"}
	errs, ok := dto.Ok()
	require.False(t, ok)
	assert.Contains(t, errs, "RequesterEmail")
}

func TestUpsertDTO_Ok_UnknownType(t *testing.T) {
	t.Parallel()

	dto := request.UpsertDTO{Type: "escalate", RequesterEmail: "tanaka@example.com"}
	errs, ok := dto.Ok()
	require.False(t, ok)
	assert.Contains(t, errs, "Type")
}

func TestUpsertDTO_ToEntity_LegacyEmptyType(t *testing.T) {
	t.Parallel()

	dto := request.UpsertDTO{RequesterEmail: "tanaka@example.com"}
	entity := dto.ToEntity()
	assert.Equal(t, request.TypeDatasetAccess, entity.Type())
	assert.Equal(t, request.StatusDraft, entity.Status())
}

func TestDecisionDTO_Ok(t *testing.T) {
	t.Parallel()

	dto := request.DecisionDTO{ApproverEmail: "not-an-email"}
	_, ok := dto.Ok()
	assert.False(t, ok)

	dto = request.DecisionDTO{ApproverEmail: "rao@example.com", Comment: " fine "}
	_, ok = dto.Ok()
	assert.True(t, ok)
	assert.Equal(t, "fine", dto.Comment)
}
