package request_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/pkg/serrors"
)

func TestRequest_Lifecycle(t *testing.T) {
	t.Parallel()

	draft := request.New(request.TypeDatasetAccess, "tanaka@example.com")
	assert.Equal(t, request.StatusDraft, draft.Status())

	submitted, err := draft.WithStatus(request.StatusRequested)
	require.NoError(t, err)
	assert.Equal(t, request.StatusRequested, submitted.Status())

	approved, err := submitted.WithStatus(request.StatusApproved)
	require.NoError(t, err)
	assert.True(t, approved.Status().IsTerminal())
}

func TestRequest_DraftCannotJumpToTerminal(t *testing.T) {
	t.Parallel()

	draft := request.New(request.TypeDatasetAccess, "tanaka@example.com")
	for _, status := range []request.Status{
		request.StatusApproved,
		request.StatusRejected,
		request.StatusWithdrawn,
	} {
		_, err := draft.WithStatus(status)
		var conflictErr *serrors.ConflictError
		assert.True(t, errors.As(err, &conflictErr), "draft -> %s should conflict", status)
	}
}

func TestRequest_TerminalStatesAreFinal(t *testing.T) {
	t.Parallel()

	submitted, err := request.New(request.TypeAddMembers, "tanaka@example.com").WithStatus(request.StatusRequested)
	require.NoError(t, err)
	rejected, err := submitted.WithStatus(request.StatusRejected)
	require.NoError(t, err)

	_, err = rejected.WithStatus(request.StatusRequested)
	assert.Error(t, err)
	_, err = rejected.WithStatus(request.StatusApproved)
	assert.Error(t, err)
}

func TestValidatePayload_DatasetAccess(t *testing.T) {
	t.Parallel()

	req := request.New(request.TypeDatasetAccess, "tanaka@example.com")
	err := req.ValidatePayload()
	var errs serrors.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "group_id")
	assert.Contains(t, errs, "dataset_ids")
	assert.Contains(t, errs, "reason")

	req = req.WithGroupID(1).WithDatasetIDs([]int64{2, 3}).WithReason("access for reporting")
	assert.NoError(t, req.ValidatePayload())
}

func TestValidatePayload_Members(t *testing.T) {
	t.Parallel()

	req := request.New(request.TypeRemoveMembers, "tanaka@example.com").WithGroupID(1)
	err := req.ValidatePayload()
	var errs serrors.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "member_ids")

	req = req.WithMemberIDs([]int64{5}).WithReason("offboarding")
	assert.NoError(t, req.ValidatePayload())
}

func TestValidatePayload_CreateGroup(t *testing.T) {
	t.Parallel()

	req := request.New(request.TypeCreateGroup, "tanaka@example.com")
	err := req.ValidatePayload()
	var errs serrors.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "group_name")

	req = req.WithNewGroup(request.NewGroup{Name: "analytics"}).WithReason("new team")
	assert.NoError(t, req.ValidatePayload())
}

func TestValidatePayload_RequesterRequired(t *testing.T) {
	t.Parallel()

	req := request.New(request.TypeRemoveGroup, "").WithGroupID(9)
	err := req.ValidatePayload()
	var errs serrors.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Contains(t, errs, "requester_email")
}
