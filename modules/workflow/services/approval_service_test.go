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

func submitDatasetRequest(t *testing.T, f *fixture) services.RequestDetail {
	t.Helper()
	detail, err := f.requests.Submit(context.Background(), datasetRequest("tanaka@example.com"))
	require.NoError(t, err)
	return detail
}

func TestApprovalService_FullApprovalFlow(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	detail := submitDatasetRequest(t, f)
	id := detail.Request.ID()

	after, err := f.approvals.Approve(ctx, id, "tanaka@example.com", "fine by me")
	require.NoError(t, err)
	assert.Equal(t, request.StatusRequested, after.Request.Status())

	after, err = f.approvals.Approve(ctx, id, "matsumoto@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, request.StatusRequested, after.Request.Status())

	after, err = f.approvals.Approve(ctx, id, "rao@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, after.Request.Status())
	for _, a := range after.Approvals {
		assert.Equal(t, request.ApprovalApproved, a.Status())
	}
}

func TestApprovalService_OutOfOrderApprove(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	id := submitDatasetRequest(t, f).Request.ID()

	_, err := f.approvals.Approve(ctx, id, "matsumoto@example.com", "")
	var outOfOrderErr *serrors.OutOfOrderError
	require.True(t, errors.As(err, &outOfOrderErr))
	assert.Equal(t, string(request.RoleDataManager), outOfOrderErr.Role)

	_, err = f.approvals.Approve(ctx, id, "rao@example.com", "")
	require.True(t, errors.As(err, &outOfOrderErr))
}

func TestApprovalService_OutOfOrderReject(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	id := submitDatasetRequest(t, f).Request.ID()

	_, err := f.approvals.Reject(ctx, id, "matsumoto@example.com", "not like this")
	var outOfOrderErr *serrors.OutOfOrderError
	require.True(t, errors.As(err, &outOfOrderErr))

	detail, err := f.requests.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, request.StatusRequested, detail.Request.Status())
}

func TestApprovalService_RejectIsFinal(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	id := submitDatasetRequest(t, f).Request.ID()

	_, err := f.approvals.Approve(ctx, id, "tanaka@example.com", "")
	require.NoError(t, err)

	after, err := f.approvals.Reject(ctx, id, "matsumoto@example.com", "scope too broad")
	require.NoError(t, err)
	assert.Equal(t, request.StatusRejected, after.Request.Status())

	_, err = f.approvals.Approve(ctx, id, "rao@example.com", "")
	var conflictErr *serrors.ConflictError
	require.True(t, errors.As(err, &conflictErr))
}

func TestApprovalService_DistinctAppOwnersApproveInEitherOrder(t *testing.T) {
	t.Parallel()

	orders := map[string][]string{
		"fox first": {"fox@example.com", "rao@example.com"},
		"rao first": {"rao@example.com", "fox@example.com"},
	}
	for name, owners := range orders {
		owners := owners
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			ctx := context.Background()

			detail, err := f.requests.Submit(ctx, crossAppRequest("tanaka@example.com"))
			require.NoError(t, err)
			require.Len(t, detail.Approvals, 4)
			id := detail.Request.ID()

			_, err = f.approvals.Approve(ctx, id, "tanaka@example.com", "")
			require.NoError(t, err)
			_, err = f.approvals.Approve(ctx, id, "matsumoto@example.com", "")
			require.NoError(t, err)

			after, err := f.approvals.Approve(ctx, id, owners[0], "")
			require.NoError(t, err)
			assert.Equal(t, request.StatusRequested, after.Request.Status())

			after, err = f.approvals.Approve(ctx, id, owners[1], "")
			require.NoError(t, err)
			assert.Equal(t, request.StatusApproved, after.Request.Status())
		})
	}
}

func TestApprovalService_AppOwnerRejectWithSiblingPending(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	detail, err := f.requests.Submit(ctx, crossAppRequest("tanaka@example.com"))
	require.NoError(t, err)
	id := detail.Request.ID()

	_, err = f.approvals.Approve(ctx, id, "tanaka@example.com", "")
	require.NoError(t, err)
	_, err = f.approvals.Approve(ctx, id, "matsumoto@example.com", "")
	require.NoError(t, err)

	after, err := f.approvals.Reject(ctx, id, "fox@example.com", "churn data is off limits")
	require.NoError(t, err)
	assert.Equal(t, request.StatusRejected, after.Request.Status())

	byEmail := make(map[string]request.ApprovalStatus, len(after.Approvals))
	for _, a := range after.Approvals {
		byEmail[a.ApproverEmail()] = a.Status()
	}
	assert.Equal(t, request.ApprovalRejected, byEmail["fox@example.com"])
	assert.Equal(t, request.ApprovalPending, byEmail["rao@example.com"])

	_, err = f.approvals.Approve(ctx, id, "rao@example.com", "")
	var conflictErr *serrors.ConflictError
	require.True(t, errors.As(err, &conflictErr))
}

func TestApprovalService_UnknownApprover(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	id := submitDatasetRequest(t, f).Request.ID()

	_, err := f.approvals.Approve(ctx, id, "fox@example.com", "")
	var notFoundErr *serrors.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
}

func TestApprovalService_DecidedSlotCannotBeDecidedAgain(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	id := submitDatasetRequest(t, f).Request.ID()

	_, err := f.approvals.Approve(ctx, id, "tanaka@example.com", "")
	require.NoError(t, err)

	_, err = f.approvals.Approve(ctx, id, "tanaka@example.com", "")
	var notFoundErr *serrors.NotFoundError
	require.True(t, errors.As(err, &notFoundErr))
}

func TestApprovalService_OwnerlessGroupStartsAtDataManager(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	req := request.New(request.TypeAddMembers, "rao@example.com").
		WithGroupID(ownerlessGroupID).
		WithMemberIDs([]int64{3}).
		WithReason("onboarding")
	detail, err := f.requests.Submit(ctx, req)
	require.NoError(t, err)

	after, err := f.approvals.Approve(ctx, detail.Request.ID(), "matsumoto@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, after.Request.Status())
}

func TestApprovalService_PendingForApprover(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	id := submitDatasetRequest(t, f).Request.ID()

	items, err := f.approvals.PendingForApprover(ctx, "tanaka@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].CanDecide)

	items, err = f.approvals.PendingForApprover(ctx, "rao@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].CanDecide)

	_, err = f.approvals.Approve(ctx, id, "tanaka@example.com", "")
	require.NoError(t, err)
	_, err = f.approvals.Approve(ctx, id, "matsumoto@example.com", "")
	require.NoError(t, err)

	items, err = f.approvals.PendingForApprover(ctx, "rao@example.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].CanDecide)

	items, err = f.approvals.PendingForApprover(ctx, "tanaka@example.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestApprovalService_WithdrawnRequestLeavesQueues(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	id := submitDatasetRequest(t, f).Request.ID()

	_, err := f.requests.Withdraw(ctx, id, "tanaka@example.com")
	require.NoError(t, err)

	items, err := f.approvals.PendingForApprover(ctx, "tanaka@example.com")
	require.NoError(t, err)
	assert.Empty(t, items)
}
