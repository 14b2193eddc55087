package request

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("request not found")

// Repository persists requests together with their approval chains.
type Repository interface {
	GetByID(ctx context.Context, id int64) (Request, error)
	// GetByIDForUpdate locks the request row for the rest of the
	// transaction so concurrent decisions serialize.
	GetByIDForUpdate(ctx context.Context, id int64) (Request, error)
	GetByRequester(ctx context.Context, requesterEmail string, statuses []Status) ([]Request, error)
	// GetByDBPManager lists submitted requests whose target group is
	// managed by the given DBP manager email.
	GetByDBPManager(ctx context.Context, email string) ([]Request, error)
	// GetByBusinessOwner lists submitted dataset requests touching any
	// dataset linked to an application with the given business owner.
	GetByBusinessOwner(ctx context.Context, email string) ([]Request, error)
	Create(ctx context.Context, r Request) (Request, error)
	Update(ctx context.Context, r Request) (Request, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status Status) error

	Approvals(ctx context.Context, requestID int64) ([]Approval, error)
	// ReplaceApprovals drops any existing chain for the request and
	// stores the given approvals in its place.
	ReplaceApprovals(ctx context.Context, requestID int64, approvals []Approval) ([]Approval, error)
	// SetApprovalDecision moves a single pending approval to the given
	// status and returns the number of rows affected. Zero means the
	// slot was absent or already decided.
	SetApprovalDecision(ctx context.Context, requestID int64, role Role, approverEmail string, status ApprovalStatus, comment string) (int64, error)
	// WithdrawPendingApprovals marks every pending approval of the
	// request as withdrawn.
	WithdrawPendingApprovals(ctx context.Context, requestID int64) error
	CountPending(ctx context.Context, requestID int64) (int64, error)
	// PendingForApprover lists submitted requests holding a pending
	// approval slot for the given approver email.
	PendingForApprover(ctx context.Context, approverEmail string) ([]Request, error)
}
