package request

import "time"

type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalWithdrawn ApprovalStatus = "withdrawn"
)

// Approval is one approver's slot in a request's chain. A chain holds
// one approval per (role, approver) pair; tiers with several approvers,
// such as application owners on dataset requests, hold several slots
// with the same order.
type Approval struct {
	id            int64
	requestID     int64
	role          Role
	order         int
	approverEmail string
	approverName  string
	status        ApprovalStatus
	comment       string
	decidedAt     *time.Time
}

func NewApproval(requestID int64, role Role, order int, approverEmail, approverName string) Approval {
	return Approval{
		requestID:     requestID,
		role:          role,
		order:         order,
		approverEmail: approverEmail,
		approverName:  approverName,
		status:        ApprovalPending,
	}
}

func HydrateApproval(
	id int64,
	requestID int64,
	role Role,
	order int,
	approverEmail string,
	approverName string,
	status ApprovalStatus,
	comment string,
	decidedAt *time.Time,
) Approval {
	return Approval{
		id:            id,
		requestID:     requestID,
		role:          role,
		order:         order,
		approverEmail: approverEmail,
		approverName:  approverName,
		status:        status,
		comment:       comment,
		decidedAt:     decidedAt,
	}
}

func (a Approval) ID() int64             { return a.id }
func (a Approval) RequestID() int64      { return a.requestID }
func (a Approval) Role() Role            { return a.role }
func (a Approval) Order() int            { return a.order }
func (a Approval) ApproverEmail() string { return a.approverEmail }
func (a Approval) ApproverName() string  { return a.approverName }
func (a Approval) Status() ApprovalStatus {
	return a.status
}
func (a Approval) Comment() string       { return a.comment }
func (a Approval) DecidedAt() *time.Time { return a.decidedAt }

func (a Approval) IsPending() bool { return a.status == ApprovalPending }
