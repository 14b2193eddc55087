package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbp-hq/governance/pkg/serrors"
)

// NewGroup carries the details of a group the request wants created.
type NewGroup struct {
	Name            string
	OwnerEmail      string
	DBPManagerEmail string
}

func (g NewGroup) IsZero() bool {
	return g.Name == "" && g.OwnerEmail == "" && g.DBPManagerEmail == ""
}

// Request is the workflow aggregate. Instances are immutable; mutators
// return a modified copy.
type Request struct {
	id             int64
	typ            Type
	status         Status
	groupID        int64
	newGroup       NewGroup
	datasetIDs     []int64
	memberIDs      []int64
	requesterEmail string
	reason         string
	summary        string
	createdAt      time.Time
	updatedAt      time.Time
}

// New builds a draft request. The payload is not validated here; drafts
// may be saved incomplete and are checked on submission.
func New(typ Type, requesterEmail string) Request {
	return Request{
		typ:            typ,
		status:         StatusDraft,
		requesterEmail: requesterEmail,
	}
}

func Hydrate(
	id int64,
	typ Type,
	status Status,
	groupID int64,
	newGroup NewGroup,
	datasetIDs []int64,
	memberIDs []int64,
	requesterEmail string,
	reason string,
	summary string,
	createdAt time.Time,
	updatedAt time.Time,
) Request {
	return Request{
		id:             id,
		typ:            typ,
		status:         status,
		groupID:        groupID,
		newGroup:       newGroup,
		datasetIDs:     datasetIDs,
		memberIDs:      memberIDs,
		requesterEmail: requesterEmail,
		reason:         reason,
		summary:        summary,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (r Request) ID() int64              { return r.id }
func (r Request) Type() Type             { return r.typ }
func (r Request) Status() Status         { return r.status }
func (r Request) GroupID() int64         { return r.groupID }
func (r Request) NewGroup() NewGroup     { return r.newGroup }
func (r Request) DatasetIDs() []int64    { return r.datasetIDs }
func (r Request) MemberIDs() []int64     { return r.memberIDs }
func (r Request) RequesterEmail() string { return r.requesterEmail }
func (r Request) Reason() string         { return r.reason }
func (r Request) Summary() string        { return r.summary }
func (r Request) CreatedAt() time.Time   { return r.createdAt }
func (r Request) UpdatedAt() time.Time   { return r.updatedAt }

func (r Request) WithID(id int64) Request {
	r.id = id
	return r
}

func (r Request) WithGroupID(groupID int64) Request {
	r.groupID = groupID
	return r
}

func (r Request) WithNewGroup(g NewGroup) Request {
	r.newGroup = g
	return r
}

func (r Request) WithDatasetIDs(ids []int64) Request {
	r.datasetIDs = ids
	return r
}

func (r Request) WithMemberIDs(ids []int64) Request {
	r.memberIDs = ids
	return r
}

func (r Request) WithReason(reason string) Request {
	r.reason = reason
	return r
}

func (r Request) WithSummary(summary string) Request {
	r.summary = summary
	return r
}

// WithStatus transitions the request, enforcing the lifecycle:
// draft -> requested, requested -> approved | rejected | withdrawn.
// Drafts never move to a terminal state directly and terminal states
// are final.
func (r Request) WithStatus(status Status) (Request, error) {
	if !canTransition(r.status, status) {
		return Request{}, serrors.NewConflictError(
			"INVALID_STATUS_TRANSITION",
			fmt.Sprintf("cannot move request from %s to %s", r.status, status),
		)
	}
	r.status = status
	return r, nil
}

func canTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusRequested
	case StatusRequested:
		return to == StatusApproved || to == StatusRejected || to == StatusWithdrawn
	default:
		return false
	}
}

// ValidatePayload checks that the request carries everything its type
// needs before it can be submitted.
func (r Request) ValidatePayload() error {
	errs := serrors.ValidationErrors{}
	if r.requesterEmail == "" {
		errs["requester_email"] = serrors.NewFieldRequiredError("requester_email", "")
	}
	if strings.TrimSpace(r.reason) == "" {
		errs["reason"] = serrors.NewFieldRequiredError("reason", "")
	}
	switch r.typ {
	case TypeDatasetAccess, TypeRemoveDatasetAccess:
		if r.groupID == 0 {
			errs["group_id"] = serrors.NewFieldRequiredError("group_id", "")
		}
		if len(r.datasetIDs) == 0 {
			errs["dataset_ids"] = serrors.NewValidationError("dataset_ids", "at least one dataset is required")
		}
	case TypeAddMembers, TypeRemoveMembers:
		if r.groupID == 0 {
			errs["group_id"] = serrors.NewFieldRequiredError("group_id", "")
		}
		if len(r.memberIDs) == 0 {
			errs["member_ids"] = serrors.NewValidationError("member_ids", "at least one member is required")
		}
	case TypeCreateGroup:
		if r.newGroup.Name == "" {
			errs["group_name"] = serrors.NewFieldRequiredError("group_name", "")
		}
	case TypeRemoveGroup:
		if r.groupID == 0 {
			errs["group_id"] = serrors.NewFieldRequiredError("group_id", "")
		}
	default:
		errs["type"] = serrors.NewValidationError("type", fmt.Sprintf("unknown request type: %q", r.typ))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
