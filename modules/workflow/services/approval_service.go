package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/pkg/composables"
	"github.com/dbp-hq/governance/pkg/eventbus"
	"github.com/dbp-hq/governance/pkg/serrors"
)

// PendingItem is one entry in an approver's queue. CanDecide reports
// whether every earlier tier has already approved, i.e. whether a
// decision on this slot would be accepted right now.
type PendingItem struct {
	Request   request.Request
	Approval  request.Approval
	CanDecide bool
}

type ApprovalService struct {
	repo      request.Repository
	publisher eventbus.EventBus
}

func NewApprovalService(repo request.Repository, publisher eventbus.EventBus) *ApprovalService {
	return &ApprovalService{repo: repo, publisher: publisher}
}

func (s *ApprovalService) Approve(ctx context.Context, requestID int64, approverEmail, comment string) (RequestDetail, error) {
	return s.decide(ctx, requestID, approverEmail, comment, true)
}

func (s *ApprovalService) Reject(ctx context.Context, requestID int64, approverEmail, comment string) (RequestDetail, error) {
	return s.decide(ctx, requestID, approverEmail, comment, false)
}

// decide records one approver's decision. The request row is locked so
// concurrent decisions on the same request serialize. A decision is only
// accepted once every slot in a strictly earlier tier has approved;
// slots sharing the approver's tier never gate each other. Rejection is
// final and moves the whole request to rejected. Approval moves the
// request to approved once no pending slot remains.
func (s *ApprovalService) decide(ctx context.Context, requestID int64, approverEmail, comment string, approve bool) (RequestDetail, error) {
	var (
		detail RequestDetail
		slot   request.Approval
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			return err
		}
		if req.Status() != request.StatusRequested {
			return serrors.NewConflictError(
				"REQUEST_NOT_DECIDABLE",
				fmt.Sprintf("request is %s and no longer accepts decisions", req.Status()),
			)
		}

		approvals, err := s.repo.Approvals(txCtx, requestID)
		if err != nil {
			return err
		}
		slot, err = findPendingSlot(approvals, approverEmail)
		if err != nil {
			return err
		}
		if !earlierTiersApproved(approvals, slot.Order()) {
			return serrors.NewOutOfOrderError(
				string(slot.Role()),
				"earlier approval tiers have not approved yet",
			)
		}

		decision := request.ApprovalApproved
		if !approve {
			decision = request.ApprovalRejected
		}
		affected, err := s.repo.SetApprovalDecision(txCtx, requestID, slot.Role(), approverEmail, decision, comment)
		if err != nil {
			return err
		}
		if affected == 0 {
			return serrors.NewConflictError("APPROVAL_ALREADY_DECIDED", "this approval has already been decided")
		}

		if !approve {
			if err := s.repo.SetStatus(txCtx, requestID, request.StatusRejected); err != nil {
				return err
			}
		} else {
			pending, err := s.repo.CountPending(txCtx, requestID)
			if err != nil {
				return err
			}
			if pending == 0 {
				if err := s.repo.SetStatus(txCtx, requestID, request.StatusApproved); err != nil {
					return err
				}
			}
		}

		req, err = s.repo.GetByID(txCtx, requestID)
		if err != nil {
			return err
		}
		updated, err := s.repo.Approvals(txCtx, requestID)
		if err != nil {
			return err
		}
		detail = RequestDetail{Request: req, Approvals: updated}
		return nil
	})
	if err != nil {
		return RequestDetail{}, err
	}
	s.publisher.Publish(request.DecidedEvent{
		Result:        detail.Request,
		Role:          slot.Role(),
		ApproverEmail: approverEmail,
		Approved:      approve,
	})
	return detail, nil
}

// PendingForApprover lists every submitted request waiting on the given
// approver, most recently updated first.
func (s *ApprovalService) PendingForApprover(ctx context.Context, approverEmail string) ([]PendingItem, error) {
	var items []PendingItem
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		requests, err := s.repo.PendingForApprover(txCtx, approverEmail)
		if err != nil {
			return err
		}
		items = make([]PendingItem, 0, len(requests))
		for _, req := range requests {
			approvals, err := s.repo.Approvals(txCtx, req.ID())
			if err != nil {
				return err
			}
			slot, err := findPendingSlot(approvals, approverEmail)
			if err != nil {
				continue
			}
			items = append(items, PendingItem{
				Request:   req,
				Approval:  slot,
				CanDecide: earlierTiersApproved(approvals, slot.Order()),
			})
		}
		return nil
	})
	return items, err
}

// findPendingSlot picks the approver's pending slot with the earliest
// tier. Approvers appearing in several tiers decide them one at a time.
func findPendingSlot(approvals []request.Approval, approverEmail string) (request.Approval, error) {
	var candidates []request.Approval
	for _, a := range approvals {
		if a.ApproverEmail() == approverEmail && a.IsPending() {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return request.Approval{}, serrors.NewNotFoundError("approval", "no pending approval for this approver")
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Order() < candidates[j].Order()
	})
	return candidates[0], nil
}

func earlierTiersApproved(approvals []request.Approval, order int) bool {
	for _, a := range approvals {
		if a.Order() < order && a.Status() != request.ApprovalApproved {
			return false
		}
	}
	return true
}
