package services

import (
	"context"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/modules/workflow/domain/summary"
	"github.com/dbp-hq/governance/pkg/composables"
	"github.com/dbp-hq/governance/pkg/eventbus"
	"github.com/dbp-hq/governance/pkg/serrors"
)

// RequestDetail pairs a request with its approval chain.
type RequestDetail struct {
	Request   request.Request
	Approvals []request.Approval
}

type RequestService struct {
	repo      request.Repository
	users     user.Repository
	resolver  *ChainResolver
	publisher eventbus.EventBus
}

func NewRequestService(
	repo request.Repository,
	users user.Repository,
	resolver *ChainResolver,
	publisher eventbus.EventBus,
) *RequestService {
	return &RequestService{
		repo:      repo,
		users:     users,
		resolver:  resolver,
		publisher: publisher,
	}
}

func (s *RequestService) GetByID(ctx context.Context, id int64) (RequestDetail, error) {
	var detail RequestDetail
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		approvals, err := s.repo.Approvals(txCtx, id)
		if err != nil {
			return err
		}
		detail = RequestDetail{Request: req, Approvals: approvals}
		return nil
	})
	return detail, err
}

func (s *RequestService) Drafts(ctx context.Context, requesterEmail string) ([]request.Request, error) {
	var out []request.Request
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = s.repo.GetByRequester(txCtx, requesterEmail, []request.Status{request.StatusDraft})
		return err
	})
	return out, err
}

// Submitted lists the requester's requests that have left the draft stage.
func (s *RequestService) Submitted(ctx context.Context, requesterEmail string) ([]request.Request, error) {
	var out []request.Request
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = s.repo.GetByRequester(txCtx, requesterEmail, []request.Status{
			request.StatusRequested,
			request.StatusApproved,
			request.StatusRejected,
			request.StatusWithdrawn,
		})
		return err
	})
	return out, err
}

func (s *RequestService) ByDBPManager(ctx context.Context, email string) ([]request.Request, error) {
	var out []request.Request
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = s.repo.GetByDBPManager(txCtx, email)
		return err
	})
	return out, err
}

func (s *RequestService) ByBusinessOwner(ctx context.Context, email string) ([]request.Request, error) {
	var out []request.Request
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = s.repo.GetByBusinessOwner(txCtx, email)
		return err
	})
	return out, err
}

// SaveDraft creates or updates a draft. Drafts may be incomplete; the
// payload is only validated on submission. The summary is re-rendered
// whenever the payload is already complete enough to resolve.
func (s *RequestService) SaveDraft(ctx context.Context, req request.Request) (request.Request, error) {
	var saved request.Request
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if req.ValidatePayload() == nil {
			if res, err := s.resolver.Resolve(txCtx, req); err == nil {
				if text, err := s.renderSummary(txCtx, req, res); err == nil {
					req = req.WithSummary(text)
				}
			}
		}
		if req.ID() == 0 {
			var err error
			saved, err = s.repo.Create(txCtx, req)
			return err
		}
		existing, err := s.repo.GetByID(txCtx, req.ID())
		if err != nil {
			return err
		}
		if existing.Status() != request.StatusDraft {
			return serrors.NewNotFoundError("draft", "no draft with this id")
		}
		if err := s.requireOwner(existing, req.RequesterEmail()); err != nil {
			return err
		}
		saved, err = s.repo.Update(txCtx, req)
		return err
	})
	if err != nil {
		return request.Request{}, err
	}
	s.publisher.Publish(request.DraftSavedEvent{Result: saved})
	return saved, nil
}

// Preview resolves the approval chain and renders the digest without
// persisting anything.
func (s *RequestService) Preview(ctx context.Context, req request.Request) (string, []Entry, error) {
	if err := req.ValidatePayload(); err != nil {
		return "", nil, err
	}
	var (
		text    string
		entries []Entry
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		res, err := s.resolver.Resolve(txCtx, req)
		if err != nil {
			return err
		}
		text, err = s.renderSummary(txCtx, req, res)
		if err != nil {
			return err
		}
		entries = res.Entries
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return text, entries, nil
}

// Submit validates the payload, resolves the chain, renders the digest
// and moves the request to the requested state. With a zero ID the
// request is created and submitted in one step; otherwise the draft
// with that ID is submitted.
func (s *RequestService) Submit(ctx context.Context, req request.Request) (RequestDetail, error) {
	if err := req.ValidatePayload(); err != nil {
		return RequestDetail{}, err
	}
	var detail RequestDetail
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if req.ID() != 0 {
			existing, err := s.repo.GetByID(txCtx, req.ID())
			if err != nil {
				return err
			}
			if existing.Status() != request.StatusDraft {
				return serrors.NewNotFoundError("draft", "no draft with this id")
			}
			if err := s.requireOwner(existing, req.RequesterEmail()); err != nil {
				return err
			}
		}

		res, err := s.resolver.Resolve(txCtx, req)
		if err != nil {
			return err
		}
		text, err := s.renderSummary(txCtx, req, res)
		if err != nil {
			return err
		}

		req = req.WithSummary(text)
		if req.ID() == 0 {
			req, err = s.repo.Create(txCtx, req)
			if err != nil {
				return err
			}
		} else {
			req, err = s.repo.Update(txCtx, req)
			if err != nil {
				return err
			}
		}
		if err := s.repo.SetStatus(txCtx, req.ID(), request.StatusRequested); err != nil {
			return err
		}

		approvals, err := s.repo.ReplaceApprovals(txCtx, req.ID(), s.buildApprovals(req.ID(), res.Entries))
		if err != nil {
			return err
		}
		req, err = s.repo.GetByID(txCtx, req.ID())
		if err != nil {
			return err
		}
		detail = RequestDetail{Request: req, Approvals: approvals}
		return nil
	})
	if err != nil {
		return RequestDetail{}, err
	}
	s.publisher.Publish(request.SubmittedEvent{Result: detail.Request})
	return detail, nil
}

// Update modifies a non-terminal request. On a submitted request any
// decisions already made are discarded: the chain is resolved again from
// the new payload and every slot starts over as pending. Drafts are
// simply edited in place.
func (s *RequestService) Update(ctx context.Context, req request.Request) (RequestDetail, error) {
	if err := req.ValidatePayload(); err != nil {
		return RequestDetail{}, err
	}
	var (
		detail  RequestDetail
		wasOpen bool
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByIDForUpdate(txCtx, req.ID())
		if err != nil {
			return err
		}
		if existing.Status().IsTerminal() {
			return serrors.NewConflictError("NOT_UPDATABLE", "terminal requests cannot be updated")
		}
		if err := s.requireOwner(existing, req.RequesterEmail()); err != nil {
			return err
		}
		wasOpen = existing.Status() == request.StatusRequested

		res, err := s.resolver.Resolve(txCtx, req)
		if err != nil {
			return err
		}
		text, err := s.renderSummary(txCtx, req, res)
		if err != nil {
			return err
		}

		updated, err := s.repo.Update(txCtx, req.WithSummary(text))
		if err != nil {
			return err
		}
		if !wasOpen {
			detail = RequestDetail{Request: updated}
			return nil
		}
		approvals, err := s.repo.ReplaceApprovals(txCtx, updated.ID(), s.buildApprovals(updated.ID(), res.Entries))
		if err != nil {
			return err
		}
		detail = RequestDetail{Request: updated, Approvals: approvals}
		return nil
	})
	if err != nil {
		return RequestDetail{}, err
	}
	if wasOpen {
		s.publisher.Publish(request.SubmittedEvent{Result: detail.Request})
	} else {
		s.publisher.Publish(request.DraftSavedEvent{Result: detail.Request})
	}
	return detail, nil
}

// Withdraw retracts a submitted request. Pending approval slots are
// marked withdrawn so approvers stop seeing the request in their queue.
func (s *RequestService) Withdraw(ctx context.Context, id int64, actorEmail string) (request.Request, error) {
	var withdrawn request.Request
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.requireOwner(existing, actorEmail); err != nil {
			return err
		}
		next, err := existing.WithStatus(request.StatusWithdrawn)
		if err != nil {
			return err
		}
		if err := s.repo.SetStatus(txCtx, id, next.Status()); err != nil {
			return err
		}
		if err := s.repo.WithdrawPendingApprovals(txCtx, id); err != nil {
			return err
		}
		withdrawn = next
		return nil
	})
	if err != nil {
		return request.Request{}, err
	}
	s.publisher.Publish(request.WithdrawnEvent{Result: withdrawn})
	return withdrawn, nil
}

// Delete removes a draft. Submitted requests are part of the audit trail
// and can only be withdrawn.
func (s *RequestService) Delete(ctx context.Context, id int64, actorEmail string) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if existing.Status() != request.StatusDraft {
			return serrors.NewConflictError("NOT_A_DRAFT", "only drafts can be deleted")
		}
		if err := s.requireOwner(existing, actorEmail); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(request.DeletedEvent{RequestID: id})
	return nil
}

func (s *RequestService) requireOwner(req request.Request, actorEmail string) error {
	if req.RequesterEmail() != actorEmail {
		return serrors.NewForbiddenError("NOT_REQUEST_OWNER", "only the requester can modify this request")
	}
	return nil
}

func (s *RequestService) buildApprovals(requestID int64, entries []Entry) []request.Approval {
	approvals := make([]request.Approval, 0, len(entries))
	for _, e := range entries {
		approvals = append(approvals, request.NewApproval(requestID, e.Role, e.Order, e.Email, e.Name))
	}
	return approvals
}

// renderSummary resolves the requester's display handle and renders the
// digest. The handle prefers the platform username over the directory
// display name.
func (s *RequestService) renderSummary(ctx context.Context, req request.Request, res Resolution) (string, error) {
	handle := req.RequesterEmail()
	if u, err := s.users.GetByEmail(ctx, req.RequesterEmail()); err == nil {
		handle = u.DisplayHandle()
	}

	in := summary.Input{
		RequesterHandle: handle,
		Type:            req.Type(),
		GroupName:       res.Group.Name(),
		GroupOwner:      res.GroupOwner,
		DataManager:     res.DataManager,
		DBPManager:      res.DBPManager,
		AppOwners:       res.AppOwners,
		Reason:          req.Reason(),
	}
	if req.Type() == request.TypeCreateGroup {
		ng := req.NewGroup()
		in.NewGroupName = ng.Name
		in.NewGroupOwner = res.GroupOwner
		in.NewGroupManager = res.DBPManager
	}
	for _, d := range res.Datasets {
		in.Datasets = append(in.Datasets, summary.DatasetLine{Name: d.Name(), Code: d.Code()})
	}
	for _, a := range res.Applications {
		in.ApplicationNames = append(in.ApplicationNames, a.Name())
	}
	for _, m := range res.Members {
		in.Members = append(in.Members, summary.Person{Name: m.Name(), Email: m.Email()})
	}
	return summary.Render(in), nil
}
