package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	appentity "github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
)

// InmemRequestRepository is the in-memory twin of RequestRepository used
// by service tests. Queries that span the directory, such as the DBP
// manager and business owner listings, go through the injected
// directory repositories.
type InmemRequestRepository struct {
	mu          sync.RWMutex
	seq         int64
	approvalSeq int64
	requests    map[int64]request.Request
	approvals   map[int64][]request.Approval
	groups      group.Repository
	apps        appentity.Repository
}

func NewInmemRequestRepository(groups group.Repository, apps appentity.Repository) *InmemRequestRepository {
	return &InmemRequestRepository{
		requests:  make(map[int64]request.Request),
		approvals: make(map[int64][]request.Approval),
		groups:    groups,
		apps:      apps,
	}
}

func (r *InmemRequestRepository) GetByID(_ context.Context, id int64) (request.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return request.Request{}, request.ErrNotFound
	}
	return req, nil
}

func (r *InmemRequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (request.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *InmemRequestRepository) GetByRequester(_ context.Context, requesterEmail string, statuses []request.Status) ([]request.Request, error) {
	wanted := make(map[request.Status]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []request.Request
	for _, req := range r.requests {
		if req.RequesterEmail() == requesterEmail && wanted[req.Status()] {
			out = append(out, req)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InmemRequestRepository) GetByDBPManager(ctx context.Context, email string) ([]request.Request, error) {
	r.mu.RLock()
	snapshot := r.snapshotLocked()
	r.mu.RUnlock()

	var out []request.Request
	for _, req := range snapshot {
		if req.Status() == request.StatusDraft {
			continue
		}
		if req.NewGroup().DBPManagerEmail == email {
			out = append(out, req)
			continue
		}
		if req.GroupID() == 0 {
			continue
		}
		g, err := r.groups.GetByID(ctx, req.GroupID())
		if err != nil {
			continue
		}
		if g.DBPManagerEmail() == email {
			out = append(out, req)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InmemRequestRepository) GetByBusinessOwner(ctx context.Context, email string) ([]request.Request, error) {
	r.mu.RLock()
	snapshot := r.snapshotLocked()
	r.mu.RUnlock()

	var out []request.Request
	for _, req := range snapshot {
		if req.Status() == request.StatusDraft || len(req.DatasetIDs()) == 0 {
			continue
		}
		apps, err := r.apps.ForDatasets(ctx, req.DatasetIDs())
		if err != nil {
			return nil, err
		}
		for _, a := range apps {
			if a.BusinessOwnerEmail() == email {
				out = append(out, req)
				break
			}
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InmemRequestRepository) Create(_ context.Context, req request.Request) (request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	now := time.Now()
	created := request.Hydrate(
		r.seq, req.Type(), req.Status(), req.GroupID(), req.NewGroup(),
		req.DatasetIDs(), req.MemberIDs(), req.RequesterEmail(),
		req.Reason(), req.Summary(), now, now,
	)
	r.requests[created.ID()] = created
	return created, nil
}

func (r *InmemRequestRepository) Update(_ context.Context, req request.Request) (request.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.requests[req.ID()]
	if !ok {
		return request.Request{}, request.ErrNotFound
	}
	updated := request.Hydrate(
		req.ID(), req.Type(), existing.Status(), req.GroupID(), req.NewGroup(),
		req.DatasetIDs(), req.MemberIDs(), req.RequesterEmail(),
		req.Reason(), req.Summary(), existing.CreatedAt(), time.Now(),
	)
	r.requests[req.ID()] = updated
	return updated, nil
}

func (r *InmemRequestRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[id]; !ok {
		return request.ErrNotFound
	}
	delete(r.requests, id)
	delete(r.approvals, id)
	return nil
}

func (r *InmemRequestRepository) SetStatus(_ context.Context, id int64, status request.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.requests[id]
	if !ok {
		return request.ErrNotFound
	}
	r.requests[id] = request.Hydrate(
		existing.ID(), existing.Type(), status, existing.GroupID(), existing.NewGroup(),
		existing.DatasetIDs(), existing.MemberIDs(), existing.RequesterEmail(),
		existing.Reason(), existing.Summary(), existing.CreatedAt(), time.Now(),
	)
	return nil
}

func (r *InmemRequestRepository) Approvals(_ context.Context, requestID int64) ([]request.Approval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]request.Approval, len(r.approvals[requestID]))
	copy(out, r.approvals[requestID])
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order() != out[j].Order() {
			return out[i].Order() < out[j].Order()
		}
		return out[i].ApproverEmail() < out[j].ApproverEmail()
	})
	return out, nil
}

func (r *InmemRequestRepository) ReplaceApprovals(ctx context.Context, requestID int64, approvals []request.Approval) ([]request.Approval, error) {
	r.mu.Lock()
	stored := make([]request.Approval, 0, len(approvals))
	for _, a := range approvals {
		r.approvalSeq++
		stored = append(stored, request.HydrateApproval(
			r.approvalSeq, requestID, a.Role(), a.Order(),
			a.ApproverEmail(), a.ApproverName(), a.Status(), a.Comment(), a.DecidedAt(),
		))
	}
	r.approvals[requestID] = stored
	r.mu.Unlock()
	return r.Approvals(ctx, requestID)
}

func (r *InmemRequestRepository) SetApprovalDecision(
	_ context.Context,
	requestID int64,
	role request.Role,
	approverEmail string,
	status request.ApprovalStatus,
	comment string,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	now := time.Now()
	for i, a := range r.approvals[requestID] {
		if a.Role() == role && a.ApproverEmail() == approverEmail && a.IsPending() {
			r.approvals[requestID][i] = request.HydrateApproval(
				a.ID(), a.RequestID(), a.Role(), a.Order(),
				a.ApproverEmail(), a.ApproverName(), status, comment, &now,
			)
			affected++
		}
	}
	return affected, nil
}

func (r *InmemRequestRepository) WithdrawPendingApprovals(_ context.Context, requestID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.approvals[requestID] {
		if a.IsPending() {
			r.approvals[requestID][i] = request.HydrateApproval(
				a.ID(), a.RequestID(), a.Role(), a.Order(),
				a.ApproverEmail(), a.ApproverName(), request.ApprovalWithdrawn, a.Comment(), a.DecidedAt(),
			)
		}
	}
	return nil
}

func (r *InmemRequestRepository) CountPending(_ context.Context, requestID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, a := range r.approvals[requestID] {
		if a.IsPending() {
			count++
		}
	}
	return count, nil
}

func (r *InmemRequestRepository) PendingForApprover(_ context.Context, approverEmail string) ([]request.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []request.Request
	for id, req := range r.requests {
		if req.Status() != request.StatusRequested {
			continue
		}
		for _, a := range r.approvals[id] {
			if a.ApproverEmail() == approverEmail && a.IsPending() {
				out = append(out, req)
				break
			}
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InmemRequestRepository) snapshotLocked() []request.Request {
	out := make([]request.Request, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req)
	}
	return out
}

func sortNewestFirst(requests []request.Request) {
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].UpdatedAt().Equal(requests[j].UpdatedAt()) {
			return requests[i].UpdatedAt().After(requests[j].UpdatedAt())
		}
		return requests[i].ID() > requests[j].ID()
	})
}
