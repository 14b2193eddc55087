package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/modules/workflow/services"
	"github.com/dbp-hq/governance/pkg/application"
	"github.com/dbp-hq/governance/pkg/middleware"
)

type WorkflowAPIController struct {
	app       application.Application
	requests  *services.RequestService
	approvals *services.ApprovalService
	basePath  string
}

func NewWorkflowAPIController(app application.Application) application.Controller {
	return &WorkflowAPIController{
		app:       app,
		requests:  app.Service(services.RequestService{}).(*services.RequestService),
		approvals: app.Service(services.ApprovalService{}).(*services.ApprovalService),
		basePath:  "/api",
	}
}

func (c *WorkflowAPIController) Key() string {
	return c.basePath + "/workflow"
}

func (c *WorkflowAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/requests/{id:[0-9]+}", c.GetRequest).Methods(http.MethodGet)
	router.HandleFunc("/requests", c.ListRequests).Methods(http.MethodGet)
	router.HandleFunc("/drafts", c.ListDrafts).Methods(http.MethodGet)
	router.HandleFunc("/requests/by-dbp-manager", c.ListByDBPManager).Methods(http.MethodGet)
	router.HandleFunc("/requests/by-business-owner", c.ListByBusinessOwner).Methods(http.MethodGet)
	router.HandleFunc("/approvals/pending", c.ListPendingApprovals).Methods(http.MethodGet)
	router.HandleFunc("/requests/preview", c.Preview).Methods(http.MethodPost)

	writeRouter := r.PathPrefix(c.basePath).Subrouter()
	writeRouter.Use(middleware.WithTransaction())
	writeRouter.HandleFunc("/requests/draft", c.SaveDraft).Methods(http.MethodPost)
	writeRouter.HandleFunc("/requests", c.Submit).Methods(http.MethodPost)
	writeRouter.HandleFunc("/requests/{id:[0-9]+}", c.Update).Methods(http.MethodPut)
	writeRouter.HandleFunc("/requests/{id:[0-9]+}", c.Delete).Methods(http.MethodDelete)
	writeRouter.HandleFunc("/requests/{id:[0-9]+}/withdraw", c.Withdraw).Methods(http.MethodPost)
	writeRouter.HandleFunc("/requests/{id:[0-9]+}/approve", c.Approve).Methods(http.MethodPost)
	writeRouter.HandleFunc("/requests/{id:[0-9]+}/reject", c.Reject).Methods(http.MethodPost)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (c *WorkflowAPIController) GetRequest(w http.ResponseWriter, r *http.Request) {
	detail, err := c.requests.GetByID(r.Context(), pathID(r))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailToJSON(detail))
}

func (c *WorkflowAPIController) ListRequests(w http.ResponseWriter, r *http.Request) {
	requester := strings.TrimSpace(r.URL.Query().Get("requester"))
	if requester == "" {
		writeAPIError(w, r, http.StatusBadRequest, "REQUESTER_REQUIRED", "requester query parameter is required")
		return
	}
	items, err := c.requests.Submitted(r.Context(), requester)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestListJSON(items))
}

func (c *WorkflowAPIController) ListDrafts(w http.ResponseWriter, r *http.Request) {
	requester := strings.TrimSpace(r.URL.Query().Get("requester"))
	if requester == "" {
		writeAPIError(w, r, http.StatusBadRequest, "REQUESTER_REQUIRED", "requester query parameter is required")
		return
	}
	items, err := c.requests.Drafts(r.Context(), requester)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestListJSON(items))
}

func (c *WorkflowAPIController) ListByDBPManager(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeAPIError(w, r, http.StatusBadRequest, "EMAIL_REQUIRED", "email query parameter is required")
		return
	}
	items, err := c.requests.ByDBPManager(r.Context(), email)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestListJSON(items))
}

func (c *WorkflowAPIController) ListByBusinessOwner(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeAPIError(w, r, http.StatusBadRequest, "EMAIL_REQUIRED", "email query parameter is required")
		return
	}
	items, err := c.requests.ByBusinessOwner(r.Context(), email)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestListJSON(items))
}

func (c *WorkflowAPIController) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	approver := strings.TrimSpace(r.URL.Query().Get("approver"))
	if approver == "" {
		writeAPIError(w, r, http.StatusBadRequest, "APPROVER_REQUIRED", "approver query parameter is required")
		return
	}
	items, err := c.approvals.PendingForApprover(r.Context(), approver)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]any{
			"request":    requestToJSON(item.Request),
			"approval":   approvalToJSON(item.Approval),
			"can_decide": item.CanDecide,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *WorkflowAPIController) SaveDraft(w http.ResponseWriter, r *http.Request) {
	dto, ok := c.decodeUpsert(w, r)
	if !ok {
		return
	}
	saved, err := c.requests.SaveDraft(r.Context(), dto.ToEntity())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if dto.ID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, requestToJSON(saved))
}

func (c *WorkflowAPIController) Preview(w http.ResponseWriter, r *http.Request) {
	dto, ok := c.decodeUpsert(w, r)
	if !ok {
		return
	}
	text, entries, err := c.requests.Preview(r.Context(), dto.ToEntity())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	chain := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		chain = append(chain, map[string]any{
			"role":  string(e.Role),
			"order": e.Order,
			"email": e.Email,
			"name":  e.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": text,
		"chain":   chain,
	})
}

func (c *WorkflowAPIController) Submit(w http.ResponseWriter, r *http.Request) {
	dto, ok := c.decodeUpsert(w, r)
	if !ok {
		return
	}
	detail, err := c.requests.Submit(r.Context(), dto.ToEntity())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, detailToJSON(detail))
}

func (c *WorkflowAPIController) Update(w http.ResponseWriter, r *http.Request) {
	dto, ok := c.decodeUpsert(w, r)
	if !ok {
		return
	}
	dto.ID = pathID(r)
	detail, err := c.requests.Update(r.Context(), dto.ToEntity())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailToJSON(detail))
}

func (c *WorkflowAPIController) Withdraw(w http.ResponseWriter, r *http.Request) {
	var dto request.ActorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeServiceError(w, r, errs)
		return
	}
	withdrawn, err := c.requests.Withdraw(r.Context(), pathID(r), dto.RequesterEmail)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requestToJSON(withdrawn))
}

func (c *WorkflowAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	var dto request.ActorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeServiceError(w, r, errs)
		return
	}
	if err := c.requests.Delete(r.Context(), pathID(r), dto.RequesterEmail); err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (c *WorkflowAPIController) Approve(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, true)
}

func (c *WorkflowAPIController) Reject(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, false)
}

func (c *WorkflowAPIController) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	var dto request.DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeServiceError(w, r, errs)
		return
	}
	var (
		detail services.RequestDetail
		err    error
	)
	if approve {
		detail, err = c.approvals.Approve(r.Context(), pathID(r), dto.ApproverEmail, dto.Comment)
	} else {
		detail, err = c.approvals.Reject(r.Context(), pathID(r), dto.ApproverEmail, dto.Comment)
	}
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detailToJSON(detail))
}

func (c *WorkflowAPIController) decodeUpsert(w http.ResponseWriter, r *http.Request) (request.UpsertDTO, bool) {
	var dto request.UpsertDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return request.UpsertDTO{}, false
	}
	if errs, ok := dto.Ok(); !ok {
		writeServiceError(w, r, errs)
		return request.UpsertDTO{}, false
	}
	return dto, true
}

func (c *WorkflowAPIController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, request.ErrNotFound) {
		writeAPIError(w, r, http.StatusNotFound, "REQUEST_NOT_FOUND", "request not found")
		return
	}
	writeServiceError(w, r, err)
}

func requestListJSON(items []request.Request) map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, req := range items {
		out = append(out, requestToJSON(req))
	}
	return map[string]any{"items": out}
}

func requestToJSON(req request.Request) map[string]any {
	ng := req.NewGroup()
	payload := map[string]any{
		"id":              req.ID(),
		"type":            string(req.Type()),
		"status":          string(req.Status()),
		"group_id":        req.GroupID(),
		"dataset_ids":     req.DatasetIDs(),
		"member_ids":      req.MemberIDs(),
		"requester_email": req.RequesterEmail(),
		"reason":          req.Reason(),
		"summary":         req.Summary(),
		"created_at":      req.CreatedAt().Format(time.RFC3339),
		"updated_at":      req.UpdatedAt().Format(time.RFC3339),
	}
	if !ng.IsZero() {
		payload["new_group"] = map[string]any{
			"name":              ng.Name,
			"owner_email":       ng.OwnerEmail,
			"dbp_manager_email": ng.DBPManagerEmail,
		}
	}
	return payload
}

func approvalToJSON(a request.Approval) map[string]any {
	payload := map[string]any{
		"id":             a.ID(),
		"request_id":     a.RequestID(),
		"role":           string(a.Role()),
		"order":          a.Order(),
		"approver_email": a.ApproverEmail(),
		"approver_name":  a.ApproverName(),
		"status":         string(a.Status()),
		"comment":        a.Comment(),
	}
	if a.DecidedAt() != nil {
		payload["decided_at"] = a.DecidedAt().Format(time.RFC3339)
	}
	return payload
}

func detailToJSON(detail services.RequestDetail) map[string]any {
	payload := requestToJSON(detail.Request)
	approvals := make([]map[string]any, 0, len(detail.Approvals))
	for _, a := range detail.Approvals {
		approvals = append(approvals, approvalToJSON(a))
	}
	payload["approvals"] = approvals
	return payload
}
