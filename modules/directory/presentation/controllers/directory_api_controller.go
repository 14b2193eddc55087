package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	appentity "github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	"github.com/dbp-hq/governance/modules/directory/services"
	"github.com/dbp-hq/governance/pkg/application"
)

type DirectoryAPIController struct {
	app      application.Application
	users    *services.UserService
	groups   *services.GroupService
	datasets *services.DatasetService
	apps     *services.ApplicationService
	basePath string
}

func NewDirectoryAPIController(app application.Application) application.Controller {
	return &DirectoryAPIController{
		app:      app,
		users:    app.Service(services.UserService{}).(*services.UserService),
		groups:   app.Service(services.GroupService{}).(*services.GroupService),
		datasets: app.Service(services.DatasetService{}).(*services.DatasetService),
		apps:     app.Service(services.ApplicationService{}).(*services.ApplicationService),
		basePath: "/api",
	}
}

func (c *DirectoryAPIController) Key() string {
	return c.basePath + "/directory"
}

func (c *DirectoryAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/users", c.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/users/{id:[0-9]+}", c.GetUser).Methods(http.MethodGet)
	router.HandleFunc("/groups", c.ListGroups).Methods(http.MethodGet)
	router.HandleFunc("/groups/{id:[0-9]+}", c.GetGroup).Methods(http.MethodGet)
	router.HandleFunc("/groups/{id:[0-9]+}/datasets-for-request", c.DatasetsForRequest).Methods(http.MethodGet)
	router.HandleFunc("/groups/{id:[0-9]+}/datasets-with-access", c.DatasetsWithAccess).Methods(http.MethodGet)
	router.HandleFunc("/datasets", c.ListDatasets).Methods(http.MethodGet)
	router.HandleFunc("/datasets/{id:[0-9]+}", c.GetDataset).Methods(http.MethodGet)
	router.HandleFunc("/applications", c.ListApplications).Methods(http.MethodGet)
	router.HandleFunc("/applications/{id:[0-9]+}", c.GetApplication).Methods(http.MethodGet)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (c *DirectoryAPIController) ListUsers(w http.ResponseWriter, r *http.Request) {
	items, err := c.users.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, u := range items {
		out = append(out, userToJSON(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *DirectoryAPIController) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := c.users.GetByID(r.Context(), pathID(r))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	memberOf, err := c.groups.GetForUser(r.Context(), u.ID())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	groupsOut := make([]map[string]any, 0, len(memberOf))
	for _, g := range memberOf {
		groupsOut = append(groupsOut, groupToJSON(g))
	}
	payload := userToJSON(u)
	payload["groups"] = groupsOut
	writeJSON(w, http.StatusOK, payload)
}

func (c *DirectoryAPIController) ListGroups(w http.ResponseWriter, r *http.Request) {
	var (
		items []group.Group
		err   error
	)
	if v := r.URL.Query().Get("userId"); v != "" {
		userID, parseErr := strconv.ParseInt(v, 10, 64)
		if parseErr != nil {
			writeAPIError(w, r, http.StatusBadRequest, "DIRECTORY_INVALID_USER_ID", "invalid userId")
			return
		}
		items, err = c.groups.GetForUser(r.Context(), userID)
	} else {
		items, err = c.groups.GetAll(r.Context())
	}
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, g := range items {
		out = append(out, groupToJSON(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *DirectoryAPIController) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := c.groups.GetByID(r.Context(), pathID(r))
	if err != nil {
		if errors.Is(err, group.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "GROUP_NOT_FOUND", "group not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	members, err := c.groups.Members(r.Context(), g.ID())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	membersOut := make([]map[string]any, 0, len(members))
	for _, m := range members {
		membersOut = append(membersOut, userToJSON(m))
	}
	payload := groupToJSON(g)
	payload["members"] = membersOut
	writeJSON(w, http.StatusOK, payload)
}

func (c *DirectoryAPIController) DatasetsForRequest(w http.ResponseWriter, r *http.Request) {
	c.writeGroupDatasets(w, r, c.groups.DatasetsForRequest)
}

func (c *DirectoryAPIController) DatasetsWithAccess(w http.ResponseWriter, r *http.Request) {
	c.writeGroupDatasets(w, r, c.groups.DatasetsWithAccess)
}

func (c *DirectoryAPIController) writeGroupDatasets(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, groupID int64) ([]dataset.Dataset, error),
) {
	items, err := fetch(r.Context(), pathID(r))
	if err != nil {
		if errors.Is(err, group.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "GROUP_NOT_FOUND", "group not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, d := range items {
		out = append(out, datasetToJSON(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *DirectoryAPIController) ListDatasets(w http.ResponseWriter, r *http.Request) {
	items, err := c.datasets.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, d := range items {
		out = append(out, datasetToJSON(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *DirectoryAPIController) GetDataset(w http.ResponseWriter, r *http.Request) {
	d, err := c.datasets.GetByID(r.Context(), pathID(r))
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "DATASET_NOT_FOUND", "dataset not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	linked, err := c.datasets.LinkedApplications(r.Context(), d.ID())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	appsOut := make([]map[string]any, 0, len(linked))
	for _, a := range linked {
		appsOut = append(appsOut, applicationToJSON(a))
	}
	payload := datasetToJSON(d)
	payload["applications"] = appsOut
	writeJSON(w, http.StatusOK, payload)
}

func (c *DirectoryAPIController) ListApplications(w http.ResponseWriter, r *http.Request) {
	items, err := c.apps.GetAll(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	out := make([]map[string]any, 0, len(items))
	for _, a := range items {
		out = append(out, applicationToJSON(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (c *DirectoryAPIController) GetApplication(w http.ResponseWriter, r *http.Request) {
	a, err := c.apps.GetByID(r.Context(), pathID(r))
	if err != nil {
		if errors.Is(err, appentity.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "APPLICATION_NOT_FOUND", "application not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, applicationToJSON(a))
}

func userToJSON(u user.User) map[string]any {
	return map[string]any{
		"id":            u.ID(),
		"employee_code": u.EmployeeCode(),
		"name":          u.Name(),
		"email":         u.Email(),
		"username":      u.Username(),
	}
}

func groupToJSON(g group.Group) map[string]any {
	return map[string]any{
		"id":                g.ID(),
		"name":              g.Name(),
		"owner_email":       g.OwnerEmail(),
		"dbp_manager_email": g.DBPManagerEmail(),
	}
}

func datasetToJSON(d dataset.Dataset) map[string]any {
	return map[string]any{
		"id":   d.ID(),
		"code": d.Code(),
		"name": d.Name(),
	}
}

func applicationToJSON(a appentity.Application) map[string]any {
	return map[string]any{
		"id":                   a.ID(),
		"code":                 a.Code(),
		"name":                 a.Name(),
		"owner_email":          a.OwnerEmail(),
		"business_owner_email": a.BusinessOwnerEmail(),
	}
}
