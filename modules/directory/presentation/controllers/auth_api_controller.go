package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	"github.com/dbp-hq/governance/modules/directory/services"
	"github.com/dbp-hq/governance/pkg/application"
	"github.com/dbp-hq/governance/pkg/composables"
)

type AuthAPIController struct {
	app      application.Application
	auth     *services.AuthService
	basePath string
}

func NewAuthAPIController(app application.Application) application.Controller {
	return &AuthAPIController{
		app:      app,
		auth:     app.Service(services.AuthService{}).(*services.AuthService),
		basePath: "/api/auth",
	}
}

func (c *AuthAPIController) Key() string {
	return c.basePath
}

func (c *AuthAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/login", c.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", c.Logout).Methods(http.MethodPost)
}

type loginRequest struct {
	Email string `json:"email"`
}

func (c *AuthAPIController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "AUTH_INVALID_BODY", "request body must be valid JSON")
		return
	}
	result, err := c.auth.Login(r.Context(), body.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", "no account for that email")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	logger := composables.UseLogger(r.Context())
	logger.WithField("email", result.User.Email()).Info("user logged in")
	payload := userToJSON(result.User)
	payload["is_approver"] = result.IsApprover
	writeJSON(w, http.StatusOK, payload)
}

func (c *AuthAPIController) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
