package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbp-hq/governance/pkg/application"
	"github.com/dbp-hq/governance/pkg/httpapi"
)

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
}

type HealthController struct {
	pool *pgxpool.Pool
}

func NewHealthController(pool *pgxpool.Pool) application.Controller {
	return &HealthController{pool: pool}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Health).Methods(http.MethodGet)
}

func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if c.pool != nil {
		if err := c.pool.Ping(ctx); err != nil {
			_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database is unreachable", nil)
			return
		}
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
