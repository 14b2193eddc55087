package middleware

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/dbp-hq/governance/pkg/composables"
)

// txStatusWriter tracks the response status so the surrounding
// transaction can be rolled back when the handler reported an error.
type txStatusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *txStatusWriter) WriteHeader(code int) {
	if w.statusCode == 0 {
		w.statusCode = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *txStatusWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *txStatusWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

// WithTransaction wraps every request in a transaction. The transaction
// commits only when the handler finishes without writing an error
// status; a 4xx/5xx response rolls it back so a failure after a
// mutation cannot commit partial state.
func WithTransaction() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pool, err := composables.UsePool(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			tx, err := pool.Begin(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			defer func() {
				if err := tx.Rollback(r.Context()); err != nil {
					if errors.Is(err, pgx.ErrTxClosed) {
						return
					}
					if logger, ok := composables.TryUseLogger(r.Context()); ok {
						logger.WithError(err).Error("failed to rollback transaction")
					}
				}
			}()
			wrapped := &txStatusWriter{ResponseWriter: w}
			r = r.WithContext(composables.WithTx(r.Context(), tx))
			next.ServeHTTP(wrapped, r)
			if wrapped.Status() >= http.StatusBadRequest {
				return
			}
			if err := tx.Commit(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		})
	}
}
