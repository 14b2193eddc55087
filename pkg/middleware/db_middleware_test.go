package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxStatusWriter_DefaultsToOK(t *testing.T) {
	t.Parallel()

	w := &txStatusWriter{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, w.Status())
}

func TestTxStatusWriter_ImplicitOKOnWrite(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := &txStatusWriter{ResponseWriter: rec}
	_, err := w.Write([]byte(`{"ok":true}`))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Status())
}

func TestTxStatusWriter_KeepsFirstStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	w := &txStatusWriter{ResponseWriter: rec}
	w.WriteHeader(http.StatusConflict)
	_, _ = w.Write([]byte(`{"code":"INVALID_STATUS_TRANSITION"}`))

	assert.Equal(t, http.StatusConflict, w.Status())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTxStatusWriter_ErrorStatusBlocksCommit(t *testing.T) {
	t.Parallel()

	w := &txStatusWriter{ResponseWriter: httptest.NewRecorder()}
	w.WriteHeader(http.StatusUnprocessableEntity)
	assert.GreaterOrEqual(t, w.Status(), http.StatusBadRequest)
}
