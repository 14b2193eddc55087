package httpapi_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbp-hq/governance/pkg/httpapi"
	"github.com/dbp-hq/governance/pkg/serrors"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"out of order", serrors.NewOutOfOrderError("data_manager", "wait your turn"), http.StatusUnprocessableEntity},
		{"validation", serrors.NewValidationError("email", "email is invalid"), http.StatusBadRequest},
		{"validation map", serrors.ValidationErrors{"email": serrors.NewFieldRequiredError("email", "")}, http.StatusBadRequest},
		{"forbidden", serrors.NewForbiddenError("NOT_REQUEST_OWNER", "nope"), http.StatusForbidden},
		{"not found", serrors.NewNotFoundError("group", "group not found"), http.StatusNotFound},
		{"conflict", serrors.NewConflictError("NOT_A_DRAFT", "only drafts"), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.status, httpapi.StatusFor(tc.err))
		})
	}
}

func TestWriteServiceError_MasksUnknownErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, httpapi.WriteServiceError(rec, errors.New("secret database detail"), nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INTERNAL", envelope.Code)
	assert.NotContains(t, envelope.Message, "secret")
}

func TestWriteServiceError_TypedError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := serrors.NewOutOfOrderError("app_owner", "earlier approval tiers have not approved yet")
	require.NoError(t, httpapi.WriteServiceError(rec, err, map[string]string{"request_id": "req-1"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "APPROVAL_OUT_OF_ORDER", envelope.Code)
	assert.Equal(t, "req-1", envelope.Meta["request_id"])
}
