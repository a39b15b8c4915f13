package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/crew-service/internal/domain"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"unauthenticated", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthorized"},
		{"forbidden hides lookup cause", fmt.Errorf("%w: %w", domain.ErrForbidden, errors.New("db timeout")), http.StatusForbidden, "FORBIDDEN", domain.ErrForbidden.Error()},
		{"not found", domain.ErrCrewNotFound, http.StatusNotFound, "NOT_FOUND", domain.ErrCrewNotFound.Error()},
		{"not a member", domain.ErrNotCrewMember, http.StatusNotFound, "NOT_FOUND", domain.ErrNotCrewMember.Error()},
		{"conflict", domain.ErrAlreadyInCrew, http.StatusConflict, "CONFLICT", domain.ErrAlreadyInCrew.Error()},
		{"last admin", domain.ErrLastAdmin, http.StatusConflict, "CONFLICT", domain.ErrLastAdmin.Error()},
		{"no-op", domain.ErrNotInCrew, http.StatusBadRequest, "NO_OP", domain.ErrNotInCrew.Error()},
		{"bad request", fmt.Errorf("%w: name is required", domain.ErrInvalidInput), http.StatusBadRequest, "BAD_REQUEST", "invalid input: name is required"},
		{"inconsistent", fmt.Errorf("%w: add crew=c user=u: %w", domain.ErrInconsistentState, errors.New("conn reset")), http.StatusInternalServerError, "INCONSISTENT_STATE", domain.ErrInconsistentState.Error()},
		{"store failure", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "STORE_FAILURE", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body Result
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}

func TestRespondWithResult(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithResult(rec, req, http.StatusOK, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":true}`, rec.Body.String())
}
