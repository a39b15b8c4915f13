package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository/memory"
	"github.com/aidar/crew-service/internal/service"
)

func TestAuthHandler_Login(t *testing.T) {
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(context.Background(), &domain.User{ID: "u-1", UID: "alice", Username: "Alice"}))
	authService := service.NewAuthService(users, "secret", 2*time.Hour)
	h := NewAuthHandler(authService)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"uid is trimmed", `{"uid":"  alice "}`, http.StatusOK, ""},
		{"malformed body", `{"uid":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"blank uid", `{"uid":"   "}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown uid", `{"uid":"bob"}`, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))

			h.Login(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Result bool          `json:"result"`
				Data   LoginResponse `json:"data"`
				Error  *ErrorDetail  `json:"error"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

			if tt.wantCode != "" {
				require.NotNil(t, body.Error)
				assert.Equal(t, tt.wantCode, body.Error.Code)
				return
			}

			assert.True(t, body.Result)
			assert.Equal(t, "Bearer", body.Data.TokenType)
			assert.Equal(t, int64(7200), body.Data.ExpiresIn)

			claims, err := authService.ValidateToken(body.Data.Token)
			require.NoError(t, err)
			assert.Equal(t, "u-1", claims.UserID)
		})
	}
}
