package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository/memory"
)

func TestAuthService_LoginAndValidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(ctx, &domain.User{ID: "u-1", UID: "alice", Username: "Alice"}))

	auth := NewAuthService(users, "secret", time.Hour)

	token, err := auth.Login(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.UID)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.Equal(t, time.Hour, auth.TokenTTL())

	_, err = auth.Login(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	t.Parallel()
	auth := NewAuthService(memory.NewUserRepository(), "secret", time.Hour)

	sign := func(secret string, method jwt.SigningMethod, claims *Claims) string {
		t.Helper()
		token := jwt.NewWithClaims(method, claims)
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	registered := func(subject, issuer string, expiresIn time.Duration) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other", jwt.SigningMethodHS256, &Claims{UserID: "u-1", RegisteredClaims: registered("u-1", tokenIssuer, time.Hour)})},
		{"other algorithm", sign("secret", jwt.SigningMethodHS384, &Claims{UserID: "u-1", RegisteredClaims: registered("u-1", tokenIssuer, time.Hour)})},
		{"foreign issuer", sign("secret", jwt.SigningMethodHS256, &Claims{UserID: "u-1", RegisteredClaims: registered("u-1", "someone-else", time.Hour)})},
		{"expired", sign("secret", jwt.SigningMethodHS256, &Claims{UserID: "u-1", RegisteredClaims: registered("u-1", tokenIssuer, -time.Minute)})},
		{"no expiry", sign("secret", jwt.SigningMethodHS256, &Claims{UserID: "u-1", RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, Subject: "u-1"}})},
		{"empty user id", sign("secret", jwt.SigningMethodHS256, &Claims{UID: "alice", RegisteredClaims: registered("", tokenIssuer, time.Hour)})},
		{"subject mismatch", sign("secret", jwt.SigningMethodHS256, &Claims{UserID: "u-1", RegisteredClaims: registered("u-2", tokenIssuer, time.Hour)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ValidateToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewUserService(memory.NewUserRepository())

	user, err := svc.Register(ctx, RegisterInput{UID: " alice ", Username: "Alice", Email: "a@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.UID)
	assert.False(t, user.HasCrew())
	assert.False(t, user.InscriptionDate.IsZero())

	got, err := svc.GetByUID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Register(ctx, RegisterInput{UID: "alice", Username: "Again"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.Register(ctx, RegisterInput{UID: "bob"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
