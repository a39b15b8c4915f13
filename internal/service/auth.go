package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository"
)

const tokenIssuer = "crew-service"

// Claims carries the caller identity. The crew pointer is not part of the token,
// it is always re-read from the user directory.
type Claims struct {
	UserID string `json:"user_id"`
	UID    string `json:"uid"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies HS256 tokens
type AuthService struct {
	userRepo repository.UserRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(jwtSecret),
		ttl:      ttl,
		now:      time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// TokenTTL returns how long issued tokens stay valid
func (s *AuthService) TokenTTL() time.Duration {
	return s.ttl
}

// Login issues a token for the registered user with the given uid
func (s *AuthService) Login(ctx context.Context, uid string) (string, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return "", err
	}

	issuedAt := s.now()
	claims := &Claims{
		UserID: user.ID,
		UID:    user.UID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token for %s: %w", user.ID, err)
	}
	return signed, nil
}

// ValidateToken verifies signature, issuer and expiry and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
