package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/crew-service/internal/domain"
	"github.com/aidar/crew-service/internal/repository"
)

// UserService handles business logic for users
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// RegisterInput holds the fields accepted when registering a user
type RegisterInput struct {
	UID      string
	Username string
	Email    string
	Avatar   string
}

// Register creates a user without a crew
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	uid := strings.TrimSpace(in.UID)
	username := strings.TrimSpace(in.Username)
	if uid == "" || username == "" {
		return nil, fmt.Errorf("%w: uid and username are required", domain.ErrInvalidInput)
	}

	user := &domain.User{
		ID:              uuid.NewString(),
		UID:             uid,
		Username:        username,
		Email:           strings.TrimSpace(in.Email),
		Avatar:          strings.TrimSpace(in.Avatar),
		InscriptionDate: time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByUID retrieves a user by external uid
func (s *UserService) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	return s.userRepo.GetByUID(ctx, uid)
}

// GetByID retrieves a user by internal id
func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
