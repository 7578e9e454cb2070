package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"driftblog/internal/domain"
	"driftblog/internal/repository"
	"driftblog/internal/validator"
)

// UserService handles user creation and lookup. Authentication itself is
// out of scope; the service only manages the actor identities that author
// articles and comments.
type UserService struct {
	userRepo  repository.UserRepository
	validator *validator.Validator
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, v *validator.Validator) *UserService {
	return &UserService{userRepo: userRepo, validator: v}
}

// Create validates and persists a new user. The role defaults to "user".
func (s *UserService) Create(ctx context.Context, username, email, role string) (*domain.User, error) {
	if role == "" {
		role = "user"
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.New().String(),
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.validator.ValidateUser(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user, failing with domain.ErrNotFound when absent.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
