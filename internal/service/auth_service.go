package service

import (
	"context"

	"github.com/accrue-app/accrue-backend/internal/domain"
)

// AuthService handles identity-adjacent business logic
type AuthService struct {
	userRepo domain.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// EnsureUser creates the local user row for an Auth0 subject on first
// contact and returns the existing one afterwards
func (s *AuthService) EnsureUser(ctx context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	return s.userRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, name)
}

// GetUserByAuth0ID resolves an Auth0 subject to the local user
func (s *AuthService) GetUserByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(ctx, auth0ID)
}
