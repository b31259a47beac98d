package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskwise/taskwise/internal/auth"
	"github.com/taskwise/taskwise/internal/model"
	"github.com/taskwise/taskwise/internal/repository"
)

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	logger *slog.Logger

	// dummyHash is compared against when the email is unknown so both
	// login failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenManager, logger *slog.Logger) (*AuthService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dummy, err := hasher.Hash("taskwise-login-timing")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger.With("component", "service.auth"),
		dummyHash: dummy,
	}, nil
}

// Register creates an account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return "", ErrMissingCredentials
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return "", err
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Another request may have registered the same email in between.
		if errors.Is(err, repository.ErrEmailExists) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.tokens.Issue(user.ID)
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}
		s.hasher.Verify(password, s.dummyHash)
		return "", ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

// Profile returns the account for userID.
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// VerifyToken returns the user id a session token was issued for.
func (s *AuthService) VerifyToken(token string) (string, error) {
	return s.tokens.Verify(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
