package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ptrack/fiscalia-backend/internal/domain"
)

// userRepo defines the user repository interface needed by the auth service.
type userRepo interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// jwtManager defines the token management interface needed by the auth service.
type jwtManager interface {
	GenerateAccessToken(userID int64, role string) (string, error)
	ValidateAccessToken(token string) (int64, string, error)
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// Service implements username/password authentication and token validation.
type Service struct {
	log   *slog.Logger
	users userRepo
	jwt   jwtManager
}

// NewService creates a new Auth service.
func NewService(logger *slog.Logger, users userRepo, jwt jwtManager) *Service {
	return &Service{
		log:   logger.With("service", "auth"),
		users: users,
		jwt:   jwt,
	}
}

// Login checks the credentials and issues an access token. A missing user
// and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.WarnContext(ctx, "failed login attempt", "username", username)
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)

	user.PasswordHash = ""
	return &LoginResult{AccessToken: token, User: user}, nil
}

// ValidateToken parses a bearer token and returns the acting user id and
// role. Used by the auth middleware.
func (s *Service) ValidateToken(token string) (int64, string, error) {
	userID, role, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return userID, role, nil
}

// HashPassword produces a bcrypt hash for seeding and user provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
