package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
)

// Ensure userService implements UserService
var _ driving.UserService = (*userService)(nil)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// MaxUsernameLength is the longest accepted username
const MaxUsernameLength = 64

// userService implements the UserService interface
type userService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
}

// NewUserService creates a new UserService
func NewUserService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
) driving.UserService {
	return &userService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
	}
}

// Register creates a member account; the very first account becomes the
// admin so a fresh deployment can be bootstrapped through the API.
func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	count, err := s.userStore.Count(ctx)
	if err != nil {
		return nil, err
	}
	role := domain.RoleMember
	if count == 0 {
		role = domain.RoleAdmin
	}
	return s.Create(ctx, driving.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		Role:     role,
	})
}

// Create creates a new user (admin only)
func (s *userService) Create(ctx context.Context, req driving.CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := validateCredentials(username, req.Password); err != nil {
		return nil, err
	}
	if !domain.ValidRole(req.Role) {
		return nil, fmt.Errorf("role %q: %w", req.Role, domain.ErrInvalidInput)
	}

	existing, err := s.userStore.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	passwordHash, err := s.authAdapter.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           generateID(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userStore.Get(ctx, id)
}

// GetByUsername retrieves a user by username
func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userStore.GetByUsername(ctx, strings.TrimSpace(username))
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userStore.List(ctx)
}

// Update updates a user (admin only). Deactivating a user signs them out.
func (s *userService) Update(ctx context.Context, id string, req driving.UpdateUserRequest) (*domain.User, error) {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return nil, domain.ErrInvalidInput
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	user.UpdatedAt = time.Now()

	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}
	if req.Active != nil && !*req.Active {
		_ = s.sessionStore.DeleteByUser(ctx, id)
	}
	return user, nil
}

// Delete deletes a user (admin only)
func (s *userService) Delete(ctx context.Context, id string) error {
	if _, err := s.userStore.Get(ctx, id); err != nil {
		return err
	}
	_ = s.sessionStore.DeleteByUser(ctx, id)
	return s.userStore.Delete(ctx, id)
}

// SetPassword sets a new password for a user (admin only)
func (s *userService) SetPassword(ctx context.Context, id string, password string) error {
	if len(password) < MinPasswordLength {
		return domain.ErrInvalidInput
	}

	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return err
	}

	passwordHash, err := s.authAdapter.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()

	if err := s.userStore.Save(ctx, user); err != nil {
		return err
	}
	return s.sessionStore.DeleteByUser(ctx, id)
}

// validateCredentials checks a username and password for registration
func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return domain.ErrInvalidInput
	}
	if len(username) > MaxUsernameLength || strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return fmt.Errorf("username: %w", domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password shorter than %d: %w", MinPasswordLength, domain.ErrInvalidInput)
	}
	return nil
}
