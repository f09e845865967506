package driving

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	Role   *domain.Role `json:"role,omitempty"`
	Active *bool        `json:"active,omitempty"`
}

// UserService manages user accounts
type UserService interface {
	// Register creates a member account. The first account ever registered
	// becomes an admin.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)

	// Create creates a new user with an explicit role (admin only)
	Create(ctx context.Context, req CreateUserRequest) (*domain.User, error)

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)

	// Update updates a user (admin only)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error)

	// Delete deletes a user (admin only)
	Delete(ctx context.Context, id string) error

	// SetPassword sets a new password for a user (admin only)
	SetPassword(ctx context.Context, id string, password string) error
}
