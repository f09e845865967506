package domain

import "time"

// Role defines user permission level
type Role string

const (
	RoleAdmin  Role = "admin"  // Scrape, train, read any history
	RoleMember Role = "member" // Browse catalog, request predictions
)

// User represents an account that can log in to the API
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never serialize
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// UserSummary provides a safe view of user data (no password hash)
type UserSummary struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToSummary converts a User to UserSummary
func (u *User) ToSummary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
	}
}

// IsAdmin checks if the user has admin privileges
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanTrain checks if the user can rebuild recommendation artifacts
func (u *User) CanTrain() bool {
	return u.Active && u.Role == RoleAdmin
}

// CanPredict checks if the user can request recommendations
func (u *User) CanPredict() bool {
	return u.Active && (u.Role == RoleAdmin || u.Role == RoleMember)
}

// ValidRole reports whether r is a known role
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleMember
}
