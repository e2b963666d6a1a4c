package core

import (
	"time"
)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// User is a persisted account. Optional text fields are empty when unset.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Department  string     `json:"department,omitempty"`
	Team        string     `json:"team,omitempty"`
	Position    string     `json:"position,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	CPFCNPJ     string     `json:"cpf_cnpj,omitempty"`
	Status      UserStatus `json:"status"`
	Permissions []string   `json:"permissions"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateUserData is the payload for creating an account.
// Status defaults to active and Permissions to an empty list.
type CreateUserData struct {
	Email       string     `json:"email" validate:"required,email"`
	FullName    string     `json:"full_name" validate:"required"`
	Phone       string     `json:"phone,omitempty" validate:"omitempty,phone"`
	Role        string     `json:"role" validate:"required"`
	Department  string     `json:"department,omitempty"`
	Team        string     `json:"team,omitempty"`
	Position    string     `json:"position,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	CPFCNPJ     string     `json:"cpf_cnpj,omitempty" validate:"omitempty,cpfcnpj"`
	Status      UserStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	Permissions []string   `json:"permissions,omitempty"`
}

// UpdateUserData is a partial update. Nil fields are left untouched.
type UpdateUserData struct {
	ID          string      `json:"id" validate:"required"`
	Email       *string     `json:"email,omitempty" validate:"omitempty,email"`
	FullName    *string     `json:"full_name,omitempty" validate:"omitempty,min=1"`
	Phone       *string     `json:"phone,omitempty" validate:"omitempty,phone"`
	Role        *string     `json:"role,omitempty" validate:"omitempty,min=1"`
	Department  *string     `json:"department,omitempty"`
	Team        *string     `json:"team,omitempty"`
	Position    *string     `json:"position,omitempty"`
	BirthDate   *time.Time  `json:"birth_date,omitempty"`
	CPFCNPJ     *string     `json:"cpf_cnpj,omitempty" validate:"omitempty,cpfcnpj"`
	Status      *UserStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive suspended"`
	Permissions *[]string   `json:"permissions,omitempty"`
}

// Empty reports whether the update carries no changes.
func (u UpdateUserData) Empty() bool {
	return u.Email == nil && u.FullName == nil && u.Phone == nil && u.Role == nil &&
		u.Department == nil && u.Team == nil && u.Position == nil && u.BirthDate == nil &&
		u.CPFCNPJ == nil && u.Status == nil && u.Permissions == nil
}

// UserFilters narrows ListUsers. Empty fields do not filter.
// Search matches full_name or email case-insensitively.
type UserFilters struct {
	Search     string     `json:"search,omitempty"`
	Role       string     `json:"role,omitempty"`
	Status     UserStatus `json:"status,omitempty"`
	Department string     `json:"department,omitempty"`
	Team       string     `json:"team,omitempty"`
}

// Role is a named permission set. System roles are built in and
// never stored (see SystemRoles).
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleData is the payload for creating or replacing a role.
type RoleData struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation grants a prospective user a role once accepted.
type Invitation struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	Role      string           `json:"role"`
	InvitedBy string           `json:"invited_by"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Status    InvitationStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// ActivityAction identifies a user lifecycle event.
type ActivityAction string

const (
	ActionUserCreated   ActivityAction = "user_created"
	ActionUserUpdated   ActivityAction = "user_updated"
	ActionStatusChanged ActivityAction = "status_changed"
	ActionUserDeleted   ActivityAction = "user_deleted"
)

// ActivityLog is one recorded lifecycle event for a user.
type ActivityLog struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Action    ActivityAction `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ActivityFilter selects activity entries. An empty UserID selects all users.
type ActivityFilter struct {
	UserID string
	Limit  int
}
