package core

import (
	"context"
	"time"
)

// UserStore persists accounts.
//
// Lookups return ErrUserNotFound when nothing matches. InsertUser assigns
// ID, CreatedAt and UpdatedAt and returns ErrUserExists when the email is
// taken. ListUsers returns newest first.
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context, filters UserFilters) ([]User, error)
	InsertUser(ctx context.Context, u User) (*User, error)
	UpdateUser(ctx context.Context, data UpdateUserData) (*User, error)
	UpdateUserStatus(ctx context.Context, id string, status UserStatus) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ActivityStore persists user activity logs. ListActivity returns newest first.
type ActivityStore interface {
	InsertActivity(ctx context.Context, entry ActivityLog) error
	ListActivity(ctx context.Context, filter ActivityFilter) ([]ActivityLog, error)
}

// RoleStore persists custom roles. ListRoles is ordered by name.
type RoleStore interface {
	ListRoles(ctx context.Context) ([]Role, error)
	InsertRole(ctx context.Context, data RoleData) (*Role, error)
	UpdateRole(ctx context.Context, id string, data RoleData) (*Role, error)
	DeleteRole(ctx context.Context, id string) error
}

// InvitationStore persists invitations. ListInvitations returns newest first.
type InvitationStore interface {
	InsertInvitation(ctx context.Context, inv Invitation) (*Invitation, error)
	ListInvitations(ctx context.Context) ([]Invitation, error)
	// ExpirePending marks every pending invitation whose expiry is at or
	// before now as expired and returns how many changed.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

// Stores bundles the ports a Service needs.
type Stores struct {
	Users       UserStore
	Activity    ActivityStore
	Roles       RoleStore
	Invitations InvitationStore
}
