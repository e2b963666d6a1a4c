package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/useradmin/internal/logging"
)

// ImportTimeout is the default maximum duration for one import batch.
var ImportTimeout = 10 * time.Minute

// DefaultInvitationTTL is how long invitations stay pending.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Service provides the core business logic for user administration.
type Service struct {
	users       UserStore
	activity    ActivityStore
	roles       RoleStore
	invitations InvitationStore

	limiter       *ImportLimiter
	importTimeout time.Duration
	invitationTTL time.Duration
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithImportLimiter replaces the default single-slot import limiter.
func WithImportLimiter(l *ImportLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithImportTimeout bounds each ImportCSV call. Zero disables the bound.
func WithImportTimeout(d time.Duration) Option {
	return func(s *Service) { s.importTimeout = d }
}

// WithInvitationTTL sets how long new invitations stay pending.
func WithInvitationTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.invitationTTL = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service over the given stores.
func NewService(stores Stores, opts ...Option) *Service {
	s := &Service{
		users:         stores.Users,
		activity:      stores.Activity,
		roles:         stores.Roles,
		invitations:   stores.Invitations,
		limiter:       NewImportLimiter(DefaultMaxConcurrentImports, DefaultMaxWaitTime),
		importTimeout: ImportTimeout,
		invitationTTL: DefaultInvitationTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportLimiter exposes the limiter so shutdown can wait for running imports.
func (s *Service) ImportLimiter() *ImportLimiter {
	return s.limiter
}

// FindUserByEmail returns the account registered under email, or
// ErrUserNotFound.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.FindUserByEmail(ctx, strings.TrimSpace(email))
}

// GetUser returns one account by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.users.GetUser(ctx, id)
}

// ListUsers returns accounts matching filters, newest first.
func (s *Service) ListUsers(ctx context.Context, filters UserFilters) ([]User, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filters.Status)
	}
	filters.Search = strings.TrimSpace(filters.Search)
	return s.users.ListUsers(ctx, filters)
}

// CreateUser validates data, fills defaults (status active, no
// permissions) and stores the account. One user_created entry is logged.
func (s *Service) CreateUser(ctx context.Context, data CreateUserData) (*User, error) {
	data.Email = strings.TrimSpace(data.Email)
	data.FullName = strings.TrimSpace(data.FullName)

	if err := ValidateStruct(data); err != nil {
		return nil, err
	}

	status := data.Status
	if status == "" {
		status = StatusActive
	}
	perms := data.Permissions
	if perms == nil {
		perms = []string{}
	}

	created, err := s.users.InsertUser(ctx, User{
		Email:       data.Email,
		FullName:    data.FullName,
		Phone:       data.Phone,
		Role:        data.Role,
		Department:  data.Department,
		Team:        data.Team,
		Position:    data.Position,
		BirthDate:   data.BirthDate,
		CPFCNPJ:     data.CPFCNPJ,
		Status:      status,
		Permissions: perms,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logActivity(ctx, created.ID, ActionUserCreated, map[string]any{"user_data": data})
	logging.FromContext(ctx).Debug("user created", "user_id", created.ID, "role", created.Role)

	return created, nil
}

// UpdateUser applies a partial update and logs user_updated with the
// changed fields.
func (s *Service) UpdateUser(ctx context.Context, data UpdateUserData) (*User, error) {
	if data.Empty() {
		return nil, ErrNoChanges
	}
	if err := ValidateStruct(data); err != nil {
		return nil, err
	}

	updated, err := s.users.UpdateUser(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logActivity(ctx, updated.ID, ActionUserUpdated, map[string]any{"changes": changeSet(data)})

	return updated, nil
}

// UpdateUserStatus moves an account to status and logs status_changed.
func (s *Service) UpdateUserStatus(ctx context.Context, id string, status UserStatus) (*User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	updated, err := s.users.UpdateUserStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update user status: %w", err)
	}

	s.logActivity(ctx, id, ActionStatusChanged, map[string]any{"new_status": status})

	return updated, nil
}

// DeleteUser removes an account and logs user_deleted. The activity
// history of the account is kept.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logActivity(ctx, id, ActionUserDeleted, map[string]any{})

	return nil
}

// changeSet lists only the fields an update actually sets.
func changeSet(u UpdateUserData) map[string]any {
	changes := make(map[string]any)
	set := func(key string, v *string) {
		if v != nil {
			changes[key] = *v
		}
	}
	set("email", u.Email)
	set("full_name", u.FullName)
	set("phone", u.Phone)
	set("role", u.Role)
	set("department", u.Department)
	set("team", u.Team)
	set("position", u.Position)
	set("cpf_cnpj", u.CPFCNPJ)
	if u.BirthDate != nil {
		changes["birth_date"] = u.BirthDate.Format(time.DateOnly)
	}
	if u.Status != nil {
		changes["status"] = *u.Status
	}
	if u.Permissions != nil {
		changes["permissions"] = *u.Permissions
	}
	return changes
}
