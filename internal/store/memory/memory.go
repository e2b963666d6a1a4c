// Package memory is an in-process implementation of the core store ports.
//
// It backs the test suites of core, web and the CLI. State is lost on exit.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/useradmin/internal/core"
)

// Store implements core.UserStore, core.ActivityStore, core.RoleStore and
// core.InvitationStore. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	users       []core.User // insertion order
	activity    []core.ActivityLog
	roles       []core.Role
	invitations []core.Invitation

	failCreate map[string]error
	now        func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		failCreate: make(map[string]error),
		now:        time.Now,
	}
}

// Stores returns s wired into every port.
func (s *Store) Stores() core.Stores {
	return core.Stores{Users: s, Activity: s, Roles: s, Invitations: s}
}

// FailCreate makes InsertUser return err for email. A nil err clears it.
func (s *Store) FailCreate(email string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failCreate, email)
		return
	}
	s.failCreate[email] = err
}

// SetClock overrides time.Now for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Users

func (s *Store) FindUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.userIndexByEmail(email); i >= 0 {
		return cloneUser(s.users[i]), nil
	}
	return nil, core.ErrUserNotFound
}

func (s *Store) GetUser(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.userIndex(id); i >= 0 {
		return cloneUser(s.users[i]), nil
	}
	return nil, core.ErrUserNotFound
}

func (s *Store) ListUsers(_ context.Context, f core.UserFilters) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(f.Search)
	out := make([]core.User, 0, len(s.users))
	for i := len(s.users) - 1; i >= 0; i-- {
		u := s.users[i]
		if search != "" &&
			!strings.Contains(strings.ToLower(u.FullName), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		if f.Department != "" && u.Department != f.Department {
			continue
		}
		if f.Team != "" && u.Team != f.Team {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

func (s *Store) InsertUser(_ context.Context, u core.User) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.failCreate[u.Email]; ok {
		return nil, err
	}
	if s.userIndexByEmail(u.Email) >= 0 {
		return nil, core.ErrUserExists
	}

	now := s.now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users = append(s.users, *cloneUser(u))
	return cloneUser(u), nil
}

func (s *Store) UpdateUser(_ context.Context, d core.UpdateUserData) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(d.ID)
	if i < 0 {
		return nil, core.ErrUserNotFound
	}
	if d.Email != nil {
		if j := s.userIndexByEmail(*d.Email); j >= 0 && j != i {
			return nil, core.ErrUserExists
		}
	}

	u := &s.users[i]
	setString(&u.Email, d.Email)
	setString(&u.FullName, d.FullName)
	setString(&u.Phone, d.Phone)
	setString(&u.Role, d.Role)
	setString(&u.Department, d.Department)
	setString(&u.Team, d.Team)
	setString(&u.Position, d.Position)
	setString(&u.CPFCNPJ, d.CPFCNPJ)
	if d.BirthDate != nil {
		bd := *d.BirthDate
		u.BirthDate = &bd
	}
	if d.Status != nil {
		u.Status = *d.Status
	}
	if d.Permissions != nil {
		u.Permissions = slices.Clone(*d.Permissions)
	}
	u.UpdatedAt = s.now()

	return cloneUser(*u), nil
}

func (s *Store) UpdateUserStatus(_ context.Context, id string, status core.UserStatus) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return nil, core.ErrUserNotFound
	}
	s.users[i].Status = status
	s.users[i].UpdatedAt = s.now()
	return cloneUser(s.users[i]), nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(id)
	if i < 0 {
		return core.ErrUserNotFound
	}
	s.users = slices.Delete(s.users, i, i+1)
	return nil
}

func (s *Store) userIndex(id string) int {
	return slices.IndexFunc(s.users, func(u core.User) bool { return u.ID == id })
}

func (s *Store) userIndexByEmail(email string) int {
	return slices.IndexFunc(s.users, func(u core.User) bool { return u.Email == email })
}

// Activity

func (s *Store) InsertActivity(_ context.Context, entry core.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.activity = append(s.activity, entry)
	return nil
}

func (s *Store) ListActivity(_ context.Context, f core.ActivityFilter) ([]core.ActivityLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.ActivityLog{}
	for i := len(s.activity) - 1; i >= 0; i-- {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		if f.UserID != "" && s.activity[i].UserID != f.UserID {
			continue
		}
		out = append(out, s.activity[i])
	}
	return out, nil
}

// Roles

func (s *Store) ListRoles(_ context.Context) ([]core.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Role, len(s.roles))
	for i, r := range s.roles {
		r.Permissions = slices.Clone(r.Permissions)
		out[i] = r
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) InsertRole(_ context.Context, d core.RoleData) (*core.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roleIndexByName(d.Name) >= 0 {
		return nil, core.ErrRoleExists
	}

	now := s.now()
	r := core.Role{
		ID:          uuid.NewString(),
		Name:        d.Name,
		Description: d.Description,
		Permissions: slices.Clone(d.Permissions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.roles = append(s.roles, r)
	return &r, nil
}

func (s *Store) UpdateRole(_ context.Context, id string, d core.RoleData) (*core.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.roles, func(r core.Role) bool { return r.ID == id })
	if i < 0 {
		return nil, core.ErrRoleNotFound
	}
	if j := s.roleIndexByName(d.Name); j >= 0 && j != i {
		return nil, core.ErrRoleExists
	}

	r := &s.roles[i]
	r.Name = d.Name
	r.Description = d.Description
	r.Permissions = slices.Clone(d.Permissions)
	r.UpdatedAt = s.now()

	out := *r
	out.Permissions = slices.Clone(r.Permissions)
	return &out, nil
}

func (s *Store) DeleteRole(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.roles, func(r core.Role) bool { return r.ID == id })
	if i < 0 {
		return core.ErrRoleNotFound
	}
	s.roles = slices.Delete(s.roles, i, i+1)
	return nil
}

func (s *Store) roleIndexByName(name string) int {
	return slices.IndexFunc(s.roles, func(r core.Role) bool { return strings.EqualFold(r.Name, name) })
}

// Invitations

func (s *Store) InsertInvitation(_ context.Context, inv core.Invitation) (*core.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv.ID = uuid.NewString()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = s.now()
	}
	s.invitations = append(s.invitations, inv)
	return &inv, nil
}

func (s *Store) ListInvitations(_ context.Context) ([]core.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Invitation, 0, len(s.invitations))
	for i := len(s.invitations) - 1; i >= 0; i-- {
		out = append(out, s.invitations[i])
	}
	return out, nil
}

func (s *Store) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for i := range s.invitations {
		inv := &s.invitations[i]
		if inv.Status == core.InvitationPending && !inv.ExpiresAt.After(now) {
			inv.Status = core.InvitationExpired
			n++
		}
	}
	return n, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func cloneUser(u core.User) *core.User {
	u.Permissions = slices.Clone(u.Permissions)
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	return &u
}
