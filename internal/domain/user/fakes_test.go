package user

import (
	"context"
	"sync"
	"time"

	"github.com/your-org/storefront-api/internal/pkg/email"
	"github.com/your-org/storefront-api/internal/pkg/pagination"
)

type fakeRepo struct {
	mu     sync.Mutex
	users  map[uint]*User
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[uint]*User{}, nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) FindByLogin(_ context.Context, login string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.FindByLogin(ctx, email)
}

func (r *fakeRepo) Exists(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) UpdateProfile(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeRepo) TouchLogin(context.Context, uint) error { return nil }

func (r *fakeRepo) List(context.Context, pagination.Query) ([]User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) SetRoles(_ context.Context, id uint, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Roles = nil
	for _, n := range names {
		if n != RoleAdmin && n != RoleUser {
			return ErrUnknownRole
		}
		u.Roles = append(u.Roles, Role{Name: n})
	}
	return nil
}

func (r *fakeRepo) SetLocked(_ context.Context, id uint, locked bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsLocked = locked
	return nil
}

func (r *fakeRepo) ListRoles(context.Context) ([]Role, error) {
	return []Role{{ID: 1, Name: RoleAdmin}, {ID: 2, Name: RoleUser}}, nil
}

type fakeSessions struct {
	mu      sync.Mutex
	refresh map[string]uint
	denied  map[string]time.Duration
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{refresh: map[string]uint{}, denied: map[string]time.Duration{}}
}

func (s *fakeSessions) SaveRefresh(_ context.Context, jti string, userID uint, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[jti] = userID
	return nil
}

func (s *fakeSessions) RefreshOwner(_ context.Context, jti string) (uint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.refresh[jti]
	return id, ok, nil
}

func (s *fakeSessions) RevokeRefresh(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, jti)
	return nil
}

func (s *fakeSessions) DenyAccess(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[jti] = ttl
	return nil
}

func (s *fakeSessions) AccessDenied(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.denied[jti]
	return ok, nil
}

type fakeMailer struct {
	sent []email.TemporaryPasswordData
	to   []string
}

func (m *fakeMailer) SendTemporaryPassword(_ context.Context, to string, data email.TemporaryPasswordData) error {
	m.to = append(m.to, to)
	m.sent = append(m.sent, data)
	return nil
}
