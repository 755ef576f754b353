package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"labtest-be/internal/auth"
	"labtest-be/internal/user"
)

// UserStore implements user.Repository; emails are unique case-insensitively.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

var _ user.Repository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: map[string]*user.User{}}
}

func copyUser(u *user.User) *user.User {
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailExists
		}
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (s *UserStore) TouchLogin(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (s *UserStore) ListByRoles(ctx context.Context, roles []auth.Role) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []user.User{}
	for _, u := range s.users {
		if slices.Contains(roles, u.Role) {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
