package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/checkin-system/users-api/internal/core/domain"
	"github.com/checkin-system/users-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory ports.Store used by the service tests.
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*domain.User
	checkIns map[int64]*domain.CheckIn
	tokens   map[string]*domain.Token

	// beforeTokenCreate runs once ahead of the next token insert, letting a
	// test slip in a competing token.
	beforeTokenCreate func(s *memStore)
	txCalls           int
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*domain.User),
		checkIns: make(map[int64]*domain.CheckIn),
		tokens:   make(map[string]*domain.Token),
	}
}

func (s *memStore) Users() ports.UserRepository       { return memUsers{s} }
func (s *memStore) CheckIns() ports.CheckInRepository { return memCheckIns{s} }
func (s *memStore) Tokens() ports.TokenRepository     { return memTokens{s} }
func (s *memStore) Ping(context.Context) error        { return nil }
func (s *memStore) Close() error                      { return nil }

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	s.txCalls++
	return fn(ctx, s)
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (s *memStore) seedUser(username, hash string, active bool) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &domain.User{ID: s.id(), Username: username, Email: username + "@example.com", PasswordHash: hash, IsActive: active}
	s.users[u.ID] = u
	return cloneUser(u)
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	c.ID = r.s.id()
	r.s.users[c.ID] = c
	return cloneUser(c), nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) List(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.User
	for _, u := range r.s.users {
		if f.Search != "" && !strings.Contains(u.Username+u.Email+u.Name+u.Lastname, f.Search) {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r memUsers) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for _, u := range r.s.users {
		if u.ID != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r memUsers) SetLastLogin(_ context.Context, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

type memCheckIns struct{ s *memStore }

func (r memCheckIns) withUser(c *domain.CheckIn) *domain.CheckIn {
	out := *c
	if u, ok := r.s.users[c.UserID]; ok {
		out.User = cloneUser(u)
	}
	return &out
}

func (r memCheckIns) sorted(keep func(*domain.CheckIn) bool) []*domain.CheckIn {
	out := []*domain.CheckIn{}
	for _, c := range r.s.checkIns {
		if keep(c) {
			out = append(out, r.withUser(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckInTime.Equal(out[j].CheckInTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].CheckInTime.After(out[j].CheckInTime)
	})
	return out
}

func (r memCheckIns) Create(_ context.Context, c *domain.CheckIn) (*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *c
	stored.ID = r.s.id()
	r.s.checkIns[stored.ID] = &stored
	return r.withUser(&stored), nil
}

func (r memCheckIns) FindByID(_ context.Context, id int64) (*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.checkIns[id]
	if !ok {
		return nil, domain.ErrCheckInNotFound
	}
	return r.withUser(c), nil
}

func (r memCheckIns) List(context.Context) ([]*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(*domain.CheckIn) bool { return true }), nil
}

func (r memCheckIns) ListByUser(_ context.Context, userID int64) ([]*domain.CheckIn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(c *domain.CheckIn) bool { return c.UserID == userID }), nil
}

func (r memCheckIns) LatestByUser(ctx context.Context, userID int64) (*domain.CheckIn, error) {
	all, _ := r.ListByUser(ctx, userID)
	if len(all) == 0 {
		return nil, domain.ErrCheckInNotFound
	}
	return all[0], nil
}

func (r memCheckIns) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.checkIns[id]; !ok {
		return domain.ErrCheckInNotFound
	}
	delete(r.s.checkIns, id)
	return nil
}

func (r memCheckIns) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.checkIns {
		if c.UserID == userID {
			delete(r.s.checkIns, id)
		}
	}
	return nil
}

type memTokens struct{ s *memStore }

func (r memTokens) FindByUser(_ context.Context, userID int64) (*domain.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (r memTokens) FindByKey(_ context.Context, key string) (*domain.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[key]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	c := *t
	return &c, nil
}

func (r memTokens) Create(_ context.Context, token *domain.Token) error {
	if hook := r.s.beforeTokenCreate; hook != nil {
		r.s.beforeTokenCreate = nil
		hook(r.s)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.UserID == token.UserID {
			return domain.ErrTokenConflict
		}
	}
	c := *token
	r.s.tokens[token.Key] = &c
	return nil
}

func (r memTokens) Delete(_ context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, key)
	return nil
}

func (r memTokens) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

func (s *memStore) putToken(t *domain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.Key] = t
}

// expireToken moves the stored token's expiry into the past.
func (s *memStore) expireToken(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	s.tokens[key].Expires = &past
}
