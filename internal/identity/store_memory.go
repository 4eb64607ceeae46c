package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a development and test implementation of Store.
type InMemoryStore struct {
	mu       sync.RWMutex
	users    map[string]UserRow // keyed by lowercase username
	sessions map[string]*RefreshSession
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:    make(map[string]UserRow),
		sessions: make(map[string]*RefreshSession),
	}
}

func (s *InMemoryStore) CreateUser(_ context.Context, p CreateUserParams) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(p.Username)
	if _, ok := s.users[key]; ok {
		return User{}, ErrConflict
	}
	for _, row := range s.users {
		if strings.EqualFold(row.User.Email, p.Email) {
			return User{}, ErrConflict
		}
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     p.Email,
		Username:  p.Username,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	s.users[key] = UserRow{User: u, PasswordHash: p.PasswordHash}
	return u, nil
}

func (s *InMemoryStore) FindUserByLogin(_ context.Context, login string) (UserRow, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return UserRow{}, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if row, ok := s.users[strings.ToLower(login)]; ok {
		return row, nil
	}
	for _, row := range s.users {
		if strings.EqualFold(row.User.Email, login) {
			return row, nil
		}
	}
	return UserRow{}, ErrNotFound
}

func (s *InMemoryStore) FindUserByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.users[strings.ToLower(username)]
	if !ok {
		return User{}, ErrNotFound
	}
	return row.User, nil
}

func (s *InMemoryStore) CreateRefreshSession(_ context.Context, p CreateRefreshSessionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[p.TokenHash]; ok {
		return ErrConflict
	}
	s.sessions[p.TokenHash] = &RefreshSession{
		ID:        p.SessionID,
		Username:  p.Username,
		TokenHash: p.TokenHash,
		ExpiresAt: p.ExpiresAt,
	}
	return nil
}

func (s *InMemoryStore) GetRefreshSessionByHash(_ context.Context, tokenHash string) (RefreshSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[tokenHash]
	if !ok {
		return RefreshSession{}, ErrNotFound
	}
	return *sess, nil
}

func (s *InMemoryStore) RevokeRefreshSession(_ context.Context, sessionID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == sessionID && sess.RevokedAt == nil {
			t := now
			sess.RevokedAt = &t
		}
	}
	return nil
}

func (s *InMemoryStore) ReplaceRefreshSession(_ context.Context, oldID, _ uuid.UUID, now time.Time) error {
	return s.RevokeRefreshSession(context.Background(), oldID, now)
}
