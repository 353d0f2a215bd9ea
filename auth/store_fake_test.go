package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-memory UserStore used by service and handler
// tests. It enforces the same uniqueness the database would.
type memoryStore struct {
	mu    sync.Mutex
	users map[string]*User // keyed by ID

	createErr error
	lookupErr error
	updateErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]*User)}
}

func (m *memoryStore) CreateUser(_ context.Context, params NewUser) (*User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == params.Username || u.Email == params.Email {
			return nil, ErrDuplicateUser
		}
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    time.Now(),
	}
	m.users[user.ID] = user

	clone := *user
	return &clone, nil
}

func (m *memoryStore) GetUserByUsername(_ context.Context, username string) (*User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryStore) GetUserByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, ErrUserNotFound
}

func (m *memoryStore) UpdateRefreshTokenHash(_ context.Context, userID, refreshTokenHash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.RefreshTokenHash = &refreshTokenHash
	return nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memoryStore) byUsername(username string) *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone
		}
	}
	return nil
}
