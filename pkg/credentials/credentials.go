// Package credentials stores the bearer token used against the hosting provider.
package credentials

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound   = errors.New("no stored credential")
	ErrEmptyToken = errors.New("token must not be empty")
)

// Store persists a single bearer token. The token is stored verbatim;
// its shape is not validated.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
}

var _ Store = &MemoryStore{}

type MemoryStore struct {
	lock  sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Token(_ context.Context) (string, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if len(m.token) == 0 {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *MemoryStore) SetToken(_ context.Context, token string) error {
	if len(token) == 0 {
		return ErrEmptyToken
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.token = token
	return nil
}
