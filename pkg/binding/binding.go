// Package binding persists the link between a project and the remote site it deploys to.
package binding

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotFound   = errors.New("project is not bound to a site")
	ErrIncomplete = errors.New("site binding requires both site ID and site name")
)

// SiteBinding is immutable once created. A project deploys to exactly one site.
type SiteBinding struct {
	SiteID   string `json:"siteId"`
	SiteName string `json:"siteName"`
}

func (b SiteBinding) Valid() error {
	if len(b.SiteID) == 0 || len(b.SiteName) == 0 {
		return ErrIncomplete
	}
	return nil
}

// Store reads and writes the binding of a single project.
//
// Binding returns ErrNotFound when the project has no binding. SaveBinding
// overwrites; callers are responsible for only saving when no binding exists.
type Store interface {
	Binding(ctx context.Context) (*SiteBinding, error)
	SaveBinding(ctx context.Context, binding SiteBinding) error
}

func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

var _ Store = &MemoryStore{}

type MemoryStore struct {
	lock    sync.RWMutex
	binding *SiteBinding
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Binding(_ context.Context) (*SiteBinding, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if m.binding == nil {
		return nil, ErrNotFound
	}
	b := *m.binding
	return &b, nil
}

func (m *MemoryStore) SaveBinding(_ context.Context, binding SiteBinding) error {
	if err := binding.Valid(); err != nil {
		return err
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.binding = &binding
	return nil
}
