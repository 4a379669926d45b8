// internal/identity/store_memory.go
package identity

import (
	"context"
	"sync"
)

type InMemoryDirectory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{profiles: make(map[string]Profile)}
}

func (d *InMemoryDirectory) Profile(_ context.Context, id string) (*Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	profile, exists := d.profiles[id]
	if !exists {
		return nil, ErrProfileNotFound
	}
	return &profile, nil
}

func (d *InMemoryDirectory) Register(_ context.Context, profile Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[profile.ID] = profile
	return nil
}
