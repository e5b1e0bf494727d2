package registry

import (
	"context"
	"sync"

	"github.com/gyro-pay/gyro/internal/ledger"
)

type memoryRepository struct {
	mu     sync.RWMutex
	owner  string
	users  map[string]struct{}
	admins []string
}

// NewMemoryRepository builds an in-memory role store for tests and development.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]struct{})}
}

func (r *memoryRepository) Owner(context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner, nil
}

func (r *memoryRepository) SetOwner(_ context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owner = owner
	return nil
}

func (r *memoryRepository) CreateUser(_ context.Context, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[address]; exists {
		return ledger.ErrAlreadyRegistered
	}
	r.users[address] = struct{}{}
	return nil
}

func (r *memoryRepository) IsUser(_ context.Context, address string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[address]
	return ok, nil
}

func (r *memoryRepository) Admins(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.admins))
	copy(out, r.admins)
	return out, nil
}

func (r *memoryRepository) AppendAdmin(_ context.Context, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a == address {
			return ledger.ErrAlreadyAdmin
		}
	}
	r.admins = append(r.admins, address)
	return nil
}
