package auth

import (
	"context"
	"sync"
	"time"

	"github.com/gyro-pay/gyro/internal/ledger"
)

type memoryRepository struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryRepository builds an in-memory credential store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{creds: make(map[string]Credential)}
}

func (r *memoryRepository) Create(_ context.Context, cred Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.creds[cred.Principal]; exists {
		return ledger.ErrAlreadyRegistered
	}
	r.creds[cred.Principal] = cred
	return nil
}

func (r *memoryRepository) Find(_ context.Context, principal string) (Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[principal]
	if !ok {
		return Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

func (r *memoryRepository) UpdateTokenVersion(_ context.Context, principal string, version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[principal]
	if !ok {
		return ErrCredentialNotFound
	}
	cred.TokenVersion = version
	r.creds[principal] = cred
	return nil
}

func (r *memoryRepository) TouchLogin(_ context.Context, principal string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[principal]
	if !ok {
		return ErrCredentialNotFound
	}
	cred.LastLogin = &at
	r.creds[principal] = cred
	return nil
}
