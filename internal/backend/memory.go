package backend

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// MemoryBackend keeps stored passwords in a map keyed by normalized DN.
type MemoryBackend struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{users: make(map[string]string)}
}

// AddUser registers dn with a stored password value (see VerifyPassword for
// the accepted formats). An existing user is overwritten.
func (b *MemoryBackend) AddUser(dn, storedPassword string) error {
	key := NormalizeDN(dn)
	if key == "" {
		return errors.Wrap(ErrInvalidDN, "add user")
	}
	if storedPassword == "" {
		return errors.Wrapf(ErrInvalidPasswordFormat, "add user %s", dn)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[key] = storedPassword
	return nil
}

// RemoveUser deletes dn. Removing an unknown user is a no-op.
func (b *MemoryBackend) RemoveUser(dn string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, NormalizeDN(dn))
}

// Len returns the number of registered users.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.users)
}

// Bind implements Backend.
func (b *MemoryBackend) Bind(ctx context.Context, dn, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := NormalizeDN(dn)
	if key == "" {
		return ErrInvalidCredentials
	}

	b.mu.RLock()
	stored, ok := b.users[key]
	b.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}

	if err := VerifyPassword(password, stored); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
