package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrHeld is returned by Acquire when another owner holds the key.
var ErrHeld = errors.New("lock held by another owner")

const defaultTTL = time.Minute

// Store is the subset of the redis client a Locker needs.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}

// Locker hands out TTL-bounded exclusive leases on string keys.
type Locker struct {
	store Store
	ttl   time.Duration
}

// Lease is an owned lock. Release is safe to call more than once.
type Lease struct {
	store Store
	key   string
	owner string
}

func NewLocker(store Store, ttl time.Duration) (*Locker, error) {
	if store == nil {
		return nil, errors.New("lock store required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Locker{store: store, ttl: ttl}, nil
}

// Acquire takes key for the configured TTL or returns ErrHeld.
func (l *Locker) Acquire(ctx context.Context, key string) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx %s: %w", key, err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lease{store: l.store, key: key, owner: owner}, nil
}

// Key returns the locked key.
func (l *Lease) Key() string {
	if l == nil {
		return ""
	}
	return l.key
}

// Release frees the lease if this owner still holds it.
func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.owner == "" {
		return nil
	}
	if _, err := l.store.CompareAndDelete(ctx, l.key, l.owner); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	l.owner = ""
	return nil
}
