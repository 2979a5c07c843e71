package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/lock"
)

// Lock coordinates exclusive cron runs across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type leaser interface {
	Acquire(ctx context.Context, key string) (*lock.Lease, error)
}

// LeaseLock holds one named lease from a lock.Locker per cycle.
type LeaseLock struct {
	locker leaser
	key    string
	lease  *lock.Lease
}

func NewLeaseLock(locker leaser, key string) (*LeaseLock, error) {
	if locker == nil {
		return nil, errors.New("locker required for cron lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	return &LeaseLock{locker: locker, key: key}, nil
}

// Acquire reports false without error when another worker holds the lease.
func (l *LeaseLock) Acquire(ctx context.Context) (bool, error) {
	lease, err := l.locker.Acquire(ctx, l.key)
	if errors.Is(err, lock.ErrHeld) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	l.lease = lease
	return true, nil
}

func (l *LeaseLock) Release(ctx context.Context) error {
	if l.lease == nil {
		return nil
	}
	err := l.lease.Release(ctx)
	l.lease = nil
	return err
}
