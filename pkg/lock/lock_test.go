package lock

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type memStore struct {
	data map[string]string
	err  error
}

func (m *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memStore) CompareAndDelete(_ context.Context, key, value string) (bool, error) {
	if m.data[key] != value {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}

func TestLockerExclusive(t *testing.T) {
	store := &memStore{data: map[string]string{}}
	locker, err := NewLocker(store, time.Second)
	if err != nil {
		t.Fatalf("NewLocker: %v", err)
	}
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "sf:lock:order:1")
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if _, err := locker.Acquire(ctx, "sf:lock:order:1"); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
	if _, err := locker.Acquire(ctx, "sf:lock:order:2"); err != nil {
		t.Fatalf("other keys stay available: %v", err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := lease.Release(ctx); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}
	if _, err := locker.Acquire(ctx, "sf:lock:order:1"); err != nil {
		t.Fatalf("expected re-acquire after release: %v", err)
	}
}

func TestLockerPropagatesStoreErrors(t *testing.T) {
	store := &memStore{data: map[string]string{}, err: errors.New("conn refused")}
	locker, _ := NewLocker(store, 0)
	if _, err := locker.Acquire(context.Background(), "k"); err == nil || errors.Is(err, ErrHeld) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := NewLocker(nil, 0); err == nil {
		t.Fatal("nil store must be rejected")
	}
}
