package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iump/fruittree-backend/pkg/instance"
	"github.com/redis/go-redis/v9"
)

type memoryRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	setErr error
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if m.setErr != nil {
		return false, m.setErr
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryRedis) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	t.Setenv(instance.EnvWorkerID, "cron-1")
	store := newMemoryRedis()
	lock, err := NewRedisLock(store, "ft:lock:cron", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected acquire, got %v %v", ok, err)
	}
	if store.ttls["ft:lock:cron"] != defaultLockTTL {
		t.Fatalf("expected default ttl, got %v", store.ttls["ft:lock:cron"])
	}
	if !strings.HasPrefix(store.values["ft:lock:cron"], "cron-1:") {
		t.Fatalf("owner should name the instance, got %q", store.values["ft:lock:cron"])
	}

	other, _ := NewRedisLock(store, "ft:lock:cron", time.Minute)
	if ok, _ := other.Acquire(context.Background()); ok {
		t.Fatal("second lock should not acquire")
	}
	if err := other.Release(context.Background()); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, held := store.values["ft:lock:cron"]; !held {
		t.Fatal("non-owner release must not delete the lock")
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held := store.values["ft:lock:cron"]; held {
		t.Fatal("owner release should delete the lock")
	}
}

func TestRedisLockDoesNotDeleteForeignOwner(t *testing.T) {
	store := newMemoryRedis()
	lock, _ := NewRedisLock(store, "k", time.Minute)
	if ok, _ := lock.Acquire(context.Background()); !ok {
		t.Fatal("expected acquire")
	}
	// lock expired and was taken by another worker
	store.values["k"] = "other:owner"
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["k"] != "other:owner" {
		t.Fatal("foreign lock deleted")
	}
}

func TestRedisLockErrors(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatal("expected nil client error")
	}
	if _, err := NewRedisLock(newMemoryRedis(), "", 0); err == nil {
		t.Fatal("expected empty key error")
	}
	store := newMemoryRedis()
	store.setErr = errors.New("down")
	lock, _ := NewRedisLock(store, "k", 0)
	if _, err := lock.Acquire(context.Background()); err == nil {
		t.Fatal("expected setnx error")
	}
}
