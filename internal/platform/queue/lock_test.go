package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumni_connect/internal/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestLockerExclusive(t *testing.T) {
	_, rdb := newTestRedis(t)
	locker := NewLocker(rdb, time.Minute)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "inflight:user-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := locker.Acquire(ctx, "inflight:user-1"); !errors.Is(err, common.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if _, err := locker.Acquire(ctx, "inflight:user-2"); err != nil {
		t.Fatalf("other key should be free: %v", err)
	}

	release()
	again, err := locker.Acquire(ctx, "inflight:user-1")
	if err != nil {
		t.Fatalf("expected lock to be free after release: %v", err)
	}
	again()
}

func TestLockerReleaseKeepsForeignHolder(t *testing.T) {
	mr, rdb := newTestRedis(t)
	locker := NewLocker(rdb, time.Second)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "inflight:user-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	mr.FastForward(2 * time.Second)

	second, err := locker.Acquire(ctx, "inflight:user-1")
	if err != nil {
		t.Fatalf("expected expired lock to be re-acquired: %v", err)
	}
	release()
	if !mr.Exists("inflight:user-1") {
		t.Fatal("stale release must not delete the new holder's key")
	}
	second()
	if mr.Exists("inflight:user-1") {
		t.Fatal("expected key deleted by its holder")
	}
}
