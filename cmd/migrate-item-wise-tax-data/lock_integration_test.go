package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestLocker(t *testing.T) *redislock.Client {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" || addr == "" {
		t.Skip("set INTEGRATION_TESTS=1 and REDIS_ADDRESS to run lock tests")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = client.Del(context.Background(), lockKey).Err()
		_ = client.Close()
	})
	return redislock.New(client)
}

func TestWithLock_ReleasesOnFailure(t *testing.T) {
	locker := newTestLocker(t)
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	failure := errors.New("row 7: bad json")
	err := withLock(ctx, locker, time.Minute, logger, func(ctx context.Context) error {
		// a second run is refused while the first holds the lock
		if err := withLock(ctx, locker, time.Minute, logger, func(context.Context) error { return nil }); !errors.Is(err, errLockHeld) {
			t.Errorf("concurrent run: err = %v, want %v", err, errLockHeld)
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("withLock: err = %v", err)
	}

	ran := false
	if err := withLock(ctx, locker, time.Minute, logger, func(context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("lock still held after a failed run: %v", err)
	}
	if !ran {
		t.Fatalf("second run did not execute")
	}
}

func TestWithLock_NilLocker(t *testing.T) {
	logger, _ := test.NewNullLogger()
	if err := withLock(context.Background(), nil, time.Minute, logger, func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error without redis")
	}
}
