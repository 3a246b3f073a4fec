package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rentora/pkg/logger"
)

func newTestLocker(t *testing.T, attempts int, backoff time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.New(logger.Config{Level: "error", Service: "test"})
	return NewRedisLocker(rdb, log, attempts, backoff), mr
}

func TestWithLock_RunsBodyAndReleases(t *testing.T) {
	locker, mr := newTestLocker(t, 1, 0)

	ran := false
	err := locker.WithLock(context.Background(), "booking:a:confirm", 5*time.Second, func(ctx context.Context) error {
		ran = true
		if !mr.Exists("booking:a:confirm") {
			t.Error("expected lock key to exist inside the critical section")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("expected body to run")
	}
	if mr.Exists("booking:a:confirm") {
		t.Error("expected lock key to be released after body returns")
	}
}

func TestWithLock_ReleasesOnBodyError(t *testing.T) {
	locker, mr := newTestLocker(t, 1, 0)

	bodyErr := errors.New("domain failure")
	err := locker.WithLock(context.Background(), "k", time.Second, func(ctx context.Context) error {
		return bodyErr
	})
	if !errors.Is(err, bodyErr) {
		t.Fatalf("expected body error to propagate, got %v", err)
	}
	if mr.Exists("k") {
		t.Error("expected lock released on error path")
	}
}

func TestWithLock_SecondHolderRefused(t *testing.T) {
	locker, _ := newTestLocker(t, 2, 5*time.Millisecond)

	release := make(chan struct{})
	firstHeld := make(chan struct{})
	var secondErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = locker.WithLock(context.Background(), "same", 5*time.Second, func(ctx context.Context) error {
			close(firstHeld)
			<-release
			return nil
		})
	}()
	go func() {
		defer wg.Done()
		<-firstHeld
		secondErr = locker.WithLock(context.Background(), "same", 5*time.Second, func(ctx context.Context) error {
			return nil
		})
		close(release)
	}()
	wg.Wait()

	if !errors.Is(secondErr, ErrNotAcquired) {
		t.Fatalf("expected ErrNotAcquired for the contending caller, got %v", secondErr)
	}
}

func TestWithLock_AcquiresAfterRelease(t *testing.T) {
	locker, _ := newTestLocker(t, 1, 0)

	if err := locker.WithLock(context.Background(), "seq", time.Second, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("first acquisition failed: %v", err)
	}
	if err := locker.WithLock(context.Background(), "seq", time.Second, func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("second acquisition after release failed: %v", err)
	}
}

func TestWithLock_StaleHolderDoesNotReleaseSuccessor(t *testing.T) {
	locker, mr := newTestLocker(t, 1, 0)

	err := locker.WithLock(context.Background(), "lease", 50*time.Millisecond, func(ctx context.Context) error {
		// Lease expires mid-body; a successor takes the lock.
		mr.FastForward(100 * time.Millisecond)
		if err := mr.Set("lease", "successor-token"); err != nil {
			t.Fatalf("failed to seed successor lock: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := mr.Get("lease")
	if err != nil {
		t.Fatalf("expected successor lock to survive stale release, got %v", err)
	}
	if got != "successor-token" {
		t.Errorf("expected successor token intact, got %q", got)
	}
}

func TestWithLock_ExpiredLeaseAllowsNextAcquirer(t *testing.T) {
	locker, mr := newTestLocker(t, 1, 0)

	// Simulate a crashed holder: key set with TTL, never released.
	if err := mr.Set("crashed", "dead-owner"); err != nil {
		t.Fatal(err)
	}
	mr.SetTTL("crashed", 20*time.Millisecond)
	mr.FastForward(30 * time.Millisecond)

	err := locker.WithLock(context.Background(), "crashed", time.Second, func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("expected acquisition after lease expiry, got %v", err)
	}
}
