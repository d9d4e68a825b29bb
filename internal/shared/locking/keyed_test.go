package locking

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAcquireTimesOutWhileHeld(t *testing.T) {
	locks := NewKeyedLocks()
	release, err := locks.Acquire(context.Background(), "sub-1", time.Second)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	defer release()

	_, err = locks.Acquire(context.Background(), "sub-1", 20*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestDifferentKeysDoNotContend(t *testing.T) {
	locks := NewKeyedLocks()
	releaseA, err := locks.Acquire(context.Background(), "sub-1", time.Second)
	if err != nil {
		t.Fatalf("acquire sub-1 failed: %v", err)
	}
	defer releaseA()

	releaseB, err := locks.Acquire(context.Background(), "dsp-1", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("acquire dsp-1 failed: %v", err)
	}
	releaseB()
}

func TestReleaseHandsOffToWaiter(t *testing.T) {
	locks := NewKeyedLocks()
	release, err := locks.Acquire(context.Background(), "sub-1", time.Second)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		next, err := locks.Acquire(context.Background(), "sub-1", time.Second)
		if err != nil {
			t.Errorf("waiter acquire failed: %v", err)
			close(acquired)
			return
		}
		next()
		close(acquired)
	}()

	time.Sleep(10 * time.Millisecond)
	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the lock")
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	locks := NewKeyedLocks()
	release, err := locks.Acquire(context.Background(), "sub-1", time.Second)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locks.Acquire(ctx, "sub-1", time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
