package leetcode

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)

	start := time.Now()
	err := rl.Wait(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if elapsed > 50*time.Millisecond {
		t.Errorf("expected immediate response, got %v", elapsed)
	}
}

func TestRateLimiter_Wait_ContextCanceled(t *testing.T) {
	rl := NewRateLimiter(0.1, 1)

	// use up the burst
	_ = rl.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("expected error due to context timeout, got nil")
	}
}

func TestRateLimiter_BackoffPastDeadlineFailsAtOnce(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.SetBackoff(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := rl.Wait(ctx)
	elapsed := time.Since(start)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded due to backoff, got %v", err)
	}
	if elapsed > 50*time.Millisecond {
		t.Errorf("expected immediate failure, got %v", elapsed)
	}
}

func TestRateLimiter_BackoffWithinDeadline(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.SetBackoff(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	if err := rl.Wait(ctx); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected to sit out the backoff, got %v", elapsed)
	}
}

func TestRateLimiter_BackoffWithoutDeadline(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.SetBackoff(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	if err := rl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected Canceled, got %v", err)
	}
}

func TestRateLimiter_ShorterBackoffKeepsLonger(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.SetBackoff(time.Minute)
	long := rl.backoffUntil

	rl.SetBackoff(time.Millisecond)
	if !rl.backoffUntil.Equal(long) {
		t.Errorf("backoff shortened from %v to %v", long, rl.backoffUntil)
	}
}

func TestRateLimiter_BackoffExpires(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.backoffUntil = time.Now().Add(-100 * time.Millisecond)

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected immediate response (backoff expired), got %v", elapsed)
	}
}
