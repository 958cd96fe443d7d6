package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetryCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Retry(ctx, 5, time.Minute, func() error {
		attempts++
		return errors.New("transient error")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Retry returned %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("Retry called fn %d times, want 1", attempts)
	}
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	called := false
	err := Retry(context.Background(), 0, 0, func() error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("Retry should reject a zero attempt budget")
	}
	if called {
		t.Error("fn should not run when no attempts are allowed")
	}
}

func TestRateLimiterNew(t *testing.T) {
	rl := NewRateLimiter(60)
	if rl == nil {
		t.Fatal("NewRateLimiter returned nil")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait should not block or fail: %v", err)
	}
}

func TestMarketOpen(t *testing.T) {
	ist := ISTLocation()

	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"monday midday", time.Date(2025, 6, 2, 11, 0, 0, 0, ist), true},
		{"monday open", time.Date(2025, 6, 2, 9, 15, 0, 0, ist), true},
		{"monday before open", time.Date(2025, 6, 2, 9, 14, 0, 0, ist), false},
		{"monday close", time.Date(2025, 6, 2, 15, 30, 0, 0, ist), true},
		{"monday after close", time.Date(2025, 6, 2, 15, 31, 0, 0, ist), false},
		{"saturday", time.Date(2025, 6, 7, 11, 0, 0, 0, ist), false},
		{"sunday", time.Date(2025, 6, 8, 11, 0, 0, 0, ist), false},
	}

	for _, tc := range cases {
		if got := MarketOpen(tc.t); got != tc.want {
			t.Errorf("%s: MarketOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	if NewLogger("debug", "json") == nil {
		t.Fatal("NewLogger returned nil")
	}
	if NewLogger("bogus", "text") == nil {
		t.Fatal("NewLogger with unknown level should fall back, not fail")
	}
}
