package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amishk599/jobradius/internal/model"
)

func TestWait_EnforcesMinDelay(t *testing.T) {
	limiter := NewLimiter(100 * time.Millisecond)
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited at least ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	limiter := NewLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected near-instant waits, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewLimiter(5 * time.Second) // long delay

	// First call to use up the burst.
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := limiter.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWait_DeadlineTooCloseReportsDeadlineExceeded(t *testing.T) {
	limiter := NewLimiter(5 * time.Second)
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected wait to give up early, took %v", elapsed)
	}
}

// --- Fake for RateLimitedProvider test ---

type recordingProvider struct {
	calls int
}

func (p *recordingProvider) Search(_ context.Context, _ model.SearchParams) ([]model.RawRecord, error) {
	p.calls++
	return []model.RawRecord{{"title": "x"}}, nil
}

func TestRateLimitedProvider_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewLimiter(100 * time.Millisecond)
	inner := &recordingProvider{}
	provider := NewRateLimitedProvider(inner, limiter)
	ctx := context.Background()

	if _, err := provider.Search(ctx, model.SearchParams{}); err != nil {
		t.Fatalf("first search: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner provider calls = %d after first search", inner.calls)
	}

	// Second call should wait for the limiter.
	start := time.Now()
	records, err := provider.Search(ctx, model.SearchParams{})
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	elapsed := time.Since(start)

	if inner.calls != 2 || len(records) != 1 {
		t.Fatalf("inner calls = %d, records = %d", inner.calls, len(records))
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second search, got %v", elapsed)
	}
}

func TestRateLimitedProvider_SkipsInnerWhenWaitFails(t *testing.T) {
	limiter := NewLimiter(5 * time.Second)
	inner := &recordingProvider{}
	provider := NewRateLimitedProvider(inner, limiter)

	if _, err := provider.Search(context.Background(), model.SearchParams{}); err != nil {
		t.Fatalf("first search: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := provider.Search(ctx, model.SearchParams{}); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if inner.calls != 1 {
		t.Errorf("inner provider should not be called after a failed wait, calls = %d", inner.calls)
	}
}
