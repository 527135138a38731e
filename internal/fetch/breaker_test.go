package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/swarmakit/layoutd/internal/manifest"
)

type flakyFetcher struct {
	fail  bool
	calls int
}

func (f *flakyFetcher) Fetch(_ context.Context, _ string) (*manifest.Manifest, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("boom")
	}
	return &manifest.Manifest{ETag: "ok"}, nil
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	inner := &flakyFetcher{fail: true}
	b := NewBreaker(inner, BreakerConfig{Threshold: 3, Cooldown: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := b.Fetch(context.Background(), "u"); err == nil {
			t.Fatal("Expected failure from inner fetcher")
		}
	}
	if inner.calls != 3 {
		t.Fatalf("Expected 3 delegated calls, got %d", inner.calls)
	}

	_, err := b.Fetch(context.Background(), "u")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen, got %v", err)
	}
	if inner.calls != 3 {
		t.Error("Open circuit must not reach the inner fetcher")
	}
}

func TestBreakerProbeClosesCircuit(t *testing.T) {
	inner := &flakyFetcher{fail: true}
	b := NewBreaker(inner, BreakerConfig{Threshold: 1, Cooldown: 10 * time.Millisecond})

	if _, err := b.Fetch(context.Background(), "u"); err == nil {
		t.Fatal("Expected failure")
	}
	if _, err := b.Fetch(context.Background(), "u"); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Circuit should be open, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	inner.fail = false
	if _, err := b.Fetch(context.Background(), "u"); err != nil {
		t.Fatalf("Probe should pass through after cooldown: %v", err)
	}

	// Success closed the circuit again.
	if _, err := b.Fetch(context.Background(), "u"); err != nil {
		t.Errorf("Closed circuit should delegate, got %v", err)
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	inner := &flakyFetcher{fail: true}
	b := NewBreaker(inner, BreakerConfig{Threshold: 1, Cooldown: 10 * time.Millisecond})

	b.Fetch(context.Background(), "u")
	time.Sleep(20 * time.Millisecond)

	if _, err := b.Fetch(context.Background(), "u"); errors.Is(err, ErrCircuitOpen) {
		t.Fatal("Probe should reach the inner fetcher")
	}
	if _, err := b.Fetch(context.Background(), "u"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Failed probe should restart the cooldown, got %v", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	inner := &flakyFetcher{}
	b := NewBreaker(inner, BreakerConfig{Threshold: 2, Cooldown: time.Hour})

	inner.fail = true
	b.Fetch(context.Background(), "u")
	inner.fail = false
	if _, err := b.Fetch(context.Background(), "u"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	inner.fail = true
	if _, err := b.Fetch(context.Background(), "u"); errors.Is(err, ErrCircuitOpen) {
		t.Error("Single failure after success must not open the circuit")
	}
}
