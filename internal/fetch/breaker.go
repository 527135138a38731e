package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/swarmakit/layoutd/internal/manifest"
)

// ErrCircuitOpen is returned while the breaker is rejecting fetches.
var ErrCircuitOpen = errors.New("manifest fetch circuit open")

// BreakerConfig tunes a Breaker.
type BreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the
	// circuit. Defaults to 5.
	Threshold int
	// Cooldown is how long the circuit stays open before one probe fetch is
	// allowed through. Defaults to 30 seconds.
	Cooldown time.Duration
}

// Breaker wraps a Fetcher with a circuit breaker. Consecutive failures open
// the circuit; after the cooldown a single probe is let through, and its
// outcome either closes the circuit or restarts the cooldown.
type Breaker struct {
	inner Fetcher
	cfg   BreakerConfig

	mu       sync.Mutex
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker wraps inner with breaker semantics.
func NewBreaker(inner Fetcher, cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{inner: inner, cfg: cfg}
}

// Fetch delegates to the wrapped fetcher unless the circuit is open.
func (b *Breaker) Fetch(ctx context.Context, url string) (*manifest.Manifest, error) {
	if err := b.before(); err != nil {
		return nil, err
	}
	m, err := b.inner.Fetch(ctx, url)
	b.after(err == nil)
	return m, err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.cfg.Threshold {
		return nil
	}
	if time.Since(b.openedAt) < b.cfg.Cooldown {
		return ErrCircuitOpen
	}
	// Half-open: exactly one probe at a time.
	if b.probing {
		return ErrCircuitOpen
	}
	b.probing = true
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if success {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.cfg.Threshold {
		b.openedAt = time.Now()
	}
}
