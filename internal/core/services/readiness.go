package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/core/ports/driven"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// Default readiness budget.
const (
	DefaultMaxAttempts   = 20
	DefaultInitialDelay  = time.Second
	DefaultMaxDelay      = 10 * time.Second
	DefaultMultiplier    = 1.5
	DefaultHealthTimeout = 5 * time.Second
)

// Backoff bounds the readiness retry loop.
type Backoff struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// HealthTimeout bounds each server-side health wait.
	HealthTimeout time.Duration
}

// DefaultBackoff returns the default readiness budget.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts:   DefaultMaxAttempts,
		InitialDelay:  DefaultInitialDelay,
		MaxDelay:      DefaultMaxDelay,
		Multiplier:    DefaultMultiplier,
		HealthTimeout: DefaultHealthTimeout,
	}
}

// normalized fills zero values with defaults and clamps nonsensical ones.
// The multiplier is clamped to 1 so delays never decrease.
func (b Backoff) normalized() Backoff {
	if b.MaxAttempts < 1 {
		b.MaxAttempts = 1
	}
	if b.InitialDelay < 0 {
		b.InitialDelay = 0
	}
	if b.MaxDelay < b.InitialDelay {
		b.MaxDelay = b.InitialDelay
	}
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	if b.HealthTimeout <= 0 {
		b.HealthTimeout = DefaultHealthTimeout
	}
	return b
}

// next returns the delay following current.
func (b Backoff) next(current time.Duration) time.Duration {
	grown := time.Duration(float64(current) * b.Multiplier)
	if grown > b.MaxDelay {
		return b.MaxDelay
	}
	return grown
}

// Sleeper suspends the caller for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// contextSleep is the production Sleeper.
func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ReadinessProber polls backend health until it is operational.
// It never mutates backend state and caches nothing between calls.
type ReadinessProber struct {
	backend driven.SearchBackend
	sleep   Sleeper
}

// NewReadinessProber creates a prober for the backend.
func NewReadinessProber(backend driven.SearchBackend) *ReadinessProber {
	return &ReadinessProber{
		backend: backend,
		sleep:   contextSleep,
	}
}

// SetSleeper replaces the sleep function. Used by tests.
func (p *ReadinessProber) SetSleeper(s Sleeper) {
	p.sleep = s
}

// WaitUntilReady probes the backend until it reports yellow or green.
// Every call starts again from attempt 1. After MaxAttempts consecutive
// failures it returns an error wrapping domain.ErrBackendUnavailable and
// the last probe failure.
func (p *ReadinessProber) WaitUntilReady(ctx context.Context, b Backoff) (domain.ClusterHealth, error) {
	b = b.normalized()
	delay := b.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		health, err := p.probe(ctx, b.HealthTimeout)
		if err == nil {
			return health, nil
		}
		lastErr = err

		if attempt == b.MaxAttempts {
			break
		}

		logger.Info("Backend not ready (attempt %d/%d): %v. Retrying in %s",
			attempt, b.MaxAttempts, err, delay)

		if err := p.sleep(ctx, delay); err != nil {
			return domain.ClusterHealth{}, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
		}
		delay = b.next(delay)
	}

	logger.Error("Backend failed to become ready after %d attempts: %v", b.MaxAttempts, lastErr)
	return domain.ClusterHealth{}, fmt.Errorf("%w after %d attempts: %w",
		domain.ErrBackendUnavailable, b.MaxAttempts, lastErr)
}

// probe performs one identity call followed by one bounded health call.
func (p *ReadinessProber) probe(ctx context.Context, timeout time.Duration) (domain.ClusterHealth, error) {
	info, err := p.backend.Info(ctx)
	if err != nil {
		return domain.ClusterHealth{}, fmt.Errorf("info: %w", err)
	}

	health, err := p.backend.ClusterHealth(ctx, driven.HealthRequest{
		WaitForStatus: domain.HealthYellow,
		Timeout:       timeout,
	})
	if err != nil {
		return domain.ClusterHealth{}, fmt.Errorf("cluster health: %w", err)
	}

	if !health.Status.Operational() {
		status := string(health.Status)
		if status == "" {
			status = "unknown"
		}
		return health, errors.New("cluster status is " + status)
	}

	logger.Info("Backend ready (v%s, status: %s)", info.Version, health.Status)
	return health, nil
}
