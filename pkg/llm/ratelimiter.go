package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig bounds the request rate and retry behavior of a
// RateLimitedProvider.
type RateLimiterConfig struct {
	RequestsPerMinute int
	Burst             int
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
}

// DefaultRateLimiterConfig is a conservative starting point for hosted
// providers.
var DefaultRateLimiterConfig = RateLimiterConfig{
	RequestsPerMinute: 60,
	Burst:             5,
	MaxRetries:        3,
	InitialBackoff:    500 * time.Millisecond,
	MaxBackoff:        8 * time.Second,
}

// RateLimitedProvider wraps a Provider with a token-bucket rate limit and
// bounded exponential-backoff retries. The harness core implements no retry
// policy of its own; callers that want one layer it here, at the
// collaborator boundary.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
	cfg     RateLimiterConfig
}

// NewRateLimitedProvider wraps inner with the given config.
func NewRateLimitedProvider(inner Provider, cfg RateLimiterConfig) (*RateLimitedProvider, error) {
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", cfg.RequestsPerMinute)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.Burst)
	return &RateLimitedProvider{inner: inner, limiter: limiter, cfg: cfg}, nil
}

func (p *RateLimitedProvider) Name() string         { return p.inner.Name() }
func (p *RateLimitedProvider) DefaultModel() string { return p.inner.DefaultModel() }

func (p *RateLimitedProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	backoff := p.cfg.InitialBackoff
	if backoff <= 0 {
		backoff = DefaultRateLimiterConfig.InitialBackoff
	}

	var lastErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := p.inner.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if attempt == p.cfg.MaxRetries {
			break
		}
		slog.Warn("provider call failed, retrying", "provider", p.inner.Name(), "attempt", attempt+1, "err", err)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
		if p.cfg.MaxBackoff > 0 && backoff > p.cfg.MaxBackoff {
			backoff = p.cfg.MaxBackoff
		}
	}

	return nil, fmt.Errorf("provider %s: %d attempts failed: %w", p.inner.Name(), p.cfg.MaxRetries+1, lastErr)
}
