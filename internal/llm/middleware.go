package llm

import (
	"context"
	"log"
	"math/rand/v2"
	"time"
)

// Middleware decorates a TextClient to inject cross-cutting concerns
// (rate limiting, retries, logging).
type Middleware func(TextClient) TextClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner TextClient, mws ...Middleware) TextClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Retry with exponential backoff --------

// AttemptFunc observes a single completion attempt: 1-based attempt
// number, time spent in the attempt, and its error (nil on success).
type AttemptFunc func(ctx context.Context, attempt int, latency time.Duration, err error)

type RetryConfig struct {
	MaxAttempts int           // default 3
	BaseDelay   time.Duration // default 300ms, doubled per attempt
	MaxDelay    time.Duration // backoff cap, default 10s
	// AttemptTimeout bounds each individual attempt. Exceeding it counts
	// as a transport failure and is retried.
	AttemptTimeout time.Duration
	OnAttempt      AttemptFunc
}

// Retry retries Complete up to MaxAttempts with jittered exponential
// backoff. Permanent errors (upstream 4xx) are returned immediately.
// Backoff waits are context-aware so a canceled caller never sits in a
// blocking sleep.
func Retry(cfg RetryConfig) Middleware {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 300 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	return func(next TextClient) TextClient {
		return &retrying{next: next, cfg: cfg}
	}
}

type retrying struct {
	next TextClient
	cfg  RetryConfig
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Complete(ctx context.Context, system, user string) (string, error) {
	var last error
	for i := 0; i < r.cfg.MaxAttempts; i++ {
		text, err := r.attempt(ctx, i+1, system, user)
		if err == nil {
			return text, nil
		}
		if IsPermanent(err) {
			return "", err
		}
		last = err
		// Stop immediately if the caller's context is canceled.
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if i == r.cfg.MaxAttempts-1 {
			break
		}
		select {
		case <-time.After(r.backoff(i)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", last
}

func (r *retrying) attempt(ctx context.Context, n int, system, user string) (string, error) {
	actx := ctx
	if r.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, r.cfg.AttemptTimeout)
		defer cancel()
	}
	start := time.Now()
	text, err := r.next.Complete(actx, system, user)
	if r.cfg.OnAttempt != nil {
		r.cfg.OnAttempt(ctx, n, time.Since(start), err)
	}
	return text, err
}

// backoff returns base*2^i, capped, with up to 50% random jitter removed
// so concurrent retries do not line up against the backend.
func (r *retrying) backoff(i int) time.Duration {
	d := r.cfg.BaseDelay * time.Duration(1<<i)
	if d > r.cfg.MaxDelay {
		d = r.cfg.MaxDelay
	}
	half := d / 2
	return half + rand.N(half+1)
}

// -------- Rate Limiting --------

// RateLimit limits request rate using the token-bucket rpsLimiter.
// If rps <= 0, the limiter is effectively disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next TextClient) TextClient {
		rl := newRPSLimiter(rps, burst) // nil when disabled
		return &rateLimited{next: next, rl: rl}
	}
}

type rateLimited struct {
	next TextClient
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}

func (c *rateLimited) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return "", err
	}
	return c.next.Complete(ctx, system, user)
}

// -------- Logging --------

// WithLogging logs request size and errors per stage. Provide a custom
// logger or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next TextClient) TextClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next TextClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Complete(ctx context.Context, system, user string) (string, error) {
	l.log.Printf("LLM request (%s): %d bytes", StageFrom(ctx), len(system)+len(user))
	text, err := l.next.Complete(ctx, system, user)
	if err != nil {
		l.log.Printf("LLM error (%s): %v", StageFrom(ctx), err)
	}
	return text, err
}
