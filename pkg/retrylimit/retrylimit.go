// Package retrylimit paces calls to a rate-limited host API and retries the
// failed ones with exponential backoff.
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultConfig(), func() error {
//	    return publish(def)
//	})
package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token bucket whose rate grows on success and shrinks
// when the remote side throttles. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	cooldown  time.Duration
	throttled time.Time
	now       func() time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per
// second, kept within [min, max]. stepUp is added on success, stepDown
// multiplies the rate when throttled (0.5 halves it).
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min < 1 {
		min = 1
	}
	if initial < min {
		initial = min
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		cooldown: 10 * time.Second,
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless the limiter was throttled recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.now().Sub(a.throttled) > a.cooldown {
		a.set(a.limiter.Limit() + a.stepUp)
	}
}

// Throttled lowers the rate after a 429 or an overloaded server.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.throttled = a.now()
	a.set(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limiter.Limit()
}

func (a *AdaptiveLimiter) set(l rate.Limit) {
	if l > a.maxLimit {
		l = a.maxLimit
	}
	if l < a.minLimit {
		l = a.minLimit
	}
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int {
	if b := int(l); b > 1 {
		return b
	}
	return 1
}

// StatusError is an error carrying an HTTP status code.
type StatusError interface {
	error
	StatusCode() int
}

// Throttling reports whether err says the remote side is rate limiting (429)
// or overloaded (5xx).
func Throttling(err error) bool {
	var se StatusError
	if !errors.As(err, &se) {
		return false
	}
	code := se.StatusCode()
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// Permanent marks err so Do returns it without retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Config configures Do.
type Config struct {
	MaxAttempts     int // 0 retries until ctx is done
	InitialInterval time.Duration
	MaxInterval     time.Duration
	OnRetry         func(attempt int, err error)
}

// DefaultConfig returns the settings used for host API calls.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// Do runs fn until it succeeds, returns a Permanent error, runs out of
// attempts or ctx is done. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func() error) error {
	eb := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		eb.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		eb.MaxInterval = cfg.MaxInterval
	}
	eb.MaxElapsedTime = 0

	var policy backoff.BackOff = eb
	if cfg.MaxAttempts > 0 {
		policy = backoff.WithMaxRetries(eb, uint64(cfg.MaxAttempts-1))
	}

	attempt := 0
	op := func() error {
		attempt++
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		if lim != nil && Throttling(err) {
			lim.Throttled()
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		log.Debug().Err(err).Int("attempt", attempt).Dur("next", next).Msg("retrying")
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
	}

	return backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify)
}
