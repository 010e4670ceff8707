package middleware

import (
	"sync"

	"github.com/keshon/cmdhost/pkg/cmd"
	"golang.org/x/time/rate"
)

// TooFast is sent to a sender who ran out of tokens.
const TooFast = "You are sending commands too fast, slow down."

// WithRateLimit gives every sender, by name, its own token bucket of limit
// invocations per second with the given burst. A non-positive limit disables
// the check.
func WithRateLimit(limit rate.Limit, burst int) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		if limit <= 0 {
			return c
		}
		var (
			mu      sync.Mutex
			buckets = make(map[string]*rate.Limiter)
		)
		return cmd.Wrap(c, func(s cmd.Sender, args []string) bool {
			mu.Lock()
			lim, ok := buckets[s.Name()]
			if !ok {
				lim = rate.NewLimiter(limit, burst)
				buckets[s.Name()] = lim
			}
			mu.Unlock()

			if !lim.Allow() {
				_ = s.SendMessage(TooFast)
				return false
			}
			return c.Invoke(s, args)
		})
	}
}
