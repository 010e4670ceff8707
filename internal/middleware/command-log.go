package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/rs/zerolog"
)

// WithCommandLogger logs every invocation with its own id, the sender, the
// arguments, the handler's result and how long it took.
func WithCommandLogger(l zerolog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(s cmd.Sender, args []string) bool {
			start := time.Now()
			ok := c.Invoke(s, args)

			ev := l.Info()
			if !ok {
				ev = l.Warn()
			}
			ev.Str("invocation", uuid.NewString()).
				Str("command", c.Describe().Name()).
				Str("sender", s.Name()).
				Strs("args", args).
				Bool("ok", ok).
				Dur("took", time.Since(start)).
				Msg("command invoked")
			return ok
		})
	}
}
