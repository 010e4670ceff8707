package middleware

import (
	"github.com/keshon/cmdhost/pkg/cmd"
)

// WithArgBounds refuses invocations whose argument count falls outside the
// command's MinArgs/MaxArgs and sends the command's help text instead.
func WithArgBounds() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(s cmd.Sender, args []string) bool {
			d := c.Describe()
			if d.AcceptsArgs(len(args)) {
				return c.Invoke(s, args)
			}
			if err := s.SendMessage(d.HelpText()); err != nil {
				d.Logger().Warn().Err(err).Str("command", d.Name()).Msg("failed to send help")
			}
			return false
		})
	}
}
