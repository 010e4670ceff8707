// Package command wires the built-in commands into a registry.
package command

import (
	"github.com/keshon/cmdhost/internal/command/core"
	"github.com/keshon/cmdhost/internal/command/roll"
	"github.com/keshon/cmdhost/internal/middleware"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Options tune the middleware every built-in command is mounted with.
type Options struct {
	Logger    zerolog.Logger
	RateLimit float64 // per sender, commands per second; <= 0 disables
	RateBurst int
}

// Middlewares returns the chain built-in commands are mounted with. The
// logger is outermost so refused calls are logged too.
func Middlewares(o Options) []cmd.Middleware {
	return []cmd.Middleware{
		middleware.WithArgBounds(),
		middleware.WithRateLimit(rate.Limit(o.RateLimit), o.RateBurst),
		middleware.WithCommandLogger(o.Logger),
	}
}

// Install constructs the game commands. They register themselves; on an
// inactive registry they stay pending until the register command runs.
func Install(reg *cmd.Registry, o Options) []cmd.Command {
	mws := Middlewares(o)
	return []cmd.Command{
		core.NewHelpCommand(reg, mws...),
		roll.New(reg, mws...),
	}
}

// InstallBootstrap constructs the register command.
func InstallBootstrap(reg *cmd.Registry, o Options) cmd.Command {
	return core.NewRegisterCommand(reg, Middlewares(o)...)
}
