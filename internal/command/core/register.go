package core

import (
	"fmt"

	"github.com/keshon/cmdhost/pkg/cmd"
)

// HelpFlag asks the register command for its help text instead of running.
const HelpFlag = "-h"

// RegisterCommand binds every known command into the host. It is meant to be
// constructed once the registry is active, but it also recovers when invoked
// on an inactive registry: it activates it and binds itself first.
type RegisterCommand struct {
	*cmd.Descriptor
	self cmd.Command
}

// NewRegisterCommand builds the register command and registers it with reg.
func NewRegisterCommand(reg *cmd.Registry, mws ...cmd.Middleware) cmd.Command {
	c := &RegisterCommand{}
	c.Descriptor = cmd.NewDescriptor(reg, cmd.Spec{
		Names:       []string{"register", "reg", "registercommands", "regcommands"},
		Flags:       []string{HelpFlag},
		Usage:       "Just call /$c",
		Description: "Registers the commands, if they didn't get registered successfully before-hand",
		MinArgs:     0,
		MaxArgs:     1,
	})
	c.self = cmd.Mount(c, mws...)
	return c.self
}

func (c *RegisterCommand) Invoke(s cmd.Sender, args []string) bool {
	reg := c.Registry()

	if !reg.Active() {
		reg.Activate()
		if err := reg.Register(c.self); err != nil {
			c.Logger().Error().Err(err).Msg("failed to register the register command")
			return false
		}
	}

	if len(args) > 0 && (args[0] == HelpFlag || args[0] == "h") {
		if err := s.SendMessage(c.HelpText()); err != nil {
			c.Logger().Warn().Err(err).Str("sender", s.Name()).Msg("failed to send help")
		}
		return true
	}

	all := reg.Commands()
	ok := true
	bound := 0
	for _, command := range all {
		if err := reg.Register(command); err != nil {
			c.Logger().Error().Err(err).Str("command", command.Describe().Name()).Msg("failed to re-register command")
			ok = false
			continue
		}
		bound++
	}

	if err := s.SendMessage(fmt.Sprintf("Re-registered %d of %d command(s).", bound, len(all))); err != nil {
		c.Logger().Warn().Err(err).Str("sender", s.Name()).Msg("failed to report registration")
	}
	return ok
}
