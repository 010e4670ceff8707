package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/cmdhost/pkg/cmd"
)

// HelpCommand lists the registered commands or explains one of them.
type HelpCommand struct {
	*cmd.Descriptor
}

// NewHelpCommand builds the help command and registers it with reg.
func NewHelpCommand(reg *cmd.Registry, mws ...cmd.Middleware) cmd.Command {
	c := &HelpCommand{}
	c.Descriptor = cmd.NewDescriptor(reg, cmd.Spec{
		Names:       []string{"help", "?"},
		Usage:       "Usage: /$c [command]",
		Description: "Get a list of available commands",
		MaxArgs:     1,
	})
	return cmd.Mount(c, mws...)
}

func (c *HelpCommand) Invoke(s cmd.Sender, args []string) bool {
	var text string
	if len(args) == 0 {
		text = c.list()
	} else {
		target, ok := c.Registry().Lookup(strings.TrimPrefix(args[0], "/"))
		if !ok {
			if err := s.SendMessage(fmt.Sprintf("No command named %q.", args[0])); err != nil {
				c.Logger().Warn().Err(err).Str("sender", s.Name()).Msg("failed to send help")
			}
			return false
		}
		d := target.Describe()
		text = "/" + d.Name() + ": " + d.HelpText()
	}

	if err := s.SendMessage(text); err != nil {
		c.Logger().Warn().Err(err).Str("sender", s.Name()).Msg("failed to send help")
		return false
	}
	return true
}

func (c *HelpCommand) list() string {
	commands := c.Registry().Commands()
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Describe().Name() < commands[j].Describe().Name()
	})

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, command := range commands {
		d := command.Describe()
		sb.WriteString("/" + d.Name())
		if aliases := d.Names()[1:]; len(aliases) > 0 {
			sb.WriteString(" (" + strings.Join(aliases, ", ") + ")")
		}
		sb.WriteString(" - " + d.Description() + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
