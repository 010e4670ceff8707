package cmd

import (
	"github.com/rs/zerolog"
)

type recordingHost struct {
	bound []string
	err   error
}

func (h *recordingHost) Bind(b Binding) error {
	if h.err != nil {
		return h.err
	}
	h.bound = append(h.bound, b.Name)
	return nil
}

type recordingSender struct {
	name     string
	messages []string
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) SendMessage(msg string) error {
	s.messages = append(s.messages, msg)
	return nil
}

type countingCommand struct {
	*Descriptor
	calls  int
	args   [][]string
	result bool
}

func (c *countingCommand) Invoke(_ Sender, args []string) bool {
	c.calls++
	c.args = append(c.args, args)
	return c.result
}

func newRegistry(h Host) *Registry {
	return New(h, WithLogger(zerolog.Nop()))
}

func newCounting(reg *Registry, names ...string) *countingCommand {
	c := &countingCommand{result: true}
	c.Descriptor = NewDescriptor(reg, Spec{Names: names, MaxArgs: Unbounded})
	return c
}
