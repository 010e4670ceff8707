// Package cmd provides a host-agnostic command core: a command is a Descriptor
// (names, flags, usage, argument bounds) plus an Invoke handler. A Registry gates
// name binding behind activation and dispatches invocations; how names reach the
// registry (server console, Discord, anything else) is defined by Host adapters.
package cmd

// Sender is whoever typed the command. Hosts supply their own implementation
// (console operator, chat channel, interaction).
type Sender interface {
	Name() string
	SendMessage(msg string) error
}

// Command is the universal contract: a descriptor plus a handler. Concrete
// commands usually embed *Descriptor and implement Invoke. The registry
// compares commands by identity, so implementations must be comparable
// (pointer types in practice).
type Command interface {
	Describe() *Descriptor
	Invoke(sender Sender, args []string) bool
}

// Dispatcher receives invocations for the names it was bound to.
type Dispatcher interface {
	Dispatch(sender Sender, name string, args []string) bool
}

// Binding asks a host to deliver future invocations of Name to Dispatcher.
// Command is passed along for hosts that advertise metadata (descriptions,
// slash definitions).
type Binding struct {
	Name       string
	Command    Command
	Dispatcher Dispatcher
}

// Host is the environment that owns the global command namespace.
type Host interface {
	Bind(b Binding) error
}

// HostFunc adapts a function to Host.
type HostFunc func(b Binding) error

// Bind calls f(b).
func (f HostFunc) Bind(b Binding) error { return f(b) }
