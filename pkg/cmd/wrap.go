package cmd

// Unwrappable is implemented by wrapped commands so hosts can reach the
// underlying command (e.g. to type-assert to an optional provider interface).
type Unwrappable interface {
	Command
	Unwrap() Command
}

// Wrapped wraps a command with a custom Invoke. Used by middleware. The
// descriptor is the inner one, so names, usage and help stay the same.
type Wrapped struct {
	Inner      Command
	InvokeFunc func(sender Sender, args []string) bool
}

// Describe delegates to the inner command.
func (w *Wrapped) Describe() *Descriptor { return w.Inner.Describe() }

// Invoke runs the wrapper's InvokeFunc.
func (w *Wrapped) Invoke(sender Sender, args []string) bool {
	if w.InvokeFunc != nil {
		return w.InvokeFunc(sender, args)
	}
	return w.Inner.Invoke(sender, args)
}

// Unwrap returns the inner command.
func (w *Wrapped) Unwrap() Command { return w.Inner }

// Wrap returns a command that runs invoke instead of c.Invoke.
// Use this in middleware; the returned command implements Unwrappable.
func Wrap(c Command, invoke func(sender Sender, args []string) bool) Command {
	return &Wrapped{Inner: c, InvokeFunc: invoke}
}

// Root unwraps a command until the underlying command is not Unwrappable.
func Root(c Command) Command {
	for {
		if u, ok := c.(Unwrappable); ok {
			c = u.Unwrap()
		} else {
			return c
		}
	}
}
