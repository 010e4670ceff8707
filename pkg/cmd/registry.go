package cmd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrRegistryInactive is returned by Register before Activate was called.
// The command is still recorded and can be bound by registering it again.
var ErrRegistryInactive = errors.New("command registry has not been activated")

// State of a Registry. The only transition is Inactive -> Active.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by the registry and its descriptors.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// Registry keeps the registered commands in insertion order, binds their
// names into the host once activated and dispatches invocations. One registry
// per plugin instance; it is safe for concurrent use.
type Registry struct {
	host Host
	log  zerolog.Logger

	mu       sync.RWMutex
	state    State
	commands []Command
}

// New returns an inactive registry bound to host.
func New(host Host, opts ...Option) *Registry {
	if host == nil {
		panic("cmd: registry needs a host")
	}
	r := &Registry{host: host, log: log.Logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *zerolog.Logger { return &r.log }

// Activate allows names to be bound. Calling it again is a no-op.
func (r *Registry) Activate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Active {
		return
	}
	r.state = Active
	r.log.Debug().Msg("command registry activated")
}

// Active reports whether Activate has been called.
func (r *Registry) Active() bool { return r.State() == Active }

// State returns the activation state.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Register records c (once per identity) and, if the registry is active,
// binds every one of its names to this registry. Binding happens on every
// call, so registering again is how pending commands get bound.
func (r *Registry) Register(c Command) error {
	d := c.Describe()

	r.mu.Lock()
	if !r.contains(c) {
		r.commands = append(r.commands, c)
	}
	active := r.state == Active
	r.mu.Unlock()

	if !active {
		return fmt.Errorf("register %q: %w", d.Name(), ErrRegistryInactive)
	}

	var errs []error
	for _, name := range d.Names() {
		if err := r.host.Bind(Binding{Name: name, Command: c, Dispatcher: r}); err != nil {
			errs = append(errs, fmt.Errorf("bind %q: %w", name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("register %q: %w", d.Name(), err)
	}
	r.log.Debug().Strs("names", d.Names()).Msg("command bound")
	return nil
}

func (r *Registry) contains(c Command) bool {
	for _, have := range r.commands {
		if have == c {
			return true
		}
	}
	return false
}

// Commands returns the registered commands in insertion order.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Command(nil), r.commands...)
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Lookup returns the first registered command answering to name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.commands {
		for _, n := range c.Describe().names {
			if n == name {
				return c, true
			}
		}
	}
	return nil, false
}

// Dispatch invokes the first command answering to name and returns its
// result. Later commands sharing the name are not invoked. An unknown name
// does nothing and returns false.
func (r *Registry) Dispatch(sender Sender, name string, args []string) bool {
	c, ok := r.Lookup(name)
	if !ok {
		return false
	}
	c.Describe().remember(sender)
	return c.Invoke(sender, args)
}
