package cmd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Unbounded as MaxArgs accepts any number of arguments.
const Unbounded = -1

// DefaultUsage is used when a Spec carries no usage template.
const DefaultUsage = "Usage: $c <flags> \nAvailable Flags: $f[0 -1]"

// ErrNoSender is returned by PrintHelp before the command was ever invoked.
var ErrNoSender = errors.New("command has not been invoked yet")

// Spec declares a command. Only Names is required.
type Spec struct {
	Names       []string // Names[0] is the canonical name, the rest are aliases
	Flags       []string // already carrying their marker, e.g. "-h"
	Usage       string   // template, see RenderUsage
	Description string
	MinArgs     int
	MaxArgs     int // Unbounded for no limit
}

// Descriptor holds everything about a command except its handler. It is
// immutable after NewDescriptor apart from the last invoking sender.
type Descriptor struct {
	registry *Registry

	names         []string
	flags         []string
	usageTemplate string
	usage         string
	description   string
	minArgs       int
	maxArgs       int

	mu     sync.Mutex
	sender Sender
}

// NewDescriptor validates spec, fills in defaults and renders the usage
// template. It panics on an empty name list or an empty name: both are
// programming errors in the command definition.
func NewDescriptor(reg *Registry, spec Spec) *Descriptor {
	if reg == nil {
		panic("cmd: descriptor needs a registry")
	}
	if len(spec.Names) == 0 {
		panic("cmd: command needs at least one name")
	}
	for i, n := range spec.Names {
		if n == "" {
			panic(fmt.Sprintf("cmd: empty command name at index %d", i))
		}
	}

	d := &Descriptor{
		registry:    reg,
		names:       append([]string(nil), spec.Names...),
		flags:       append([]string(nil), spec.Flags...),
		description: spec.Description,
		minArgs:     spec.MinArgs,
		maxArgs:     spec.MaxArgs,
	}
	if d.description == "" {
		d.description = "/" + d.names[0]
	}
	d.setUsage(spec.Usage)
	return d
}

func (d *Descriptor) setUsage(tpl string) {
	if tpl == "" {
		tpl = DefaultUsage
	}
	d.usageTemplate = tpl
	d.usage = RenderUsage(tpl, d.names[0], d.flags)
}

// Describe returns d, so types embedding *Descriptor satisfy Command.
func (d *Descriptor) Describe() *Descriptor { return d }

// Name returns the canonical name.
func (d *Descriptor) Name() string { return d.names[0] }

// NameAt returns the i-th name; 0 is the canonical one.
func (d *Descriptor) NameAt(i int) string { return d.names[i] }

// Names returns the canonical name followed by the aliases.
func (d *Descriptor) Names() []string { return append([]string(nil), d.names...) }

// NamesRange returns names[begin:end].
func (d *Descriptor) NamesRange(begin, end int) []string { return window("name", d.names, begin, end) }

// NamesFrom returns the names from index i to the end.
func (d *Descriptor) NamesFrom(i int) []string {
	checkIndex("name", d.names, i)
	return window("name", d.names, i, len(d.names))
}

// NamesThrough returns the names from the start up to and including index i.
func (d *Descriptor) NamesThrough(i int) []string {
	checkIndex("name", d.names, i)
	return window("name", d.names, 0, i+1)
}

// Flag returns the i-th flag.
func (d *Descriptor) Flag(i int) string { return d.flags[i] }

// Flags returns every flag.
func (d *Descriptor) Flags() []string { return append([]string(nil), d.flags...) }

// FlagsRange returns flags[begin:end].
func (d *Descriptor) FlagsRange(begin, end int) []string { return window("flag", d.flags, begin, end) }

// FlagsFrom returns the flags from index i to the end.
func (d *Descriptor) FlagsFrom(i int) []string {
	checkIndex("flag", d.flags, i)
	return window("flag", d.flags, i, len(d.flags))
}

// FlagsThrough returns the flags from the start up to and including index i.
func (d *Descriptor) FlagsThrough(i int) []string {
	checkIndex("flag", d.flags, i)
	return window("flag", d.flags, 0, i+1)
}

// Usage returns the rendered usage text.
func (d *Descriptor) Usage() string { return d.usage }

// UsageTemplate returns the usage text before rendering.
func (d *Descriptor) UsageTemplate() string { return d.usageTemplate }

func (d *Descriptor) Description() string { return d.description }
func (d *Descriptor) MinArgs() int        { return d.minArgs }
func (d *Descriptor) MaxArgs() int        { return d.maxArgs }

// AcceptsArgs reports whether n arguments lie within the declared bounds.
func (d *Descriptor) AcceptsArgs(n int) bool {
	if n < d.minArgs {
		return false
	}
	return d.maxArgs < 0 || n <= d.maxArgs
}

// Registry returns the registry the descriptor was built for.
func (d *Descriptor) Registry() *Registry { return d.registry }

// Logger returns the registry's logger.
func (d *Descriptor) Logger() *zerolog.Logger { return d.registry.Logger() }

// Sender returns whoever invoked the command most recently, or nil.
func (d *Descriptor) Sender() Sender {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sender
}

func (d *Descriptor) remember(s Sender) {
	d.mu.Lock()
	d.sender = s
	d.mu.Unlock()
}

// HelpText is the description followed by the rendered usage.
func (d *Descriptor) HelpText() string {
	return d.description + "\n" + d.usage
}

// PrintHelp sends HelpText to the last invoking sender.
func (d *Descriptor) PrintHelp() error {
	s := d.Sender()
	if s == nil {
		return ErrNoSender
	}
	return s.SendMessage(d.HelpText())
}

// Register hands c, normally the command embedding d, to d's registry.
func (d *Descriptor) Register(c Command) error {
	return d.RegisterWith(d.registry, c)
}

// RegisterWith hands c to reg. An inactive registry is logged and returned,
// never escalated: the command stays known and can be bound later.
func (d *Descriptor) RegisterWith(reg *Registry, c Command) error {
	err := reg.Register(c)
	switch {
	case errors.Is(err, ErrRegistryInactive):
		d.Logger().Warn().Str("command", d.Name()).Msg("command manager has not been activated yet")
	case err != nil:
		d.Logger().Error().Err(err).Str("command", d.Name()).Msg("failed to bind command names")
	}
	return err
}

func checkIndex(what string, list []string, i int) {
	if i < 0 || i >= len(list) {
		panic(fmt.Sprintf("cmd: %s index %d out of range for %d entries", what, i, len(list)))
	}
}

func window(what string, list []string, begin, end int) []string {
	if begin < 0 || end > len(list) || begin > end {
		panic(fmt.Sprintf("cmd: %s window [%d:%d] out of range for %d entries", what, begin, end, len(list)))
	}
	return append([]string(nil), list[begin:end]...)
}
