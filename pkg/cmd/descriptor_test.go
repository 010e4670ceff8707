package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor_Defaults(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	d := NewDescriptor(reg, Spec{Names: []string{"foo", "f"}, Flags: []string{"-a", "-b", "-c"}})

	assert.Equal(t, "foo", d.Name())
	assert.Equal(t, "/foo", d.Description())
	assert.Equal(t, DefaultUsage, d.UsageTemplate())
	assert.Equal(t, "Usage: foo <flags> \nAvailable Flags: -a, -b, -c, [0 -1]", d.Usage())
	assert.Same(t, reg, d.Registry())
	assert.Same(t, d, d.Describe())
}

func TestNewDescriptor_NameIsFirst(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	for _, names := range [][]string{{"a"}, {"a", "b"}, {"long-name", "x", "y", "z"}} {
		d := NewDescriptor(reg, Spec{Names: names})
		assert.Equal(t, names[0], d.Name())
		assert.Equal(t, names, d.Names())
	}
}

func TestNewDescriptor_RejectsEmptyNames(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	for _, names := range [][]string{nil, {""}, {"a", ""}, {"", "b"}} {
		assert.Panics(t, func() { NewDescriptor(reg, Spec{Names: names}) }, "names %q", names)
	}
}

func TestNewDescriptor_KeepsExplicitValues(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	d := NewDescriptor(reg, Spec{
		Names:       []string{"give"},
		Flags:       []string{"-q"},
		Usage:       "/$c <player> [$f[0]]",
		Description: "Give an item",
		MinArgs:     1,
		MaxArgs:     2,
	})

	assert.Equal(t, "/give <player> [-q]", d.Usage())
	assert.Equal(t, "Give an item", d.Description())
	assert.Equal(t, 1, d.MinArgs())
	assert.Equal(t, 2, d.MaxArgs())
	assert.Equal(t, "Give an item\n/give <player> [-q]", d.HelpText())
}

func TestDescriptor_Windows(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	d := NewDescriptor(reg, Spec{Names: []string{"a", "b", "c", "d"}, Flags: []string{"-x", "-y", "-z"}})

	assert.Equal(t, []string{"b"}, d.NamesRange(1, 2))
	assert.Equal(t, []string{"b", "c", "d"}, d.NamesFrom(1))
	assert.Equal(t, []string{"a", "b"}, d.NamesThrough(1))
	assert.Empty(t, d.NamesRange(2, 2))
	assert.Equal(t, "c", d.NameAt(2))

	assert.Equal(t, []string{"-y", "-z"}, d.FlagsRange(1, 3))
	assert.Equal(t, []string{"-z"}, d.FlagsFrom(2))
	assert.Equal(t, []string{"-x"}, d.FlagsThrough(0))
	assert.Equal(t, "-y", d.Flag(1))
}

func TestDescriptor_WindowsOutOfRange(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	d := NewDescriptor(reg, Spec{Names: []string{"a", "b"}})

	assert.Panics(t, func() { d.NamesRange(1, 3) })
	assert.Panics(t, func() { d.NamesRange(2, 1) })
	assert.Panics(t, func() { d.NamesRange(-1, 1) })
	assert.Panics(t, func() { d.NamesFrom(2) })
	assert.Panics(t, func() { d.NamesThrough(-1) })
	assert.Panics(t, func() { d.FlagsFrom(0) })
}

func TestDescriptor_AccessorsReturnCopies(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	d := NewDescriptor(reg, Spec{Names: []string{"a", "b"}, Flags: []string{"-x"}})

	d.Names()[0] = "mutated"
	d.Flags()[0] = "mutated"
	assert.Equal(t, "a", d.Name())
	assert.Equal(t, "-x", d.Flag(0))
}

func TestDescriptor_AcceptsArgs(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	bounded := NewDescriptor(reg, Spec{Names: []string{"b"}, MinArgs: 1, MaxArgs: 2})
	open := NewDescriptor(reg, Spec{Names: []string{"o"}, MinArgs: 0, MaxArgs: Unbounded})

	assert.False(t, bounded.AcceptsArgs(0))
	assert.True(t, bounded.AcceptsArgs(1))
	assert.True(t, bounded.AcceptsArgs(2))
	assert.False(t, bounded.AcceptsArgs(3))
	assert.True(t, open.AcceptsArgs(0))
	assert.True(t, open.AcceptsArgs(100))
}

func TestDescriptor_PrintHelp(t *testing.T) {
	reg := newRegistry(&recordingHost{})
	reg.Activate()
	c := newCounting(reg, "foo")
	require.NoError(t, c.Register(c))

	assert.ErrorIs(t, c.PrintHelp(), ErrNoSender)

	s := &recordingSender{name: "steve"}
	reg.Dispatch(s, "foo", nil)
	require.NoError(t, c.PrintHelp())
	assert.Equal(t, []string{"/foo\n" + c.Usage()}, s.messages)
	assert.Same(t, s, c.Sender())
}

func TestDescriptor_RegisterWhileInactive(t *testing.T) {
	host := &recordingHost{}
	reg := newRegistry(host)
	c := newCounting(reg, "foo", "f")

	err := c.Register(c)
	assert.ErrorIs(t, err, ErrRegistryInactive)
	assert.Empty(t, host.bound)
	assert.Equal(t, 1, reg.Len())

	reg.Activate()
	require.NoError(t, c.Register(c))
	assert.Equal(t, []string{"foo", "f"}, host.bound)
	assert.Equal(t, 1, reg.Len())
}

func TestDescriptor_RegisterWithOtherRegistry(t *testing.T) {
	host := &recordingHost{}
	other := newRegistry(host)
	other.Activate()
	c := newCounting(newRegistry(&recordingHost{}), "foo")

	require.NoError(t, c.RegisterWith(other, c))
	assert.Equal(t, []string{"foo"}, host.bound)
	assert.Equal(t, 0, c.Registry().Len())
}

func TestDescriptor_RegisterWhileInactiveLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	reg := New(&recordingHost{}, WithLogger(zerolog.New(&buf)))
	c := newCounting(reg, "foo")

	err := c.Register(c)
	require.True(t, errors.Is(err, ErrRegistryInactive))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "command manager has not been activated yet", entry["message"])
	assert.Equal(t, "foo", entry["command"])
}
