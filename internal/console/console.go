// Package console hosts commands on a line-oriented operator console.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SenderName is the name every console invocation is sent as.
const SenderName = "CONSOLE"

// Console is a cmd.Host reading command lines from in and writing replies to out.
type Console struct {
	in  io.Reader
	out io.Writer
	log zerolog.Logger

	reply  *color.Color
	notice *color.Color

	mu    sync.RWMutex
	names map[string]cmd.Dispatcher
	outMu sync.Mutex
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the console's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Console) { c.log = l }
}

// WithoutColor writes plain text.
func WithoutColor() Option {
	return func(c *Console) {
		c.reply.DisableColor()
		c.notice.DisableColor()
	}
}

func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:     in,
		out:    out,
		log:    log.Logger,
		reply:  color.New(color.FgCyan),
		notice: color.New(color.FgYellow),
		names:  make(map[string]cmd.Dispatcher),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind makes b.Name typeable on the console. Binding a name again replaces
// its dispatcher.
func (c *Console) Bind(b cmd.Binding) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[b.Name] = b.Dispatcher
	c.log.Debug().Str("name", b.Name).Msg("console command bound")
	return nil
}

// Names returns the bound names, sorted.
func (c *Console) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.names))
	for n := range c.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Sender returns the console operator.
func (c *Console) Sender() cmd.Sender { return sender{c} }

// Execute runs one command line. It reports whether a bound name was found
// and, if so, the handler's result.
func (c *Console) Execute(line string) (found, ok bool) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return false, false
	}
	name, args := fields[0], fields[1:]

	c.mu.RLock()
	d, found := c.names[name]
	c.mu.RUnlock()
	if !found {
		c.print(c.notice, fmt.Sprintf("Unknown command %q. Type \"help\" for help.", name))
		return false, false
	}
	return true, d.Dispatch(c.Sender(), name, args)
}

// Run reads lines until exit, quit, EOF or ctx is done. When ctx ends
// first, the reading goroutine stays blocked in Read until in yields a line
// or EOF; callers that need it gone must close in.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("read console: %w", err)
			}
			return nil
		case line := <-lines:
			switch strings.TrimSpace(line) {
			case "":
				continue
			case "exit", "quit":
				return nil
			}
			c.Execute(line)
		}
	}
}

func (c *Console) print(col *color.Color, msg string) error {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, err := col.Fprintln(c.out, msg)
	return err
}

type sender struct{ c *Console }

func (s sender) Name() string { return SenderName }

func (s sender) SendMessage(msg string) error { return s.c.print(s.c.reply, msg) }
