// Package discord hosts commands on a Discord bot: prefixed chat messages and
// guild slash commands both dispatch into the command registry.
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/keshon/cmdhost/pkg/retrylimit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const publishWorkers = 4

// Session is the part of *discordgo.Session the bot talks through.
type Session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ApplicationCommandCreate(appID, guildID string, c *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Options configure a Bot.
type Options struct {
	Prefix    string // chat prefix, e.g. "!"
	GuildID   string // slash commands are published here; empty means global
	SyncSlash bool
	Logger    zerolog.Logger
	Retry     retrylimit.Config
}

// Bot is a cmd.Host backed by a Discord session.
type Bot struct {
	dg   Session
	opts Options
	log  zerolog.Logger

	limiter *retrylimit.AdaptiveLimiter

	mu       sync.RWMutex
	ctx      context.Context
	appID    string
	ready    bool
	bindings map[string]cmd.Binding
	hashes   map[string]string
}

// New returns a bot talking through dg.
func New(dg Session, opts Options) *Bot {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retrylimit.DefaultConfig()
	}
	return &Bot{
		dg:       dg,
		opts:     opts,
		log:      opts.Logger,
		limiter:  retrylimit.NewAdaptiveLimiter(rate.Limit(5), rate.Limit(0.5), rate.Limit(40), rate.Limit(1), 0.5),
		ctx:      context.Background(),
		bindings: make(map[string]cmd.Binding),
		hashes:   make(map[string]string),
	}
}

// Connect creates a session for a bot token.
func Connect(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	return dg, nil
}

// Run attaches the bot's handlers to dg, opens it and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context, dg *discordgo.Session) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing Discord session")
	return nil
}

// Bind records the binding and, once the session is ready, publishes the
// name as a slash command.
func (b *Bot) Bind(bd cmd.Binding) error {
	b.mu.Lock()
	b.bindings[bd.Name] = bd
	ready := b.ready && b.opts.SyncSlash
	ctx := b.ctx
	b.mu.Unlock()

	if !ready {
		return nil
	}
	return b.publish(ctx, bd)
}

// Names returns the bound names.
func (b *Bot) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.bindings))
	for n := range b.bindings {
		names = append(names, n)
	}
	return names
}

func (b *Bot) binding(name string) (cmd.Binding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bd, ok := b.bindings[name]
	return bd, ok
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.mu.Lock()
	if r.User != nil {
		b.appID = r.User.ID
	}
	b.ready = true
	ctx := b.ctx
	pending := make([]cmd.Binding, 0, len(b.bindings))
	for _, bd := range b.bindings {
		pending = append(pending, bd)
	}
	b.mu.Unlock()

	if r.User != nil {
		b.log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Discord bot is running")
	}

	if !b.opts.SyncSlash {
		b.log.Info().Msg("slash command sync disabled")
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(publishWorkers)
	for _, bd := range pending {
		bd := bd
		g.Go(func() error {
			if err := b.publish(gctx, bd); err != nil {
				b.log.Error().Err(err).Str("name", bd.Name).Msg("failed to publish slash command")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.opts.Prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(m.Content, b.opts.Prefix))
	if len(fields) == 0 {
		return
	}
	name, args := fields[0], fields[1:]

	bd, ok := b.binding(name)
	if !ok {
		b.log.Debug().Str("name", name).Str("author", m.Author.Username).Msg("unknown prefixed command")
		return
	}
	bd.Dispatcher.Dispatch(&channelSender{dg: b.dg, channelID: m.ChannelID, name: m.Author.Username}, name, args)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	bd, ok := b.binding(data.Name)
	if !ok {
		b.log.Warn().Str("name", data.Name).Msg("unknown slash command")
		return
	}

	var args []string
	for _, opt := range data.Options {
		if opt.Name == argsOption && opt.Type == discordgo.ApplicationCommandOptionString {
			args = strings.Fields(opt.StringValue())
		}
	}

	s := &interactionSender{dg: b.dg, interaction: i.Interaction, name: interactionUser(i)}
	ok = bd.Dispatcher.Dispatch(s, data.Name, args)
	if err := s.acknowledge(ok); err != nil {
		b.log.Warn().Err(err).Str("name", data.Name).Msg("failed to acknowledge interaction")
	}
}

func interactionUser(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.Username
	case i.User != nil:
		return i.User.Username
	}
	return "unknown"
}
