package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/keshon/cmdhost/pkg/retrylimit"
)

const (
	argsOption        = "args"
	maxDescriptionLen = 100
)

var slashName = regexp.MustCompile(`^[-_\p{Ll}\p{N}]{1,32}$`)

// slashDefinition describes name as a chat command with one optional free
// text option carrying the arguments.
func slashDefinition(name string, d *cmd.Descriptor) *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Name:        name,
		Description: truncate(d.Description(), maxDescriptionLen),
		Type:        discordgo.ChatApplicationCommand,
	}
	if d.MaxArgs() != 0 {
		def.Options = []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        argsOption,
			Description: truncate(d.Usage(), maxDescriptionLen),
			Required:    d.MinArgs() > 0,
		}}
	}
	return def
}

// truncate shortens s to at most n characters, counted in runes as Discord
// counts them, ending with "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// publish creates the slash command for a binding unless an identical
// definition was already published by this process.
func (b *Bot) publish(ctx context.Context, bd cmd.Binding) error {
	if !slashName.MatchString(bd.Name) {
		b.log.Debug().Str("name", bd.Name).Msg("name is not a valid slash command, prefix only")
		return nil
	}

	def := slashDefinition(bd.Name, bd.Command.Describe())
	h := hashCommand(def)

	b.mu.RLock()
	same := b.hashes[bd.Name] == h
	appID := b.appID
	b.mu.RUnlock()
	if same {
		return nil
	}

	err := retrylimit.Do(ctx, b.limiter, b.opts.Retry, func() error {
		_, err := b.dg.ApplicationCommandCreate(appID, b.opts.GuildID, def)
		return classify(err)
	})
	if err != nil {
		return fmt.Errorf("publish slash command %q: %w", bd.Name, err)
	}

	b.mu.Lock()
	b.hashes[bd.Name] = h
	b.mu.Unlock()
	b.log.Info().Str("name", bd.Name).Str("guild", b.opts.GuildID).Msg("slash command published")
	return nil
}

// statusError exposes a Discord REST failure's status code to retrylimit.
type statusError struct {
	*discordgo.RESTError
}

func (e statusError) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

func (e statusError) Unwrap() error { return e.RESTError }

// classify turns client errors other than 429 into permanent failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	se := statusError{rest}
	code := se.StatusCode()
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return retrylimit.Permanent(se)
	}
	return se
}
