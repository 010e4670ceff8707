package discord

import (
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cmdhost/pkg/cmd"
	"github.com/keshon/cmdhost/pkg/retrylimit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu        sync.Mutex
	sent      []string
	created   []*discordgo.ApplicationCommand
	responses []*discordgo.InteractionResponse
	followups []string
	createErr []error
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, channelID+": "+content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ApplicationCommandCreate(_, _ string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, c)
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data.Content)
	return &discordgo.Message{Content: data.Content}, nil
}

type echo struct {
	*cmd.Descriptor
	silent bool
}

func (e *echo) Invoke(s cmd.Sender, args []string) bool {
	if e.silent {
		return true
	}
	for _, a := range args {
		_ = s.SendMessage(s.Name() + " " + a)
	}
	return len(args) > 0
}

func setup(t *testing.T, syncSlash bool) (*Bot, *fakeSession, *cmd.Registry) {
	t.Helper()
	fs := &fakeSession{}
	b := New(fs, Options{
		Prefix:    "!",
		SyncSlash: syncSlash,
		Logger:    zerolog.Nop(),
		Retry:     retrylimit.Config{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
	})
	reg := cmd.New(b, cmd.WithLogger(zerolog.Nop()))
	reg.Activate()
	return b, fs, reg
}

func register(t *testing.T, reg *cmd.Registry, silent bool, names ...string) *echo {
	t.Helper()
	e := &echo{Descriptor: cmd.NewDescriptor(reg, cmd.Spec{
		Names:       names,
		Description: "Repeats its arguments",
		MaxArgs:     cmd.Unbounded,
	}), silent: silent}
	require.NoError(t, e.Register(e))
	return e
}

func message(content string, author *discordgo.User) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "chan",
		Content:   content,
		Author:    author,
	}}
}

func interaction(name, args string) *discordgo.InteractionCreate {
	data := discordgo.ApplicationCommandInteractionData{Name: name}
	if args != "" {
		data.Options = []*discordgo.ApplicationCommandInteractionDataOption{{
			Name:  argsOption,
			Type:  discordgo.ApplicationCommandOptionString,
			Value: args,
		}}
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:   discordgo.InteractionApplicationCommand,
		Data:   data,
		Member: &discordgo.Member{User: &discordgo.User{Username: "alex"}},
	}}
}

func TestPrefixedMessage(t *testing.T) {
	b, fs, reg := setup(t, false)
	register(t, reg, false, "echo", "e")

	b.onMessageCreate(nil, message("!e  one two", &discordgo.User{Username: "alex"}))
	b.onMessageCreate(nil, message("echo ignored", &discordgo.User{Username: "alex"}))
	b.onMessageCreate(nil, message("!echo bot", &discordgo.User{Username: "other", Bot: true}))
	b.onMessageCreate(nil, message("!unknown x", &discordgo.User{Username: "alex"}))
	b.onMessageCreate(nil, message("!", &discordgo.User{Username: "alex"}))

	assert.Equal(t, []string{"chan: alex one", "chan: alex two"}, fs.sent)
}

func TestPublish_OnReadyAndBind(t *testing.T) {
	b, fs, reg := setup(t, true)
	e := register(t, reg, false, "echo", "?")
	assert.Empty(t, fs.created)

	b.onReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "app", Username: "cmdhost"}})
	require.Len(t, fs.created, 1)
	def := fs.created[0]
	assert.Equal(t, "echo", def.Name)
	assert.Equal(t, "Repeats its arguments", def.Description)
	require.Len(t, def.Options, 1)
	assert.Equal(t, argsOption, def.Options[0].Name)
	assert.False(t, def.Options[0].Required)

	// unchanged definitions are not published again
	require.NoError(t, reg.Register(e))
	assert.Len(t, fs.created, 1)

	register(t, reg, false, "shout")
	assert.Len(t, fs.created, 2)
	assert.ElementsMatch(t, []string{"echo", "?", "shout"}, b.Names())
}

func TestPublish_NoArgsOption(t *testing.T) {
	d := cmd.NewDescriptor(cmd.New(cmd.HostFunc(func(cmd.Binding) error { return nil })), cmd.Spec{
		Names:       []string{"ping"},
		Description: strings.Repeat("x", 150),
	})
	def := slashDefinition("ping", d)
	assert.Empty(t, def.Options)
	assert.Len(t, def.Description, maxDescriptionLen)
}

func TestPublish_TruncatesByCharacters(t *testing.T) {
	reg := cmd.New(cmd.HostFunc(func(cmd.Binding) error { return nil }))

	short := cmd.NewDescriptor(reg, cmd.Spec{Names: []string{"e"}, Description: strings.Repeat("é", 60)})
	assert.Equal(t, strings.Repeat("é", 60), slashDefinition("e", short).Description)

	long := cmd.NewDescriptor(reg, cmd.Spec{
		Names:       []string{"e"},
		Description: strings.Repeat("é", 120),
		Usage:       strings.Repeat("ü", 120),
		MaxArgs:     1,
	})
	def := slashDefinition("e", long)
	assert.True(t, utf8.ValidString(def.Description))
	assert.Equal(t, maxDescriptionLen, utf8.RuneCountInString(def.Description))
	assert.Equal(t, strings.Repeat("é", 97)+"...", def.Description)
	require.Len(t, def.Options, 1)
	assert.True(t, utf8.ValidString(def.Options[0].Description))
	assert.Equal(t, maxDescriptionLen, utf8.RuneCountInString(def.Options[0].Description))
}

func TestPublish_Retries(t *testing.T) {
	b, fs, reg := setup(t, true)
	b.onReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "app"}})

	fs.createErr = []error{&discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusBadGateway}}}
	register(t, reg, false, "flaky")
	assert.Len(t, fs.created, 2)

	fs.createErr = []error{&discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusBadRequest}}}
	e := &echo{Descriptor: cmd.NewDescriptor(reg, cmd.Spec{Names: []string{"broken"}})}
	err := reg.Register(e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `publish slash command "broken"`)
	assert.Len(t, fs.created, 3)
}

func TestInteraction_RespondThenFollowUp(t *testing.T) {
	b, fs, reg := setup(t, false)
	register(t, reg, false, "echo")

	b.onInteractionCreate(nil, interaction("echo", "a  b"))

	require.Len(t, fs.responses, 1)
	assert.Equal(t, "alex a", fs.responses[0].Data.Content)
	assert.Equal(t, []string{"alex b"}, fs.followups)
}

func TestInteraction_AcknowledgesSilentHandler(t *testing.T) {
	b, fs, reg := setup(t, false)
	register(t, reg, true, "quiet")
	register(t, reg, false, "echo")

	b.onInteractionCreate(nil, interaction("quiet", ""))
	b.onInteractionCreate(nil, interaction("echo", ""))
	b.onInteractionCreate(nil, interaction("missing", ""))

	require.Len(t, fs.responses, 2)
	assert.Equal(t, "Done.", fs.responses[0].Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, fs.responses[0].Data.Flags)
	assert.Equal(t, "Command failed.", fs.responses[1].Data.Content)
}
