package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// channelSender replies in the channel a prefixed command was typed in.
type channelSender struct {
	dg        Session
	channelID string
	name      string
}

func (s *channelSender) Name() string { return s.name }

func (s *channelSender) SendMessage(msg string) error {
	_, err := s.dg.ChannelMessageSend(s.channelID, msg)
	return err
}

// interactionSender answers a slash command. The first message is the
// interaction response, later ones are follow-ups.
type interactionSender struct {
	dg          Session
	interaction *discordgo.Interaction
	name        string

	mu        sync.Mutex
	responded bool
}

func (s *interactionSender) Name() string { return s.name }

func (s *interactionSender) SendMessage(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.responded {
		err := s.dg.InteractionRespond(s.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: msg},
		})
		if err == nil {
			s.responded = true
		}
		return err
	}
	_, err := s.dg.FollowupMessageCreate(s.interaction, true, &discordgo.WebhookParams{Content: msg})
	return err
}

// acknowledge answers an interaction whose handler sent nothing, so Discord
// does not show it as failed.
func (s *interactionSender) acknowledge(ok bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.responded {
		return nil
	}

	content := "Done."
	if !ok {
		content = "Command failed."
	}
	err := s.dg.InteractionRespond(s.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err == nil {
		s.responded = true
	}
	return err
}
