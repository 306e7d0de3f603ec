// Package bot connects messaging channels to per-user dialog sessions and
// implements the system command surface.
package bot

import (
	"context"
	"fmt"

	"github.com/dfuchss/deltabot/internal/channel"
	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

// ChannelSender implements domain.Sender on top of the channel registry.
// Replies go back through the channel the inbound message arrived on.
type ChannelSender struct {
	channels *channel.Registry
	log      *logging.Logger
}

// NewChannelSender creates a sender backed by the given registry.
func NewChannelSender(channels *channel.Registry, log *logging.Logger) *ChannelSender {
	return &ChannelSender{
		channels: channels,
		log:      log.Sub("sender"),
	}
}

// Send delivers text back to the author of the inbound message. In group
// chats the author is prefixed when mention is set; DMs never need it.
func (s *ChannelSender) Send(ctx context.Context, to domain.InboundMessage, text string, mention bool) error {
	ch, ok := s.channels.Get(to.ChannelID)
	if !ok {
		return fmt.Errorf("channel not found: %s", to.ChannelID)
	}

	body := text
	if mention && !to.IsDirect() {
		name := to.FromName
		if name == "" {
			name = to.From
		}
		body = name + ": " + text
	}

	out := domain.OutboundMessage{
		ChannelID: to.ChannelID,
		To:        replyTarget(to),
		Body:      body,
		ReplyToID: to.ID,
	}

	if err := ch.Send(ctx, out); err != nil {
		s.log.Error().Err(err).
			Str("channel", to.ChannelID).
			Str("to", out.To).
			Msg("failed to send reply")
		return err
	}
	return nil
}

// replyTarget determines where to send the response.
func replyTarget(msg domain.InboundMessage) string {
	switch msg.ChatType {
	case domain.ChatTypeDM:
		return msg.From
	default:
		return msg.ChatID
	}
}
