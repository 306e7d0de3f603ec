package domain

import "context"

// ChannelStatus reports the runtime state of a channel.
type ChannelStatus struct {
	ChannelID string `json:"channelId"`
	Connected bool   `json:"connected"`
	Running   bool   `json:"running"`
	LastError string `json:"lastError,omitempty"`
}

// Channel is the interface all messaging transport adapters must satisfy.
type Channel interface {
	// ID returns the channel identifier (e.g., "irc", "gateway").
	ID() string

	// Start connects the channel and begins listening for messages.
	Start(ctx context.Context) error

	// Stop gracefully disconnects the channel.
	Stop(ctx context.Context) error

	// Send delivers an outbound message through this channel.
	Send(ctx context.Context, msg OutboundMessage) error

	// OnMessage registers a handler for inbound messages. Implementations
	// must deliver one user's messages in order.
	OnMessage(handler func(msg InboundMessage))
}

// Sender is the outbound collaborator dialogs use to reply. It hides all
// transport details; implementations resolve the originating channel and
// reply target from the inbound message.
type Sender interface {
	// Send delivers text back to the author of the given message,
	// optionally mentioning them in group chats. Fire-and-forget from the
	// dialog's perspective; delivery failures are logged, not returned to
	// the conversation.
	Send(ctx context.Context, to InboundMessage, text string, mention bool) error
}
