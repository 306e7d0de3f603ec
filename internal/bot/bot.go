package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/dfuchss/deltabot/internal/channel"
	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
	"github.com/dfuchss/deltabot/internal/session"
)

// queueSize bounds the per-user inbox. Messages beyond it are dropped.
const queueSize = 64

// AuditLog records handled messages when the keep-messages toggle is on.
type AuditLog interface {
	Record(msg domain.InboundMessage)
}

// Bot dispatches inbound messages to per-user dialog sessions. Each user
// gets a serialized queue so their messages are handled in arrival order;
// different users are handled concurrently.
type Bot struct {
	channels *channel.Registry
	sessions *session.Manager
	sender   domain.Sender
	settings *Settings
	audit    AuditLog
	system   *commandTable
	log      *logging.Logger

	mu     sync.Mutex
	queues map[string]chan queuedMessage
	wg     sync.WaitGroup
}

type queuedMessage struct {
	ctx context.Context
	msg domain.InboundMessage
}

// New creates a bot over the given collaborators. audit may be nil when
// message keeping is disabled for good.
func New(
	channels *channel.Registry,
	sessions *session.Manager,
	sender domain.Sender,
	settings *Settings,
	audit AuditLog,
	log *logging.Logger,
) *Bot {
	b := &Bot{
		channels: channels,
		sessions: sessions,
		sender:   sender,
		settings: settings,
		audit:    audit,
		log:      log.Sub("bot"),
		queues:   make(map[string]chan queuedMessage),
	}
	b.system = newCommandTable(settings, sessions, channels, b.log)
	return b
}

// Wire registers the bot as the message handler on all channels. Handlers
// enqueue synchronously so per-user ordering is preserved.
func (b *Bot) Wire(ctx context.Context) {
	for _, id := range b.channels.List() {
		ch, ok := b.channels.Get(id)
		if !ok {
			continue
		}
		ch.OnMessage(func(msg domain.InboundMessage) {
			b.Enqueue(ctx, msg)
		})
		b.log.Debug().Str("channel", id).Msg("wired message handler")
	}
}

// Enqueue hands a message to the author's serialized queue, starting the
// queue worker on first use.
func (b *Bot) Enqueue(ctx context.Context, msg domain.InboundMessage) {
	b.mu.Lock()
	q, ok := b.queues[msg.From]
	if !ok {
		q = make(chan queuedMessage, queueSize)
		b.queues[msg.From] = q
		b.wg.Add(1)
		go b.drain(q)
	}
	b.mu.Unlock()

	select {
	case q <- queuedMessage{ctx: ctx, msg: msg}:
	default:
		b.log.Warn().
			Str("from", msg.From).
			Str("channel", msg.ChannelID).
			Msg("user queue full, dropping message")
	}
}

// Close stops all queue workers after their backlog is handled.
func (b *Bot) Close() {
	b.mu.Lock()
	for _, q := range b.queues {
		close(q)
	}
	b.queues = make(map[string]chan queuedMessage)
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Bot) drain(q chan queuedMessage) {
	defer b.wg.Done()
	for item := range q {
		b.HandleInbound(item.ctx, item.msg)
	}
}

// HandleInbound processes a single inbound message. Exposed for tests;
// production traffic goes through Enqueue.
func (b *Bot) HandleInbound(ctx context.Context, msg domain.InboundMessage) {
	b.log.Debug().
		Str("channel", msg.ChannelID).
		Str("from", msg.From).
		Str("chatId", msg.ChatID).
		Str("chatType", string(msg.ChatType)).
		Msg("inbound message")

	if b.audit != nil && b.settings.KeepMessages() {
		b.audit.Record(msg)
	}

	// System commands only need to be addressed to the bot; chat
	// registration does not apply, otherwise \listen could never
	// register a new chat.
	if body := strings.TrimSpace(msg.Body); strings.HasPrefix(body, commandPrefix) {
		if msg.IsDirect() || msg.Mentioned {
			b.system.Run(ctx, msg, b.sender)
		}
		return
	}

	if !b.shouldHandle(msg) {
		return
	}

	sess := b.sessions.GetOrCreate(msg.From)
	sess.Handle(ctx, msg)
}

// shouldHandle implements the dispatch policy: DMs always, group messages
// when the bot is mentioned (or respond-all is on) in a chat it listens
// in, and any message from a user whose dialog is awaiting input.
func (b *Bot) shouldHandle(msg domain.InboundMessage) bool {
	if msg.IsDirect() {
		return true
	}
	if b.sessions.HasActiveDialog(msg.From) {
		return true
	}
	if !msg.Mentioned && !b.settings.RespondAll() {
		return false
	}
	return b.settings.ListensIn(msg.ChannelID, msg.ChatID)
}
