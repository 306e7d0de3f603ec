package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfuchss/deltabot/internal/channel"
	"github.com/dfuchss/deltabot/internal/config"
	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
	"github.com/dfuchss/deltabot/internal/nlu"
	"github.com/dfuchss/deltabot/internal/session"
	"github.com/dfuchss/deltabot/internal/store"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

// mockChannel records outbound messages.
type mockChannel struct {
	id string

	mu      sync.Mutex
	sent    []domain.OutboundMessage
	handler func(domain.InboundMessage)
}

func (m *mockChannel) ID() string                  { return m.id }
func (m *mockChannel) Start(context.Context) error { return nil }
func (m *mockChannel) Stop(context.Context) error  { return nil }
func (m *mockChannel) OnMessage(h func(domain.InboundMessage)) {
	m.handler = h
}
func (m *mockChannel) Send(_ context.Context, msg domain.OutboundMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}
func (m *mockChannel) messages() []domain.OutboundMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OutboundMessage(nil), m.sent...)
}

// echoDialog replies with the message body and records invocation order.
type echoDialog struct {
	mu     sync.Mutex
	bodies []string
}

func (d *echoDialog) ID() string { return "not-understanding" }

func (d *echoDialog) Proceed(_ context.Context, msg domain.InboundMessage, _ []domain.IntentResult, _ []domain.EntityResult) domain.DialogResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bodies = append(d.bodies, msg.Body)
	return domain.DialogDone
}

func (d *echoDialog) seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.bodies...)
}

type fixture struct {
	bot    *Bot
	ch     *mockChannel
	dialog *echoDialog
	audit  *store.MessageLog
}

func newFixture(t *testing.T, cfg *config.Config) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{
			Bot: config.BotConfig{Admins: []string{"admin"}},
			NLU: config.NLUConfig{Threshold: 0.5},
		}
	}

	db, err := store.Open(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := channel.NewRegistry(testLogger())
	ch := &mockChannel{id: "irc"}
	reg.Register(ch)

	settings := NewSettings(cfg, db)
	sender := NewChannelSender(reg, testLogger())
	dlg := &echoDialog{}

	sessions := session.NewManager(func() *session.Session {
		return session.New(
			[]domain.Dialog{dlg},
			map[string]string{"none": "not-understanding"},
			&nlu.Mock{},
			sender,
			settings,
			"",
			testLogger(),
		)
	}, testLogger())

	audit := store.NewMessageLog(db)
	b := New(reg, sessions, sender, settings, audit, testLogger())
	t.Cleanup(b.Close)

	return &fixture{bot: b, ch: ch, dialog: dlg, audit: audit}
}

func dm(from, body string) domain.InboundMessage {
	return domain.InboundMessage{
		ID:        "m-" + from,
		ChannelID: "irc",
		From:      from,
		FromName:  from,
		ChatID:    from,
		ChatType:  domain.ChatTypeDM,
		Body:      body,
		Mentioned: true,
		Timestamp: time.Now(),
	}
}

func groupMsg(from, body string, mentioned bool) domain.InboundMessage {
	return domain.InboundMessage{
		ID:        "g-" + from,
		ChannelID: "irc",
		From:      from,
		FromName:  from,
		ChatID:    "#delta",
		ChatType:  domain.ChatTypeGroup,
		Body:      body,
		Mentioned: mentioned,
		Timestamp: time.Now(),
	}
}

// --- Dispatch policy ---

func TestDMAlwaysHandled(t *testing.T) {
	f := newFixture(t, nil)

	f.bot.HandleInbound(context.Background(), dm("alice", "hello"))

	assert.Equal(t, []string{"hello"}, f.dialog.seen())
}

func TestGroupMessageIgnoredWithoutMention(t *testing.T) {
	f := newFixture(t, nil)

	f.bot.HandleInbound(context.Background(), groupMsg("alice", "hello", false))

	assert.Empty(t, f.dialog.seen())
}

func TestGroupMentionInUnregisteredChatIgnored(t *testing.T) {
	f := newFixture(t, nil)

	f.bot.HandleInbound(context.Background(), groupMsg("alice", "bot: hello", true))

	assert.Empty(t, f.dialog.seen())
}

func TestGroupMentionInRegisteredChatHandled(t *testing.T) {
	cfg := &config.Config{
		Bot: config.BotConfig{Channels: []string{"#delta"}},
		NLU: config.NLUConfig{Threshold: 0.5},
	}
	f := newFixture(t, cfg)

	f.bot.HandleInbound(context.Background(), groupMsg("alice", "bot: hello", true))

	assert.Equal(t, []string{"bot: hello"}, f.dialog.seen())
}

func TestRespondAllHandlesUnmentionedGroupMessages(t *testing.T) {
	cfg := &config.Config{
		Bot: config.BotConfig{Channels: []string{"#delta"}, RespondAll: true},
		NLU: config.NLUConfig{Threshold: 0.5},
	}
	f := newFixture(t, cfg)

	f.bot.HandleInbound(context.Background(), groupMsg("alice", "hello", false))

	assert.Equal(t, []string{"hello"}, f.dialog.seen())
}

// waitOnceDialog waits on the first turn, then delegates.
type waitOnceDialog struct {
	inner *echoDialog
	done  bool
}

func (d *waitOnceDialog) ID() string { return "not-understanding" }

func (d *waitOnceDialog) Proceed(ctx context.Context, msg domain.InboundMessage, intents []domain.IntentResult, entities []domain.EntityResult) domain.DialogResult {
	if !d.done {
		d.done = true
		return domain.DialogWaitForInput
	}
	return d.inner.Proceed(ctx, msg, intents, entities)
}

func TestAwaitingUserHandledWithoutMention(t *testing.T) {
	// Alice starts a dialog in a DM, then continues unmentioned in a
	// group chat the bot does not otherwise listen in.
	f2 := newFixtureWithWaiting(t)
	f2.bot.HandleInbound(context.Background(), dm("alice", "start"))
	require.True(t, f2.bot.sessions.HasActiveDialog("alice"))

	f2.bot.HandleInbound(context.Background(), groupMsg("alice", "continue", false))
	assert.Equal(t, []string{"continue"}, f2.dialog.seen())
}

func newFixtureWithWaiting(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Bot: config.BotConfig{Admins: []string{"admin"}},
		NLU: config.NLUConfig{Threshold: 0.5},
	}

	db, err := store.Open(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := channel.NewRegistry(testLogger())
	ch := &mockChannel{id: "irc"}
	reg.Register(ch)

	settings := NewSettings(cfg, db)
	sender := NewChannelSender(reg, testLogger())
	dlg := &echoDialog{}

	sessions := session.NewManager(func() *session.Session {
		return session.New(
			[]domain.Dialog{&waitOnceDialog{inner: dlg}},
			map[string]string{"none": "not-understanding"},
			&nlu.Mock{},
			sender,
			settings,
			"",
			testLogger(),
		)
	}, testLogger())

	b := New(reg, sessions, sender, settings, nil, testLogger())
	t.Cleanup(b.Close)
	return &fixture{bot: b, ch: ch, dialog: dlg}
}

// --- Audit log ---

func TestAuditRecordsWhenKeepIsOn(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.bot.settings.SetKeepMessages(true))

	f.bot.HandleInbound(context.Background(), dm("alice", "hello"))
	// Ignored messages are still recorded.
	f.bot.HandleInbound(context.Background(), groupMsg("bob", "unrelated", false))

	n, err := f.audit.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestAuditSkippedWhenKeepIsOff(t *testing.T) {
	f := newFixture(t, nil)

	f.bot.HandleInbound(context.Background(), dm("alice", "hello"))

	n, err := f.audit.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

// --- Queueing ---

func TestEnqueuePreservesPerUserOrder(t *testing.T) {
	f := newFixture(t, nil)

	for i := 0; i < 10; i++ {
		f.bot.Enqueue(context.Background(), dm("alice", fmt.Sprintf("msg-%d", i)))
	}
	f.bot.Close()

	seen := f.dialog.seen()
	require.Len(t, seen, 10)
	for i, body := range seen {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), body)
	}
}

// --- Sender ---

func TestSenderMentionsAuthorInGroupChats(t *testing.T) {
	f := newFixture(t, nil)
	sender := NewChannelSender(f.bot.channels, testLogger())

	require.NoError(t, sender.Send(context.Background(), groupMsg("alice", "q", true), "It is noon.", true))
	require.NoError(t, sender.Send(context.Background(), dm("alice", "q"), "It is noon.", true))
	require.NoError(t, sender.Send(context.Background(), groupMsg("alice", "q", true), "trace", false))

	sent := f.ch.messages()
	require.Len(t, sent, 3)
	assert.Equal(t, "alice: It is noon.", sent[0].Body)
	assert.Equal(t, "#delta", sent[0].To)
	assert.Equal(t, "It is noon.", sent[1].Body, "DMs are not prefixed")
	assert.Equal(t, "alice", sent[1].To)
	assert.Equal(t, "trace", sent[2].Body, "mention=false is sent verbatim")
}

func TestSenderUnknownChannel(t *testing.T) {
	f := newFixture(t, nil)
	sender := NewChannelSender(f.bot.channels, testLogger())

	msg := dm("alice", "q")
	msg.ChannelID = "missing"
	err := sender.Send(context.Background(), msg, "hi", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel not found")
}
