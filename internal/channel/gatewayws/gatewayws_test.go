package gatewayws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfuchss/deltabot/internal/config"
	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

// fakeGateway is a minimal in-process gateway server for tests.
type fakeGateway struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conn     *websocket.Conn
	received []Frame
	auth     string
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.auth = r.Header.Get("Authorization")
		g.mu.Unlock()

		conn, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		g.mu.Lock()
		g.conn = conn
		g.mu.Unlock()

		for {
			var f Frame
			if err := conn.ReadJSON(&f); err != nil {
				return
			}
			g.mu.Lock()
			g.received = append(g.received, f)
			g.mu.Unlock()
		}
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) url() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http")
}

func (g *fakeGateway) emit(t *testing.T, ev messageEvent) {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	g.mu.Lock()
	conn := g.conn
	g.mu.Unlock()
	require.NotNil(t, conn)
	require.NoError(t, conn.WriteJSON(Frame{
		Type:    FrameTypeEvent,
		Event:   EventMessage,
		Payload: payload,
	}))
}

func startChannel(t *testing.T, g *fakeGateway, token string) *Channel {
	t.Helper()
	ch := New(config.GatewayConfig{URL: g.url(), Token: token}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go ch.Start(ctx)

	require.Eventually(t, func() bool {
		return ch.Status().Connected
	}, 2*time.Second, 10*time.Millisecond)
	return ch
}

func TestNew(t *testing.T) {
	ch := New(config.GatewayConfig{URL: "wss://gateway.test/ws"}, testLogger())
	assert.Equal(t, "gateway", ch.ID())
	assert.False(t, ch.Status().Connected)
}

func TestStart_SendsBearerToken(t *testing.T) {
	g := newFakeGateway(t)
	startChannel(t, g, "secret-token")

	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Equal(t, "Bearer secret-token", g.auth)
}

func TestReceiveMessageEvent(t *testing.T) {
	g := newFakeGateway(t)
	ch := startChannel(t, g, "")

	var mu sync.Mutex
	var got []domain.InboundMessage
	ch.OnMessage(func(msg domain.InboundMessage) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
	})

	g.emit(t, messageEvent{
		ID:       "m1",
		From:     "alice",
		FromName: "Alice",
		ChatID:   "group-7",
		ChatType: "group",
		Body:     "hello bot",
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "gateway", got[0].ChannelID)
	assert.Equal(t, "alice", got[0].From)
	assert.Equal(t, domain.ChatTypeGroup, got[0].ChatType)
	assert.False(t, got[0].Mentioned)
}

func TestReceiveDirectMessageIsMentioned(t *testing.T) {
	g := newFakeGateway(t)
	ch := startChannel(t, g, "")

	var mu sync.Mutex
	var got []domain.InboundMessage
	ch.OnMessage(func(msg domain.InboundMessage) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
	})

	g.emit(t, messageEvent{From: "alice", ChatID: "alice", ChatType: "dm", Body: "hi"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, domain.ChatTypeDM, got[0].ChatType)
	assert.True(t, got[0].Mentioned, "DMs always address the bot")
	assert.NotEmpty(t, got[0].ID, "missing event ids are filled in")
}

func TestSend(t *testing.T) {
	g := newFakeGateway(t)
	ch := startChannel(t, g, "")

	err := ch.Send(context.Background(), domain.OutboundMessage{
		To:   "group-7",
		Body: "It is 12:00.",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		g.mu.Lock()
		defer g.mu.Unlock()
		return len(g.received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.received[0]
	assert.Equal(t, FrameTypeRequest, f.Type)
	assert.Equal(t, "send", f.Method)
	assert.NotEmpty(t, f.ID)

	var params sendParams
	require.NoError(t, json.Unmarshal(f.Params, &params))
	assert.Equal(t, "group-7", params.ChatID)
	assert.Equal(t, "It is 12:00.", params.Body)
}

func TestSend_NotConnected(t *testing.T) {
	ch := New(config.GatewayConfig{URL: "wss://gateway.test/ws"}, testLogger())
	err := ch.Send(context.Background(), domain.OutboundMessage{To: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestStop(t *testing.T) {
	g := newFakeGateway(t)
	ch := startChannel(t, g, "")

	require.NoError(t, ch.Stop(context.Background()))
	assert.False(t, ch.Status().Connected)
}
