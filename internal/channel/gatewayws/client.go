// Package gatewayws implements a messaging channel backed by a WebSocket
// chat gateway. The bot connects out to the gateway, receives message
// events as JSON frames and sends replies as request frames.
package gatewayws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dfuchss/deltabot/internal/config"
	"github.com/dfuchss/deltabot/internal/domain"
	"github.com/dfuchss/deltabot/internal/logging"
)

// Frame types for the gateway protocol.
const (
	FrameTypeRequest = "req"
	FrameTypeEvent   = "event"
)

// EventMessage is the gateway event carrying an inbound chat message.
const EventMessage = "message"

// Frame is the envelope for all gateway messages.
type Frame struct {
	Type string `json:"type"`

	// Request fields
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// Event fields
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Seq     int64           `json:"seq,omitempty"`
}

// messageEvent is the payload of an EventMessage frame.
type messageEvent struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	FromName  string `json:"fromName,omitempty"`
	ChatID    string `json:"chatId"`
	ChatType  string `json:"chatType"` // "dm" | "group"
	Body      string `json:"body"`
	Mentioned bool   `json:"mentioned,omitempty"`
}

// sendParams is the payload of an outbound "send" request.
type sendParams struct {
	ChatID    string `json:"chatId"`
	Body      string `json:"body"`
	ReplyToID string `json:"replyToId,omitempty"`
}

const (
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// Channel implements domain.Channel for a WebSocket gateway.
type Channel struct {
	cfg  config.GatewayConfig
	log  *logging.Logger
	dial func(ctx context.Context, url string, hdr http.Header) (*websocket.Conn, error)

	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	handler func(msg domain.InboundMessage)
	running bool
	lastErr string
}

// New creates a gateway channel from configuration.
func New(cfg config.GatewayConfig, log *logging.Logger) *Channel {
	return &Channel{
		cfg: cfg,
		log: log.Sub("gateway"),
		dial: func(ctx context.Context, url string, hdr http.Header) (*websocket.Conn, error) {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, hdr)
			return conn, err
		},
	}
}

func (c *Channel) ID() string { return "gateway" }

func (c *Channel) OnMessage(handler func(msg domain.InboundMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Status returns the current runtime status.
func (c *Channel) Status() domain.ChannelStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.ChannelStatus{
		ChannelID: "gateway",
		Connected: c.conn != nil,
		Running:   c.running,
		LastError: c.lastErr,
	}
}

// Start connects to the gateway and reads frames until the context is
// cancelled. Connection losses trigger reconnects with backoff.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	c.running = true
	c.lastErr = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	backoff := reconnectMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.runConn(ctx)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}

		c.mu.Lock()
		c.lastErr = err.Error()
		c.mu.Unlock()

		c.log.Warn().Err(err).Dur("retryIn", backoff).Msg("gateway connection lost")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

// runConn performs a single connect-and-read cycle.
func (c *Channel) runConn(ctx context.Context) error {
	hdr := http.Header{}
	if c.cfg.Token != "" {
		hdr.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	conn, err := c.dial(ctx, c.cfg.URL, hdr)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.lastErr = ""
	c.mu.Unlock()

	c.log.Info().Str("url", c.cfg.URL).Msg("connected to gateway")

	// Close the socket when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("gateway read: %w", err)
		}

		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed gateway frame")
			continue
		}
		c.handleFrame(f)
	}
}

func (c *Channel) handleFrame(f Frame) {
	if f.Type != FrameTypeEvent || f.Event != EventMessage {
		return
	}

	var ev messageEvent
	if err := json.Unmarshal(f.Payload, &ev); err != nil {
		c.log.Warn().Err(err).Msg("dropping malformed message event")
		return
	}

	chatType := domain.ChatTypeGroup
	if ev.ChatType == string(domain.ChatTypeDM) {
		chatType = domain.ChatTypeDM
	}

	id := ev.ID
	if id == "" {
		id = uuid.New().String()
	}

	msg := domain.InboundMessage{
		ID:        id,
		ChannelID: "gateway",
		From:      ev.From,
		FromName:  ev.FromName,
		ChatID:    ev.ChatID,
		ChatType:  chatType,
		Body:      ev.Body,
		Mentioned: ev.Mentioned || chatType == domain.ChatTypeDM,
		Timestamp: time.Now(),
	}

	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()

	if handler != nil {
		handler(msg)
	}
}

// Stop disconnects from the gateway.
func (c *Channel) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.log.Info().Msg("disconnecting from gateway")
		c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutting down"),
			time.Now().Add(time.Second),
		)
		c.conn.Close()
		c.conn = nil
	}
	c.running = false
	return nil
}

// Send delivers a message through the gateway.
func (c *Channel) Send(ctx context.Context, msg domain.OutboundMessage) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("gateway: not connected")
	}
	if msg.To == "" {
		return fmt.Errorf("gateway: no target specified")
	}

	params, err := json.Marshal(sendParams{
		ChatID:    msg.To,
		Body:      msg.Body,
		ReplyToID: msg.ReplyToID,
	})
	if err != nil {
		return fmt.Errorf("gateway: encoding send params: %w", err)
	}

	f := Frame{
		Type:   FrameTypeRequest,
		ID:     uuid.New().String(),
		Method: "send",
		Params: params,
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(f); err != nil {
		return fmt.Errorf("gateway write: %w", err)
	}

	c.log.Debug().Str("to", msg.To).Msg("sent gateway message")
	return nil
}
