// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     transport
// Description: WebSocket streaming client for voice sessions
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"voicedesk/pkg/logging"
)

// Handlers receives server events during a streaming session. All
// callbacks run on the read goroutine; nil callbacks are skipped.
type Handlers struct {
	// OnPartial delivers an interim transcript of the user's speech
	OnPartial func(text string)

	// OnFinal delivers the final transcript of the user's speech
	OnFinal func(text string)

	// OnAssistant delivers the assistant's reply text
	OnAssistant func(text string)

	// OnAudio delivers a base64 encoded audio clip of the reply
	OnAudio func(b64 string)

	// OnClosed fires once when the session ends, with a nil error on
	// clean shutdown
	OnClosed func(err error)
}

// serverMessage is the envelope for everything the server sends
type serverMessage struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	B64   string `json:"b64,omitempty"`
	Error string `json:"error,omitempty"`
}

// StreamClient is a websocket connection for one recording session.
// The microphone PCM goes up as binary frames, transcripts and
// assistant audio come back as JSON. A client is used for exactly one
// session: connect, stream, close. The next recording creates a new
// client.
type StreamClient struct {
	url      string
	log      *logging.Logger
	handlers Handlers

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	once   sync.Once
}

// StreamURL derives the websocket endpoint from the HTTP base URL,
// mapping http to ws and https to wss.
func StreamURL(baseURL, streamPath string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + streamPath
	return u.String(), nil
}

// NewStreamClient creates a client for the given websocket URL
func NewStreamClient(wsURL string, handlers Handlers, log *logging.Logger) *StreamClient {
	return &StreamClient{
		url:      wsURL,
		log:      log,
		handlers: handlers,
	}
}

// Connect dials the server and starts the read loop
func (c *StreamClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return fmt.Errorf("already connected")
	}
	if c.closed {
		return fmt.Errorf("client is closed")
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	c.conn = conn
	go c.readLoop(conn)

	c.log.Debug("stream connected", "url", c.url)
	return nil
}

// SendPCM sends one binary frame of little-endian 16-bit PCM. After
// Close the frame is silently dropped, so a capture goroutine racing
// the shutdown never fails the recording.
func (c *StreamClient) SendPCM(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.conn == nil {
		return nil
	}

	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("failed to send audio frame: %w", err)
	}
	return nil
}

// Close ends the session. Idempotent; OnClosed fires exactly once.
func (c *StreamClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	var err error
	if conn != nil {
		// Try a clean close handshake, then tear down.
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = conn.Close()
	}

	c.notifyClosed(nil)
	return err
}

// IsClosed reports whether the session has ended
func (c *StreamClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *StreamClient) readLoop(conn *websocket.Conn) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasClosed := c.closed
			c.mu.Unlock()

			if wasClosed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.notifyClosed(nil)
			} else {
				c.notifyClosed(fmt.Errorf("stream read failed: %w", err))
			}
			return
		}

		if msgType != websocket.TextMessage {
			continue
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("ignoring malformed stream message", "error", err)
			continue
		}

		c.dispatch(msg)
	}
}

func (c *StreamClient) dispatch(msg serverMessage) {
	switch msg.Type {
	case "partial":
		if c.handlers.OnPartial != nil {
			c.handlers.OnPartial(msg.Text)
		}
	case "final":
		if c.handlers.OnFinal != nil {
			c.handlers.OnFinal(msg.Text)
		}
	case "assistant":
		if c.handlers.OnAssistant != nil {
			c.handlers.OnAssistant(msg.Text)
		}
	case "audio":
		if c.handlers.OnAudio != nil {
			c.handlers.OnAudio(msg.B64)
		}
	default:
		// Unknown message types are ignored so the server can add
		// new ones without breaking older clients.
		c.log.Debug("ignoring unknown stream message", "type", msg.Type)
	}
}

func (c *StreamClient) notifyClosed(err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		if c.handlers.OnClosed != nil {
			c.handlers.OnClosed(err)
		}
	})
}
