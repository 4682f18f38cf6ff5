// Package gateway maintains the outbound websocket connection to the chat
// platform. It reads raw platform frames for normalization into message
// events and writes moderation commands (deletes, sends) back over the same
// socket.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Command is an outbound platform operation.
type Command struct {
	Op        string `json:"op"` // "delete_message" or "send_message"
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// Command ops.
const (
	OpDeleteMessage = "delete_message"
	OpSendMessage   = "send_message"
)

// Client is a single websocket connection to the platform. Reads happen
// from one goroutine; writes are serialized internally so NATS callbacks
// can issue commands concurrently.
type Client struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// Dial connects and authenticates to the platform gateway.
func Dial(ctx context.Context, url, token string) (*Client, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bot "+token)
	}
	dialer := ws.Dialer{Header: ws.HandshakeHeaderHTTP(header)}

	conn, _, _, err := dialer.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("gateway: dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// ReadFrame blocks until the next text frame from the platform.
func (c *Client) ReadFrame() ([]byte, error) {
	data, err := wsutil.ReadServerText(c.conn)
	if err != nil {
		return nil, fmt.Errorf("gateway: read frame: %w", err)
	}
	return data, nil
}

// WriteCommand sends one command frame.
func (c *Client) WriteCommand(cmd Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("gateway: marshal command: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := wsutil.WriteClientMessage(c.conn, ws.OpText, data); err != nil {
		return fmt.Errorf("gateway: write command: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
