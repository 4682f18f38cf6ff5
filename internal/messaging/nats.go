// Package messaging provides a NATS client wrapper for pub/sub messaging
// between the gateway and the moderation service. It handles connection
// lifecycle, subject-based subscriptions, and convenience methods for the
// message-event and action subjects.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns used across the moderation services.
const (
	SubjectMessageEvent = "mod.message.event" // + .<guild_id>
	SubjectActionDelete = "mod.action.delete"
	SubjectActionSend   = "mod.action.send"
	SubjectActionResult = "mod.action.result" // + .<request_id>
	SubjectOffender     = "mod.offender.notice"
)

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultNATSConfig returns sensible defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           "nats://localhost:4222",
		Name:          "warden",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewNATSClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// PublishMessageEvent publishes a raw message event for a guild.
func (c *NATSClient) PublishMessageEvent(guildID string, data []byte) error {
	return c.Publish(SubjectMessageEvent+"."+guildID, data)
}

// SubscribeMessageEvents subscribes to message events from all guilds and
// passes the raw payload to the handler.
func (c *NATSClient) SubscribeMessageEvents(handler func(data []byte)) error {
	return c.Subscribe(SubjectMessageEvent+".*", func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishActionDelete publishes a message-deletion request.
func (c *NATSClient) PublishActionDelete(data []byte) error {
	return c.Publish(SubjectActionDelete, data)
}

// PublishActionSend publishes a send-message request.
func (c *NATSClient) PublishActionSend(data []byte) error {
	return c.Publish(SubjectActionSend, data)
}

// SubscribeActionDelete subscribes to message-deletion requests.
func (c *NATSClient) SubscribeActionDelete(handler func(data []byte)) error {
	return c.Subscribe(SubjectActionDelete, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// SubscribeActionSend subscribes to send-message requests.
func (c *NATSClient) SubscribeActionSend(handler func(data []byte)) error {
	return c.Subscribe(SubjectActionSend, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishActionResult publishes the outcome of a specific action request.
func (c *NATSClient) PublishActionResult(requestID string, data []byte) error {
	return c.Publish(SubjectActionResult+"."+requestID, data)
}

// SubscribeActionResults subscribes to outcomes for all action requests.
func (c *NATSClient) SubscribeActionResults(handler func(data []byte)) error {
	return c.Subscribe(SubjectActionResult+".*", func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishOffenderNotice publishes a notice that a user tripped a filter, for
// consumers like the quarantine escalator.
func (c *NATSClient) PublishOffenderNotice(data []byte) error {
	return c.Publish(SubjectOffender, data)
}

// SubscribeOffenderNotices subscribes to offender notices.
func (c *NATSClient) SubscribeOffenderNotices(handler func(data []byte)) error {
	return c.Subscribe(SubjectOffender, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *NATSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}
