package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/warden/mod-bot/internal/messaging"
	"github.com/warden/mod-bot/internal/model"
)

// DeletePayload is the wire form of a message-deletion request.
type DeletePayload struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

// SendPayload is the wire form of a send-message request.
type SendPayload struct {
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

// NATSExecutor publishes action requests over NATS for the gateway to carry
// out against the platform API.
type NATSExecutor struct {
	client *messaging.NATSClient
}

// NewNATSExecutor wraps an existing NATS client.
func NewNATSExecutor(client *messaging.NATSClient) *NATSExecutor {
	return &NATSExecutor{client: client}
}

// DeleteMessage publishes a deletion request.
func (e *NATSExecutor) DeleteMessage(_ context.Context, channelID, messageID model.Snowflake) error {
	data, err := json.Marshal(DeletePayload{
		ChannelID: channelID.String(),
		MessageID: messageID.String(),
	})
	if err != nil {
		return fmt.Errorf("dispatch: marshal delete payload: %w", err)
	}
	return e.client.PublishActionDelete(data)
}

// SendMessage publishes a send request.
func (e *NATSExecutor) SendMessage(_ context.Context, channelID model.Snowflake, content string) error {
	data, err := json.Marshal(SendPayload{
		ChannelID: channelID.String(),
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("dispatch: marshal send payload: %w", err)
	}
	return e.client.PublishActionSend(data)
}
