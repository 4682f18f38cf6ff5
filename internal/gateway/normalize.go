package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/warden/mod-bot/internal/model"
)

// envelope is the outer shape of every platform frame.
type envelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d"`
}

const eventMessageCreate = "MESSAGE_CREATE"

// messagePayload mirrors the platform's message-create payload, limited to
// the fields moderation cares about.
type messagePayload struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Content   string `json:"content"`
	Author    struct {
		ID  string `json:"id"`
		Bot bool   `json:"bot"`
	} `json:"author"`
	Member struct {
		Roles []string `json:"roles"`
	} `json:"member"`
	Attachments []struct {
		ContentType string `json:"content_type"`
	} `json:"attachments"`
	StickerItems []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"sticker_items"`
	Timestamp time.Time `json:"timestamp"`
}

// Normalize converts a raw platform frame into a message event. Frames
// that are not message creations, direct messages (no guild id), and bot
// messages yield (nil, nil).
func Normalize(frame []byte) (*model.MessageEvent, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("gateway: unmarshal envelope: %w", err)
	}
	if env.T != eventMessageCreate {
		return nil, nil
	}

	var p messagePayload
	if err := json.Unmarshal(env.D, &p); err != nil {
		return nil, fmt.Errorf("gateway: unmarshal message payload: %w", err)
	}
	if p.GuildID == "" || p.Author.Bot {
		return nil, nil
	}

	event := &model.MessageEvent{
		GuildID:     p.GuildID,
		ChannelID:   p.ChannelID,
		MessageID:   p.ID,
		AuthorID:    p.Author.ID,
		AuthorRoles: p.Member.Roles,
		Content:     p.Content,
		Timestamp:   p.Timestamp.UnixMilli(),
	}
	for _, a := range p.Attachments {
		event.Attachments = append(event.Attachments, model.AttachmentEvent{ContentType: a.ContentType})
	}
	for _, s := range p.StickerItems {
		event.Stickers = append(event.Stickers, model.StickerEvent{ID: s.ID, Name: s.Name})
	}
	return event, nil
}
