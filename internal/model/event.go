package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxContentBytes bounds the raw content accepted from the gateway.
// Oversized payloads are rejected before evaluation rather than truncated.
const MaxContentBytes = 8192

// MessageEvent is the wire form of an inbound message as published by the
// gateway on NATS. Ids travel as decimal strings, matching the platform's
// JSON conventions.
type MessageEvent struct {
	GuildID     string            `json:"guild_id"`
	ChannelID   string            `json:"channel_id"`
	MessageID   string            `json:"message_id"`
	AuthorID    string            `json:"author_id"`
	AuthorRoles []string          `json:"author_roles,omitempty"`
	Content     string            `json:"content"`
	Attachments []AttachmentEvent `json:"attachments,omitempty"`
	Stickers    []StickerEvent    `json:"stickers,omitempty"`
	Timestamp   int64             `json:"ts"` // unix milliseconds
}

// AttachmentEvent is the wire form of one attachment.
type AttachmentEvent struct {
	ContentType string `json:"content_type,omitempty"`
}

// StickerEvent is the wire form of one attached sticker.
type StickerEvent struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Context validates the event and converts it into an evaluation context.
func (e *MessageEvent) Context() (*MessageContext, error) {
	if len(e.Content) > MaxContentBytes {
		return nil, fmt.Errorf("model: content exceeds %d byte limit", MaxContentBytes)
	}
	if !utf8.ValidString(e.Content) {
		return nil, fmt.Errorf("model: content is not valid UTF-8")
	}

	guild, err := ParseSnowflake(e.GuildID)
	if err != nil {
		return nil, fmt.Errorf("model: bad guild id %q: %w", e.GuildID, err)
	}
	channel, err := ParseSnowflake(e.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("model: bad channel id %q: %w", e.ChannelID, err)
	}
	message, err := ParseSnowflake(e.MessageID)
	if err != nil {
		return nil, fmt.Errorf("model: bad message id %q: %w", e.MessageID, err)
	}
	author, err := ParseSnowflake(e.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("model: bad author id %q: %w", e.AuthorID, err)
	}

	roles := make([]Snowflake, 0, len(e.AuthorRoles))
	for _, raw := range e.AuthorRoles {
		role, err := ParseSnowflake(raw)
		if err != nil {
			return nil, fmt.Errorf("model: bad role id %q: %w", raw, err)
		}
		roles = append(roles, role)
	}

	stickers := make([]Sticker, 0, len(e.Stickers))
	for _, raw := range e.Stickers {
		id, err := ParseSnowflake(raw.ID)
		if err != nil {
			return nil, fmt.Errorf("model: bad sticker id %q: %w", raw.ID, err)
		}
		stickers = append(stickers, Sticker{ID: id, Name: raw.Name})
	}

	attachments := make([]Attachment, 0, len(e.Attachments))
	for _, a := range e.Attachments {
		attachments = append(attachments, Attachment{ContentType: a.ContentType})
	}

	return &MessageContext{
		GuildID:     guild,
		ChannelID:   channel,
		MessageID:   message,
		AuthorID:    author,
		AuthorRoles: roles,
		Content:     e.Content,
		Attachments: attachments,
		Stickers:    stickers,
		CreatedAt:   time.UnixMilli(e.Timestamp),
	}, nil
}
