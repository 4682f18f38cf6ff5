package model

import (
	"strings"
	"testing"
)

func validEvent() *MessageEvent {
	return &MessageEvent{
		GuildID:     "1",
		ChannelID:   "10",
		MessageID:   "100",
		AuthorID:    "42",
		AuthorRoles: []string{"7"},
		Content:     "hello",
		Stickers:    []StickerEvent{{ID: "99", Name: "wave"}},
		Timestamp:   1754049600000,
	}
}

func TestMessageEventContext(t *testing.T) {
	msg, err := validEvent().Context()
	if err != nil {
		t.Fatalf("Context: %v", err)
	}

	if msg.GuildID != 1 || msg.ChannelID != 10 || msg.MessageID != 100 || msg.AuthorID != 42 {
		t.Errorf("ids = %+v", msg)
	}
	if !msg.HasRole(7) || msg.HasRole(8) {
		t.Error("role conversion broken")
	}
	if len(msg.Stickers) != 1 || msg.Stickers[0].ID != 99 || msg.Stickers[0].Name != "wave" {
		t.Errorf("stickers = %v", msg.Stickers)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("timestamp not converted")
	}
}

func TestMessageEventContext_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MessageEvent)
	}{
		{"oversized content", func(e *MessageEvent) { e.Content = strings.Repeat("a", MaxContentBytes+1) }},
		{"invalid utf8", func(e *MessageEvent) { e.Content = "ok\xff" }},
		{"bad guild id", func(e *MessageEvent) { e.GuildID = "nope" }},
		{"bad channel id", func(e *MessageEvent) { e.ChannelID = "" }},
		{"bad message id", func(e *MessageEvent) { e.MessageID = "-5" }},
		{"bad author id", func(e *MessageEvent) { e.AuthorID = "12x" }},
		{"bad role id", func(e *MessageEvent) { e.AuthorRoles = []string{"x"} }},
		{"bad sticker id", func(e *MessageEvent) { e.Stickers = []StickerEvent{{ID: "x"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(e)
			if _, err := e.Context(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSnowflakeParse(t *testing.T) {
	id, err := ParseSnowflake("123456789012345678")
	if err != nil {
		t.Fatalf("ParseSnowflake: %v", err)
	}
	if id.String() != "123456789012345678" {
		t.Errorf("String = %q", id.String())
	}

	for _, bad := range []string{"", "abc", "-1", "12 3"} {
		if _, err := ParseSnowflake(bad); err == nil {
			t.Errorf("ParseSnowflake(%q) succeeded", bad)
		}
	}
}
