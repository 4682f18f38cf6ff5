// Package actions turns a matched verdict and a filter's configured
// action list into rendered, ready-to-dispatch action requests,
// performing template substitution on outbound message content.
package actions

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/warden/mod-bot/internal/config"
	"github.com/warden/mod-bot/internal/model"
)

// MaxMessageLen is the platform's message length limit; rendered
// $MESSAGE_PREVIEW substitutions keep the whole message under it.
const MaxMessageLen = 2000

const (
	tokenUserID         = "$USER_ID"
	tokenReason         = "$REASON"
	tokenMessageContent = "$MESSAGE_CONTENT"
	tokenMessagePreview = "$MESSAGE_PREVIEW"

	ellipsis = "…"
)

// Render substitutes template tokens with values from the message and
// verdict. Substitution is a single left-to-right scan: a reason string
// containing $USER_ID is not re-substituted, and unknown tokens are left
// untouched.
func Render(template string, msg *model.MessageContext, verdict model.Verdict) string {
	r := strings.NewReplacer(
		tokenUserID, msg.AuthorID.String(),
		tokenReason, verdict.Reason,
		tokenMessageContent, msg.Content,
		tokenMessagePreview, preview(template, msg, verdict),
	)
	return r.Replace(template)
}

// preview truncates content so that a template containing
// $MESSAGE_PREVIEW renders within MaxMessageLen, appending an ellipsis on
// truncation and never splitting a UTF-8 rune. The budget is computed
// from the template with every other token already expanded, so a long
// reason shrinks the preview rather than pushing the message over the
// limit.
func preview(template string, msg *model.MessageContext, verdict model.Verdict) string {
	content := msg.Content
	if !strings.Contains(template, tokenMessagePreview) {
		return content
	}

	rendered := strings.NewReplacer(
		tokenUserID, msg.AuthorID.String(),
		tokenReason, verdict.Reason,
		tokenMessageContent, content,
	).Replace(strings.ReplaceAll(template, tokenMessagePreview, ""))

	available := MaxMessageLen - len(rendered)
	if len(content) <= available {
		return content
	}
	if available <= 0 {
		return ""
	}
	if available <= len(ellipsis) {
		return ellipsis
	}

	cut := available - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + ellipsis
}

// Execute renders the filter's action list against the message and
// verdict, in configured order. The caller dispatches the returned
// requests; nothing here talks to the platform.
func Execute(acts []config.Action, msg *model.MessageContext, verdict model.Verdict) []model.ActionRequest {
	if len(acts) == 0 {
		return nil
	}

	requests := make([]model.ActionRequest, 0, len(acts))
	for _, a := range acts {
		switch action := a.(type) {
		case config.DeleteAction:
			requests = append(requests, model.ActionRequest{
				ID:        uuid.NewString(),
				Kind:      model.ActionDelete,
				GuildID:   msg.GuildID,
				ChannelID: msg.ChannelID,
				MessageID: msg.MessageID,
			})
		case config.SendMessageAction:
			requests = append(requests, model.ActionRequest{
				ID:        uuid.NewString(),
				Kind:      model.ActionSendMessage,
				GuildID:   msg.GuildID,
				ChannelID: action.ChannelID,
				Content:   Render(action.Template, msg, verdict),
				Batch:     action.Batch,
			})
		}
	}
	return requests
}
