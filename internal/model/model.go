// Package model defines the data shapes shared between the gateway, the
// filter engine, and the action dispatcher: platform identifiers, the
// normalized per-message evaluation context, verdicts, and rendered
// action requests.
package model

import (
	"strconv"
	"time"
)

// Snowflake is a platform entity identifier (guild, channel, user, message,
// sticker). The zero value means "not set".
type Snowflake uint64

// String renders the id in the decimal form the platform uses.
func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// ParseSnowflake parses a decimal id string. Returns 0 and an error for
// anything that is not a plain unsigned decimal.
func ParseSnowflake(s string) (Snowflake, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return Snowflake(v), nil
}

// Attachment is one file attached to a message. ContentType is the MIME
// type the platform declared for it; an empty string means the platform
// did not resolve one.
type Attachment struct {
	ContentType string
}

// Sticker is one sticker attached to a message.
type Sticker struct {
	ID   Snowflake
	Name string
}

// MessageContext is the immutable, fully normalized view of one inbound
// message. It is built once per event by the gateway collaborator and
// passed by pointer through evaluation; nothing in the engine mutates it.
type MessageContext struct {
	GuildID     Snowflake
	ChannelID   Snowflake
	MessageID   Snowflake
	AuthorID    Snowflake
	AuthorRoles []Snowflake
	Content     string
	Attachments []Attachment
	Stickers    []Sticker
	CreatedAt   time.Time
}

// HasRole reports whether the author carries the given role.
func (m *MessageContext) HasRole(role Snowflake) bool {
	for _, r := range m.AuthorRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Verdict is the outcome of evaluating one filter against one message.
// The zero value is "no match".
type Verdict struct {
	Matched bool
	// Filter is the configured name of the filter that matched.
	Filter string
	// Rule identifies what triggered: a rule kind ("words", "regex", ...)
	// or "spam".
	Rule string
	// Reason is the human-readable explanation, e.g.
	// "contains denied domain `example.com`".
	Reason string
}

// NoMatch is the verdict for a message no filter objected to.
var NoMatch = Verdict{}

// ActionRequestKind discriminates rendered action requests.
type ActionRequestKind string

const (
	ActionDelete      ActionRequestKind = "delete"
	ActionSendMessage ActionRequestKind = "send_message"
)

// ActionRequest is a rendered, ready-to-dispatch remediation instruction.
// The engine produces these; executing them against the platform is the
// dispatcher's job.
type ActionRequest struct {
	// ID correlates the request with its asynchronously reported result.
	ID   string            `json:"id"`
	Kind ActionRequestKind `json:"kind"`

	GuildID   Snowflake `json:"guild_id"`
	ChannelID Snowflake `json:"channel_id"`

	// MessageID is set for delete requests.
	MessageID Snowflake `json:"message_id,omitempty"`
	// Content is the rendered message body for send requests.
	Content string `json:"content,omitempty"`
	// Batch marks send requests that may be coalesced with others to the
	// same channel instead of being delivered immediately.
	Batch bool `json:"batch,omitempty"`
}

// ActionResult is reported back by the executing collaborator, one per
// dispatched request. A nil-Error result means the platform accepted it.
type ActionResult struct {
	RequestID string            `json:"request_id"`
	Kind      ActionRequestKind `json:"kind"`
	Error     string            `json:"error,omitempty"`
}

// OK reports whether the request was executed successfully.
func (r ActionResult) OK() bool {
	return r.Error == ""
}
