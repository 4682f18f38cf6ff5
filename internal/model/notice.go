package model

// OffenderNotice is published whenever a message trips a filter, so that
// downstream consumers (the quarantine escalator, audit tooling) can react
// without re-evaluating the message.
type OffenderNotice struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
	Filter  string `json:"filter"`
	Rule    string `json:"rule"`
	Reason  string `json:"reason"`
}
