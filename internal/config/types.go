// Package config defines the per-guild filter configuration: the YAML
// schema operators author, the compiled immutable form the engine
// evaluates, validation, and the atomically swappable snapshot store.
//
// Configuration is compiled once at load time; evaluation never observes
// a partially updated config. Regex patterns, word sets, and id sets are
// all resolved here so the hot path does no parsing.
package config

import (
	"github.com/warden/mod-bot/internal/model"
	"github.com/warden/mod-bot/internal/rules"
	"github.com/warden/mod-bot/internal/spam"
)

// Scoping narrows a filter to a subset of channels and authors. A nil
// *Scoping applies everywhere.
type Scoping struct {
	IncludeChannels map[model.Snowflake]struct{}
	ExcludeChannels map[model.Snowflake]struct{}
	ExcludeRoles    map[model.Snowflake]struct{}
}

// Applies reports whether a filter with this scoping covers a message in
// the given channel from an author with the given roles. When
// IncludeChannels is non-empty it decides channel scope entirely and
// ExcludeChannels is ignored.
func (s *Scoping) Applies(channel model.Snowflake, roles []model.Snowflake) bool {
	if s == nil {
		return true
	}
	for _, r := range roles {
		if _, excluded := s.ExcludeRoles[r]; excluded {
			return false
		}
	}
	if len(s.IncludeChannels) > 0 {
		_, included := s.IncludeChannels[channel]
		return included
	}
	_, excluded := s.ExcludeChannels[channel]
	return !excluded
}

// Action is one configured remediation step. The concrete types are
// DeleteAction and SendMessageAction; the set is closed.
type Action interface {
	actionKind() string
}

// DeleteAction deletes the offending message.
type DeleteAction struct{}

func (DeleteAction) actionKind() string { return "delete" }

// SendMessageAction sends a templated message to a channel. Template
// tokens are substituted by the action executor at verdict time.
type SendMessageAction struct {
	ChannelID model.Snowflake
	Template  string
	// Batch allows the dispatcher to coalesce this message with others
	// to the same channel.
	Batch bool
}

func (SendMessageAction) actionKind() string { return "send_message" }

// SpamConfig maps each tracked spam kind to its threshold. Kinds absent
// from the map are not tracked for the filter.
type SpamConfig map[spam.Kind]spam.Threshold

// Filter is one compiled rule+action+scope+spam block. Scoping and
// Actions are fully resolved: guild defaults were already folded in at
// compile time, so evaluation never consults the guild.
type Filter struct {
	Name    string
	Rules   []rules.Rule
	Scoping *Scoping
	Actions []Action
	Spam    SpamConfig
}

// GuildConfig is the compiled configuration for one guild. Filters are in
// evaluation-priority order; the first matching filter wins.
type GuildConfig struct {
	ID      model.Snowflake
	Filters []Filter
}

// Snapshot is a complete, immutable configuration for every guild. A
// reload builds a fresh Snapshot and swaps it in whole.
type Snapshot struct {
	Guilds map[model.Snowflake]*GuildConfig
}

// Guild returns the configuration for a guild, or nil if none exists.
func (s *Snapshot) Guild(id model.Snowflake) *GuildConfig {
	if s == nil {
		return nil
	}
	return s.Guilds[id]
}
