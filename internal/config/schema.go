package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// GuildFile is the YAML document operators author, one per guild.
type GuildFile struct {
	GuildID        string      `yaml:"guild_id"`
	DefaultScoping *ScopingDoc `yaml:"default_scoping,omitempty"`
	DefaultActions []ActionDoc `yaml:"default_actions,omitempty"`
	Filters        []FilterDoc `yaml:"filters"`
}

// FilterDoc is one filter block: rules, scope, actions, spam thresholds.
type FilterDoc struct {
	Name    string                  `yaml:"name"`
	Rules   []RuleDoc               `yaml:"rules,omitempty"`
	Scoping *ScopingDoc             `yaml:"scoping,omitempty"`
	Actions []ActionDoc             `yaml:"actions,omitempty"`
	Spam    map[string]ThresholdDoc `yaml:"spam,omitempty"`
}

// RuleDoc is a tagged rule variant; Type selects the kind and the other
// fields are kind-specific.
type RuleDoc struct {
	Type string `yaml:"type"`

	Words      []string `yaml:"words,omitempty"`      // words
	Substrings []string `yaml:"substrings,omitempty"` // substring
	Patterns   []string `yaml:"patterns,omitempty"`   // regex

	Mode         string   `yaml:"mode,omitempty"`          // mime_type, link, invite, sticker_id
	Types        []string `yaml:"types,omitempty"`         // mime_type
	AllowUnknown bool     `yaml:"allow_unknown,omitempty"` // mime_type
	Domains      []string `yaml:"domains,omitempty"`       // link
	Invites      []string `yaml:"invites,omitempty"`       // invite
	Stickers     []string `yaml:"stickers,omitempty"`      // sticker_id
	Names        []string `yaml:"names,omitempty"`         // sticker_name, emoji_name
}

// ActionDoc is a tagged action variant.
type ActionDoc struct {
	Action    string `yaml:"action"` // "delete" or "send_message"
	ChannelID string `yaml:"channel_id,omitempty"`
	Content   string `yaml:"content,omitempty"`
	Batch     bool   `yaml:"batch,omitempty"`
}

// ScopingDoc mirrors Scoping with decimal-string ids.
type ScopingDoc struct {
	IncludeChannels []string `yaml:"include_channels,omitempty"`
	ExcludeChannels []string `yaml:"exclude_channels,omitempty"`
	ExcludeRoles    []string `yaml:"exclude_roles,omitempty"`
}

// ThresholdDoc is one spam threshold: count of qualifying events within
// a window (Go duration string, e.g. "30s").
type ThresholdDoc struct {
	Count    int    `yaml:"count"`
	Interval string `yaml:"interval"`
}

// ParseGuildFile decodes one guild's YAML document.
func ParseGuildFile(data []byte) (*GuildFile, error) {
	var file GuildFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return &file, nil
}
