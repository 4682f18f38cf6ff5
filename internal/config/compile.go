package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/warden/mod-bot/internal/model"
	"github.com/warden/mod-bot/internal/rules"
	"github.com/warden/mod-bot/internal/spam"
)

// Compile turns a parsed guild document into its immutable compiled form,
// resolving guild-level default scoping and actions into each filter and
// precompiling every pattern. It returns the compiled config together
// with every validation problem found; a config with problems must not be
// served.
func Compile(file *GuildFile) (*GuildConfig, []string) {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	guildID, err := model.ParseSnowflake(file.GuildID)
	if err != nil {
		report("guild_id %q is not a valid id", file.GuildID)
	}

	defaultScoping := compileScoping(file.DefaultScoping, "default_scoping", report)
	defaultActions := compileActions(file.DefaultActions, "default_actions", report)
	if file.DefaultActions != nil && len(file.DefaultActions) == 0 {
		report("default_actions is specified but empty; omit the key")
	}

	if len(file.Filters) == 0 {
		report("no filters defined")
	}

	cfg := &GuildConfig{ID: guildID}
	for i, doc := range file.Filters {
		name := doc.Name
		if name == "" {
			name = fmt.Sprintf("filter %d", i)
			report("filter %d has no name", i)
		}
		ctx := fmt.Sprintf("filter %q", name)

		f := Filter{Name: name}

		if len(doc.Rules) == 0 && len(doc.Spam) == 0 {
			report("%s has no rules and no spam thresholds", ctx)
		}
		for j, rd := range doc.Rules {
			rule := compileRule(&rd, fmt.Sprintf("%s rule %d", ctx, j), report)
			if rule != nil {
				f.Rules = append(f.Rules, rule)
			}
		}

		if doc.Scoping != nil {
			f.Scoping = compileScoping(doc.Scoping, ctx, report)
		} else {
			f.Scoping = defaultScoping
		}

		switch {
		case doc.Actions != nil:
			if len(doc.Actions) == 0 {
				report("%s has an empty actions array; omit the key to use default actions", ctx)
			}
			f.Actions = compileActions(doc.Actions, ctx, report)
		case defaultActions != nil:
			f.Actions = defaultActions
		default:
			report("%s does not specify actions and the guild has no default actions", ctx)
		}

		if doc.Spam != nil {
			f.Spam = compileSpam(doc.Spam, ctx, report)
		}

		cfg.Filters = append(cfg.Filters, f)
	}

	return cfg, problems
}

func compileScoping(doc *ScopingDoc, ctx string, report func(string, ...any)) *Scoping {
	if doc == nil {
		return nil
	}

	if len(doc.IncludeChannels) > 0 && len(doc.ExcludeChannels) > 0 {
		report("%s specifies both include_channels and exclude_channels; include_channels wins, specify only one", ctx)
	}
	if doc.IncludeChannels != nil && len(doc.IncludeChannels) == 0 {
		report("%s specifies an empty include_channels; omit the key", ctx)
	}
	if doc.ExcludeChannels != nil && len(doc.ExcludeChannels) == 0 {
		report("%s specifies an empty exclude_channels; omit the key", ctx)
	}
	if doc.ExcludeRoles != nil && len(doc.ExcludeRoles) == 0 {
		report("%s specifies an empty exclude_roles; omit the key", ctx)
	}

	return &Scoping{
		IncludeChannels: idSet(doc.IncludeChannels, ctx+" include_channels", report),
		ExcludeChannels: idSet(doc.ExcludeChannels, ctx+" exclude_channels", report),
		ExcludeRoles:    idSet(doc.ExcludeRoles, ctx+" exclude_roles", report),
	}
}

func idSet(raw []string, ctx string, report func(string, ...any)) map[model.Snowflake]struct{} {
	if len(raw) == 0 {
		return nil
	}
	set := make(map[model.Snowflake]struct{}, len(raw))
	for _, r := range raw {
		id, err := model.ParseSnowflake(r)
		if err != nil {
			report("%s: %q is not a valid id", ctx, r)
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func parseIDs(raw []string, ctx string, report func(string, ...any)) []model.Snowflake {
	ids := make([]model.Snowflake, 0, len(raw))
	for _, r := range raw {
		id, err := model.ParseSnowflake(r)
		if err != nil {
			report("%s: %q is not a valid id", ctx, r)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func compileActions(docs []ActionDoc, ctx string, report func(string, ...any)) []Action {
	if docs == nil {
		return nil
	}
	actions := make([]Action, 0, len(docs))
	for i, doc := range docs {
		switch doc.Action {
		case "delete":
			actions = append(actions, DeleteAction{})
		case "send_message":
			channel, err := model.ParseSnowflake(doc.ChannelID)
			if err != nil {
				report("%s action %d: channel_id %q is not a valid id", ctx, i, doc.ChannelID)
				continue
			}
			if doc.Content == "" {
				report("%s action %d: send_message has no content", ctx, i)
				continue
			}
			actions = append(actions, SendMessageAction{
				ChannelID: channel,
				Template:  doc.Content,
				Batch:     doc.Batch,
			})
		default:
			report("%s action %d: unknown action %q", ctx, i, doc.Action)
		}
	}
	return actions
}

func compileSpam(docs map[string]ThresholdDoc, ctx string, report func(string, ...any)) SpamConfig {
	if len(docs) == 0 {
		report("%s specifies an empty spam block; omit the key", ctx)
		return nil
	}

	cfg := make(SpamConfig, len(docs))
	for name, doc := range docs {
		kind := spam.Kind(name)
		if !kind.Valid() {
			report("%s: unknown spam kind %q", ctx, name)
			continue
		}
		if doc.Count < 1 {
			report("%s spam %s: count must be at least 1", ctx, name)
			continue
		}
		interval, err := time.ParseDuration(doc.Interval)
		if err != nil || interval < 0 {
			report("%s spam %s: bad interval %q", ctx, name, doc.Interval)
			continue
		}
		cfg[kind] = spam.Threshold{Count: doc.Count, Interval: interval}
	}
	return cfg
}

func compileRule(doc *RuleDoc, ctx string, report func(string, ...any)) rules.Rule {
	mode := rules.ListMode(doc.Mode)
	needMode := func() bool {
		if !mode.Valid() {
			report("%s: mode must be %q or %q, got %q", ctx, rules.ModeAllow, rules.ModeDeny, doc.Mode)
			return false
		}
		return true
	}

	switch doc.Type {
	case "words":
		if len(doc.Words) == 0 {
			report("%s: words rule has no words", ctx)
			return nil
		}
		return rules.NewWords(doc.Words)

	case "substring":
		if len(doc.Substrings) == 0 {
			report("%s: substring rule has no substrings", ctx)
			return nil
		}
		return rules.NewSubstring(doc.Substrings)

	case "regex":
		if len(doc.Patterns) == 0 {
			report("%s: regex rule has no patterns", ctx)
			return nil
		}
		patterns := make([]*regexp.Regexp, 0, len(doc.Patterns))
		for _, p := range doc.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				report("%s: bad pattern %q: %v", ctx, p, err)
				continue
			}
			patterns = append(patterns, re)
		}
		if len(patterns) == 0 {
			return nil
		}
		return rules.NewRegex(patterns)

	case "zalgo":
		return rules.Zalgo{}

	case "mime_type":
		if !needMode() {
			return nil
		}
		if len(doc.Types) == 0 {
			report("%s: mime_type rule has no types", ctx)
			return nil
		}
		return rules.NewMimeType(mode, doc.Types, doc.AllowUnknown)

	case "link":
		if !needMode() {
			return nil
		}
		if len(doc.Domains) == 0 {
			report("%s: link rule has no domains", ctx)
			return nil
		}
		return rules.NewLink(mode, doc.Domains)

	case "invite":
		if !needMode() {
			return nil
		}
		if len(doc.Invites) == 0 {
			report("%s: invite rule has no invites", ctx)
			return nil
		}
		return rules.NewInvite(mode, doc.Invites)

	case "sticker_id":
		if !needMode() {
			return nil
		}
		if len(doc.Stickers) == 0 {
			report("%s: sticker_id rule has no stickers", ctx)
			return nil
		}
		return rules.NewStickerID(mode, parseIDs(doc.Stickers, ctx, report))

	case "sticker_name":
		if len(doc.Names) == 0 {
			report("%s: sticker_name rule has no names", ctx)
			return nil
		}
		return rules.NewStickerName(doc.Names)

	case "emoji_name":
		if len(doc.Names) == 0 {
			report("%s: emoji_name rule has no names", ctx)
			return nil
		}
		return rules.NewEmojiName(doc.Names)

	default:
		report("%s: unknown rule type %q", ctx, doc.Type)
		return nil
	}
}
