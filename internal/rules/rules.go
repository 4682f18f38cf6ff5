// Package rules implements the pattern matchers the filter engine
// evaluates against messages: lexical word matching, substring and regex
// matching (both homoglyph-aware), zalgo detection, attachment MIME-type
// policy, link-domain and invite-code policy, and sticker policy.
//
// Matchers are pure and safe for concurrent use. They never fail:
// malformed URLs, invite links, or MIME strings simply do not match.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/warden/mod-bot/internal/model"
)

// ListMode selects how a configured value set is interpreted.
type ListMode string

const (
	// ModeAllow denies every value not in the configured set.
	ModeAllow ListMode = "allow"
	// ModeDeny denies exactly the values in the configured set.
	ModeDeny ListMode = "deny"
)

// Valid reports whether m is a recognized mode.
func (m ListMode) Valid() bool {
	return m == ModeAllow || m == ModeDeny
}

// Rule is one compiled pattern check. Match returns whether the message
// violates the rule and, if so, a reason naming the offending value.
type Rule interface {
	Kind() string
	Match(msg *model.MessageContext) (reason string, matched bool)
}

// checkList evaluates extracted values against a configured set under the
// given mode. The first offending value wins.
func checkList(mode ListMode, what string, values []string, set map[string]struct{}) (string, bool) {
	switch mode {
	case ModeAllow:
		for _, v := range values {
			if _, ok := set[v]; !ok {
				return fmt.Sprintf("contains unallowed %s `%s`", what, v), true
			}
		}
	default:
		for _, v := range values {
			if _, ok := set[v]; ok {
				return fmt.Sprintf("contains denied %s `%s`", what, v), true
			}
		}
	}
	return "", false
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Words matches messages containing any configured word as a whole
// whitespace/punctuation-delimited token, case-insensitively. "spammer"
// does not match a banned word "spam". Tokens are also compared in
// homoglyph-skeleton form.
type Words struct {
	words map[string]struct{}
}

// NewWords builds a word rule; configured words are case-folded.
func NewWords(words []string) *Words {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Words{words: set}
}

func (r *Words) Kind() string { return "words" }

func (r *Words) Match(msg *model.MessageContext) (string, bool) {
	for _, text := range []string{msg.Content, Skeletonize(msg.Content)} {
		for _, tok := range Tokens(text) {
			if _, ok := r.words[tok]; ok {
				return fmt.Sprintf("contains word `%s`", tok), true
			}
		}
	}
	return "", false
}

// Substring matches messages containing any configured fragment anywhere
// in the content, case-insensitively, in raw or skeleton form.
type Substring struct {
	subs []string
}

// NewSubstring builds a substring rule; fragments are case-folded and
// matched in configuration order.
func NewSubstring(subs []string) *Substring {
	folded := make([]string, len(subs))
	for i, s := range subs {
		folded[i] = strings.ToLower(s)
	}
	return &Substring{subs: folded}
}

func (r *Substring) Kind() string { return "substring" }

func (r *Substring) Match(msg *model.MessageContext) (string, bool) {
	raw := strings.ToLower(msg.Content)
	skeleton := strings.ToLower(Skeletonize(msg.Content))
	for _, s := range r.subs {
		if strings.Contains(raw, s) || strings.Contains(skeleton, s) {
			return fmt.Sprintf("contains substring `%s`", s), true
		}
	}
	return "", false
}

// Regex matches messages where any configured pattern finds at least one
// occurrence in the raw content or its skeleton. An empty pattern list
// never matches.
type Regex struct {
	patterns []*regexp.Regexp
}

// NewRegex builds a regex rule from precompiled patterns.
func NewRegex(patterns []*regexp.Regexp) *Regex {
	return &Regex{patterns: patterns}
}

func (r *Regex) Kind() string { return "regex" }

func (r *Regex) Match(msg *model.MessageContext) (string, bool) {
	if len(r.patterns) == 0 {
		return "", false
	}
	skeleton := Skeletonize(msg.Content)
	for _, p := range r.patterns {
		if p.MatchString(msg.Content) || p.MatchString(skeleton) {
			return fmt.Sprintf("matches regex `%s`", p.String()), true
		}
	}
	return "", false
}

// Zalgo matches diacritic-stacking obfuscation: any base character
// followed by more combining marks than legitimate accented text carries.
type Zalgo struct{}

func (Zalgo) Kind() string { return "zalgo" }

func (Zalgo) Match(msg *model.MessageContext) (string, bool) {
	if isZalgo(msg.Content) {
		return "contains zalgo", true
	}
	return "", false
}

// MimeType applies an allow/deny policy to the declared MIME types of a
// message's attachments. Attachments without a declared type are denied
// outright unless allowUnknown is set, regardless of mode.
type MimeType struct {
	mode         ListMode
	types        map[string]struct{}
	allowUnknown bool
}

// NewMimeType builds a MIME-type rule.
func NewMimeType(mode ListMode, types []string, allowUnknown bool) *MimeType {
	return &MimeType{mode: mode, types: stringSet(types), allowUnknown: allowUnknown}
}

func (r *MimeType) Kind() string { return "mime_type" }

func (r *MimeType) Match(msg *model.MessageContext) (string, bool) {
	declared := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		if a.ContentType == "" {
			if !r.allowUnknown {
				return "unknown content type for attachment", true
			}
			continue
		}
		declared = append(declared, a.ContentType)
	}
	return checkList(r.mode, "content type", declared, r.types)
}

// Link applies an allow/deny policy to the domains of URLs in content.
// Domains compare exactly after case-folding and "www." stripping.
type Link struct {
	mode    ListMode
	domains map[string]struct{}
}

// NewLink builds a link rule; configured domains are normalized the same
// way extracted ones are.
func NewLink(mode ListMode, domains []string) *Link {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[strings.TrimPrefix(strings.ToLower(d), "www.")] = struct{}{}
	}
	return &Link{mode: mode, domains: set}
}

func (r *Link) Kind() string { return "link" }

func (r *Link) Match(msg *model.MessageContext) (string, bool) {
	return checkList(r.mode, "domain", Domains(msg.Content), r.domains)
}

// Invite applies an allow/deny policy to invite codes found in content.
type Invite struct {
	mode  ListMode
	codes map[string]struct{}
}

// NewInvite builds an invite rule.
func NewInvite(mode ListMode, codes []string) *Invite {
	return &Invite{mode: mode, codes: stringSet(codes)}
}

func (r *Invite) Kind() string { return "invite" }

func (r *Invite) Match(msg *model.MessageContext) (string, bool) {
	return checkList(r.mode, "invite", Invites(msg.Content), r.codes)
}

// StickerID applies an allow/deny policy to the ids of attached stickers.
type StickerID struct {
	mode ListMode
	ids  map[string]struct{}
}

// NewStickerID builds a sticker-id rule.
func NewStickerID(mode ListMode, ids []model.Snowflake) *StickerID {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id.String()] = struct{}{}
	}
	return &StickerID{mode: mode, ids: set}
}

func (r *StickerID) Kind() string { return "sticker_id" }

func (r *StickerID) Match(msg *model.MessageContext) (string, bool) {
	ids := make([]string, 0, len(msg.Stickers))
	for _, s := range msg.Stickers {
		ids = append(ids, s.ID.String())
	}
	return checkList(r.mode, "sticker", ids, r.ids)
}

// StickerName matches attached stickers whose name contains any configured
// fragment, case-insensitively.
type StickerName struct {
	subs []string
}

// NewStickerName builds a sticker-name rule.
func NewStickerName(subs []string) *StickerName {
	folded := make([]string, len(subs))
	for i, s := range subs {
		folded[i] = strings.ToLower(s)
	}
	return &StickerName{subs: folded}
}

func (r *StickerName) Kind() string { return "sticker_name" }

func (r *StickerName) Match(msg *model.MessageContext) (string, bool) {
	for _, sticker := range msg.Stickers {
		name := strings.ToLower(sticker.Name)
		for _, s := range r.subs {
			if strings.Contains(name, s) {
				return fmt.Sprintf("contains sticker with denied name substring `%s`", s), true
			}
		}
	}
	return "", false
}

// EmojiName matches custom emoji in content whose name contains any
// configured fragment, case-insensitively.
type EmojiName struct {
	subs []string
}

// NewEmojiName builds an emoji-name rule.
func NewEmojiName(subs []string) *EmojiName {
	folded := make([]string, len(subs))
	for i, s := range subs {
		folded[i] = strings.ToLower(s)
	}
	return &EmojiName{subs: folded}
}

func (r *EmojiName) Kind() string { return "emoji_name" }

func (r *EmojiName) Match(msg *model.MessageContext) (string, bool) {
	for _, name := range CustomEmojiNames(msg.Content) {
		folded := strings.ToLower(name)
		for _, s := range r.subs {
			if strings.Contains(folded, s) {
				return fmt.Sprintf("contains emoji with denied name substring `%s`", s), true
			}
		}
	}
	return "", false
}
