package rules

import (
	"regexp"
	"strings"
	"unicode"
)

// Compiled extraction patterns. These are compiled once at package init and
// reused for every message, so they are safe for concurrent use.
var (
	// linkPattern captures the host portion of http/https URLs.
	linkPattern = regexp.MustCompile(`(?i)https?://([^/\s]+)`)

	// invitePattern captures guild invite codes from invite links.
	invitePattern = regexp.MustCompile(`(?i)discord\.gg/(\w+)`)

	// customEmojiPattern matches custom emoji tags like <:name:123> and
	// animated variants <a:name:123>, capturing the emoji name.
	customEmojiPattern = regexp.MustCompile(`<a?:([^:]+):(\d+)>`)

	// mentionPattern matches user, nickname, and role mentions.
	mentionPattern = regexp.MustCompile(`<@[!&]?\d+>`)

	// spoilerPattern matches ||spoiler|| spans.
	spoilerPattern = regexp.MustCompile(`\|\|[^|]*\|\|`)
)

// inviteHost is excluded from link-domain extraction; invite links are the
// invite rule's territory.
const inviteHost = "discord.gg"

// Domains extracts the normalized domain of every URL in content:
// case-folded host with any leading "www." label stripped. Invite-link
// hosts are skipped. Malformed candidates simply produce no entry.
func Domains(content string) []string {
	matches := linkPattern.FindAllStringSubmatch(content, -1)
	if matches == nil {
		return nil
	}

	domains := make([]string, 0, len(matches))
	for _, m := range matches {
		host := strings.ToLower(m[1])
		// Drop userinfo and port, keeping just the registrable host.
		if i := strings.LastIndex(host, "@"); i >= 0 {
			host = host[i+1:]
		}
		if i := strings.Index(host, ":"); i >= 0 {
			host = host[:i]
		}
		host = strings.TrimPrefix(host, "www.")
		if host == "" || host == inviteHost {
			continue
		}
		domains = append(domains, host)
	}
	return domains
}

// Invites extracts invite codes from recognized invite links in content.
func Invites(content string) []string {
	matches := invitePattern.FindAllStringSubmatch(content, -1)
	if matches == nil {
		return nil
	}

	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, m[1])
	}
	return codes
}

// CustomEmojiNames extracts the names of custom emoji tags in content.
func CustomEmojiNames(content string) []string {
	matches := customEmojiPattern.FindAllStringSubmatch(content, -1)
	if matches == nil {
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// emojiTable covers the Unicode blocks that hold emoji with default
// emoji presentation. Go's regexp has no \p{Emoji} class, so the count
// is a rune scan over these ranges instead.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1}, // misc symbols
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1}, // dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // misc symbols and arrows
	},
	R32: []unicode.Range32{
		{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // misc symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport and map
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental symbols
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // symbols extended-A
	},
}

// CountEmoji counts emoji occurrences in content: unicode emoji runes
// plus custom emoji tags.
func CountEmoji(content string) int {
	n := 0
	for _, r := range content {
		if unicode.Is(emojiTable, r) {
			n++
		}
	}
	return n + len(customEmojiPattern.FindAllStringIndex(content, -1))
}

// CountLinks counts URL occurrences in content.
func CountLinks(content string) int {
	return len(linkPattern.FindAllStringIndex(content, -1))
}

// CountMentions counts user and role mentions in content.
func CountMentions(content string) int {
	return len(mentionPattern.FindAllStringIndex(content, -1))
}

// CountSpoilers counts ||spoiler|| spans in content.
func CountSpoilers(content string) int {
	return len(spoilerPattern.FindAllStringIndex(content, -1))
}

// Tokens splits content on whitespace and strips leading and trailing
// punctuation and symbol runes from each token, case-folding the result.
// Empty tokens (pure punctuation) are dropped.
func Tokens(content string) []string {
	fields := strings.Fields(content)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if tok == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(tok))
	}
	return tokens
}
