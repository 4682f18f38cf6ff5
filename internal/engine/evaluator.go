// Package engine composes scoping, rule matchers, and the spam tracker
// into per-filter evaluation, and orchestrates per-message evaluation
// across a guild's ordered filter list with first-match-wins semantics.
package engine

import (
	"fmt"

	"github.com/warden/mod-bot/internal/config"
	"github.com/warden/mod-bot/internal/model"
	"github.com/warden/mod-bot/internal/rules"
	"github.com/warden/mod-bot/internal/spam"
)

// Evaluator evaluates single filters against messages. It is safe for
// concurrent use; all mutable state lives in the shared spam tracker.
type Evaluator struct {
	tracker *spam.Tracker
}

// NewEvaluator creates an evaluator backed by the given tracker.
func NewEvaluator(tracker *spam.Tracker) *Evaluator {
	return &Evaluator{tracker: tracker}
}

// Evaluate runs one filter against one message: scope gate, then rules in
// configured order, then spam kinds in deterministic order. Rule matches
// take precedence, but spam weights are recorded either way so that
// short-circuiting on a rule never undercounts the window.
func (e *Evaluator) Evaluate(f *config.Filter, msg *model.MessageContext) model.Verdict {
	if !f.Scoping.Applies(msg.ChannelID, msg.AuthorRoles) {
		return model.NoMatch
	}

	for _, rule := range f.Rules {
		if reason, matched := rule.Match(msg); matched {
			// The message still counts toward the spam windows.
			e.checkSpam(f, msg, false)
			return model.Verdict{
				Matched: true,
				Filter:  f.Name,
				Rule:    rule.Kind(),
				Reason:  reason,
			}
		}
	}

	if verdict := e.checkSpam(f, msg, true); verdict.Matched {
		return verdict
	}
	return model.NoMatch
}

// spamNouns name each kind in reasons, matching the plural phrasing
// operators see in notification templates.
var spamNouns = map[spam.Kind]string{
	spam.Emoji:      "emoji",
	spam.Link:       "links",
	spam.Attachment: "attachments",
	spam.Spoiler:    "spoilers",
	spam.Mention:    "mentions",
	spam.Duplicate:  "duplicate messages",
}

// checkSpam records the message's contribution to every kind the filter
// tracks. When verdictWanted is false the recording still happens but the
// outcome is discarded (a rule already decided this message).
func (e *Evaluator) checkSpam(f *config.Filter, msg *model.MessageContext, verdictWanted bool) model.Verdict {
	if len(f.Spam) == 0 {
		return model.NoMatch
	}

	breached := spam.Kind("")
	for _, kind := range spam.Kinds {
		th, tracked := f.Spam[kind]
		if !tracked {
			continue
		}

		var hit bool
		if kind == spam.Duplicate {
			hit = e.tracker.RecordDuplicate(msg.GuildID, msg.AuthorID, msg.CreatedAt, th, spam.Fingerprint(msg.Content))
		} else {
			weight := contribution(kind, msg)
			if weight == 0 {
				continue
			}
			hit = e.tracker.RecordAndCheck(msg.GuildID, msg.AuthorID, kind, msg.CreatedAt, th, weight)
		}

		if hit && breached == "" {
			breached = kind
			if verdictWanted {
				// Keep recording the remaining kinds before returning.
				continue
			}
		}
	}

	if !verdictWanted || breached == "" {
		return model.NoMatch
	}

	th := f.Spam[breached]
	return model.Verdict{
		Matched: true,
		Filter:  f.Name,
		Rule:    "spam",
		Reason:  fmt.Sprintf("sent too many %s (%d within %s)", spamNouns[breached], th.Count, th.Interval),
	}
}

// contribution computes the message's weight for a spam kind: how many
// qualifying items this single message carries.
func contribution(kind spam.Kind, msg *model.MessageContext) int {
	switch kind {
	case spam.Emoji:
		return rules.CountEmoji(msg.Content)
	case spam.Link:
		return rules.CountLinks(msg.Content)
	case spam.Attachment:
		return len(msg.Attachments)
	case spam.Spoiler:
		return rules.CountSpoilers(msg.Content)
	case spam.Mention:
		return rules.CountMentions(msg.Content)
	default:
		return 0
	}
}
