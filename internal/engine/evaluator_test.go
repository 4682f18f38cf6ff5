package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/warden/mod-bot/internal/config"
	"github.com/warden/mod-bot/internal/model"
	"github.com/warden/mod-bot/internal/rules"
	"github.com/warden/mod-bot/internal/spam"
)

var base = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func msgAt(content string, at time.Time) *model.MessageContext {
	return &model.MessageContext{
		GuildID:   1,
		ChannelID: 10,
		MessageID: 100,
		AuthorID:  42,
		Content:   content,
		CreatedAt: at,
	}
}

func wordsFilter(name string, words ...string) config.Filter {
	return config.Filter{
		Name:    name,
		Rules:   []rules.Rule{rules.NewWords(words)},
		Actions: []config.Action{config.DeleteAction{}},
	}
}

func TestEvaluate_RuleMatch(t *testing.T) {
	e := NewEvaluator(spam.NewTracker())
	f := wordsFilter("language", "spam")

	verdict := e.Evaluate(&f, msgAt("pure spam", base))
	if !verdict.Matched {
		t.Fatal("expected match")
	}
	if verdict.Filter != "language" || verdict.Rule != "words" {
		t.Errorf("verdict = %+v", verdict)
	}
	if verdict.Reason != "contains word `spam`" {
		t.Errorf("reason = %q", verdict.Reason)
	}
}

func TestEvaluate_ScopeGate(t *testing.T) {
	e := NewEvaluator(spam.NewTracker())
	f := wordsFilter("language", "spam")
	f.Scoping = &config.Scoping{
		ExcludeChannels: map[model.Snowflake]struct{}{10: {}},
	}

	if verdict := e.Evaluate(&f, msgAt("pure spam", base)); verdict.Matched {
		t.Error("excluded channel must not be evaluated")
	}
}

func TestEvaluate_SpamVerdict(t *testing.T) {
	e := NewEvaluator(spam.NewTracker())
	f := config.Filter{
		Name:    "flood",
		Actions: []config.Action{config.DeleteAction{}},
		Spam: config.SpamConfig{
			spam.Link: {Count: 3, Interval: 30 * time.Second},
		},
	}

	content := "https://a.example"
	for i := 0; i < 2; i++ {
		if verdict := e.Evaluate(&f, msgAt(content, base.Add(time.Duration(i)*time.Second))); verdict.Matched {
			t.Fatalf("tripped early on message %d", i+1)
		}
	}

	verdict := e.Evaluate(&f, msgAt(content, base.Add(2*time.Second)))
	if !verdict.Matched {
		t.Fatal("expected spam verdict on 3rd link")
	}
	if verdict.Rule != "spam" {
		t.Errorf("rule = %q, want spam", verdict.Rule)
	}
	if want := "sent too many links (3 within 30s)"; verdict.Reason != want {
		t.Errorf("reason = %q, want %q", verdict.Reason, want)
	}
}

func TestEvaluate_RulePrecedesSpam(t *testing.T) {
	e := NewEvaluator(spam.NewTracker())
	f := wordsFilter("combined", "spam")
	f.Spam = config.SpamConfig{
		spam.Link: {Count: 1, Interval: time.Minute},
	}

	verdict := e.Evaluate(&f, msgAt("spam https://a.example", base))
	if verdict.Rule != "words" {
		t.Errorf("rule = %q, want words to take precedence over spam", verdict.Rule)
	}
}

func TestEvaluate_SpamAccruesOnRuleMatch(t *testing.T) {
	tracker := spam.NewTracker()
	e := NewEvaluator(tracker)
	f := wordsFilter("combined", "spam")
	f.Spam = config.SpamConfig{
		spam.Link: {Count: 2, Interval: time.Minute},
	}

	// Rule match, but the link must still count toward the window.
	e.Evaluate(&f, msgAt("spam https://a.example", base))

	verdict := e.Evaluate(&f, msgAt("https://a.example", base.Add(time.Second)))
	if !verdict.Matched || verdict.Rule != "spam" {
		t.Fatalf("verdict = %+v, want spam trip on 2nd link", verdict)
	}
}

func TestEvaluate_DuplicateSpam(t *testing.T) {
	e := NewEvaluator(spam.NewTracker())
	f := config.Filter{
		Name:    "dupes",
		Actions: []config.Action{config.DeleteAction{}},
		Spam: config.SpamConfig{
			spam.Duplicate: {Count: 3, Interval: time.Minute},
		},
	}

	for i := 0; i < 2; i++ {
		if verdict := e.Evaluate(&f, msgAt("buy now", base.Add(time.Duration(i)*time.Second))); verdict.Matched {
			t.Fatalf("tripped early on repeat %d", i+1)
		}
	}
	verdict := e.Evaluate(&f, msgAt("BUY  now", base.Add(2*time.Second)))
	if !verdict.Matched {
		t.Fatal("expected duplicate trip on 3rd normalized repeat")
	}
	if !strings.Contains(verdict.Reason, "duplicate messages") {
		t.Errorf("reason = %q", verdict.Reason)
	}
}

func TestPipeline_FirstMatchWins(t *testing.T) {
	f1 := wordsFilter("first", "alpha")
	f2 := wordsFilter("second", "alpha", "beta")
	f3 := wordsFilter("third", "beta")

	store := config.NewStore(&config.Snapshot{
		Guilds: map[model.Snowflake]*config.GuildConfig{
			1: {ID: 1, Filters: []config.Filter{f1, f2, f3}},
		},
	})
	p := NewPipeline(store, spam.NewTracker())

	requests, verdict := p.OnMessage(msgAt("alpha", base))
	if verdict.Filter != "first" {
		t.Errorf("filter = %q, want first", verdict.Filter)
	}
	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	if requests[0].Kind != model.ActionDelete {
		t.Errorf("request kind = %q", requests[0].Kind)
	}

	_, verdict = p.OnMessage(msgAt("beta", base))
	if verdict.Filter != "second" {
		t.Errorf("filter = %q, want second", verdict.Filter)
	}
}

func TestPipeline_UnknownGuild(t *testing.T) {
	store := config.NewStore(&config.Snapshot{})
	p := NewPipeline(store, spam.NewTracker())

	requests, verdict := p.OnMessage(msgAt("anything", base))
	if verdict.Matched || requests != nil {
		t.Errorf("unconfigured guild must yield no verdict, got %+v", verdict)
	}
}

func TestPipeline_CleanMessage(t *testing.T) {
	store := config.NewStore(&config.Snapshot{
		Guilds: map[model.Snowflake]*config.GuildConfig{
			1: {ID: 1, Filters: []config.Filter{wordsFilter("language", "spam")}},
		},
	})
	p := NewPipeline(store, spam.NewTracker())

	for i := 0; i < 3; i++ {
		requests, verdict := p.OnMessage(msgAt("perfectly fine", base))
		if verdict.Matched || len(requests) != 0 {
			t.Fatalf("clean message matched on pass %d: %+v", i+1, verdict)
		}
	}
}
