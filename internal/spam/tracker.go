// Package spam implements the sliding-window rate tracker behind the
// engine's spam detection. Windows are keyed by (guild, user, kind) and
// shared across every concurrent message evaluation; access to a single
// key is serialized by its shard lock while distinct keys stay parallel.
package spam

import (
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/warden/mod-bot/internal/model"
)

// Kind is one rate-limited behavior.
type Kind string

const (
	Emoji      Kind = "emoji"
	Link       Kind = "link"
	Attachment Kind = "attachment"
	Spoiler    Kind = "spoiler"
	Mention    Kind = "mention"
	Duplicate  Kind = "duplicate"
)

// Kinds is the deterministic evaluation order for spam checks.
var Kinds = []Kind{Emoji, Link, Attachment, Spoiler, Mention, Duplicate}

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Threshold configures one kind: Count qualifying events within Interval
// trip the detector.
type Threshold struct {
	Count    int
	Interval time.Duration
}

type key struct {
	guild model.Snowflake
	user  model.Snowflake
	kind  Kind
}

// record is one timestamped window entry. fp is only meaningful for
// duplicate windows.
type record struct {
	at time.Time
	fp uint64
}

type window struct {
	records []record
}

// evict drops records that fell out of the interval. Records are
// append-ordered by time, so eviction trims a prefix.
func (w *window) evict(now time.Time, interval time.Duration) {
	cut := 0
	for cut < len(w.records) && now.Sub(w.records[cut].at) > interval {
		cut++
	}
	if cut > 0 {
		w.records = append(w.records[:0], w.records[cut:]...)
	}
}

// newest returns the timestamp of the most recent record.
func (w *window) newest() time.Time {
	if len(w.records) == 0 {
		return time.Time{}
	}
	return w.records[len(w.records)-1].at
}

const shardCount = 64

type shard struct {
	mu      sync.Mutex
	windows map[key]*window
}

// Tracker holds the sliding windows for every active (guild, user, kind)
// key, sharded to keep unrelated keys from contending.
type Tracker struct {
	shards [shardCount]shard
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.shards {
		t.shards[i].windows = make(map[key]*window)
	}
	return t
}

func (t *Tracker) shardFor(k key) *shard {
	var d xxhash.Digest
	d.WriteString(k.guild.String())
	d.WriteString("/")
	d.WriteString(k.user.String())
	d.WriteString("/")
	d.WriteString(string(k.kind))
	return &t.shards[d.Sum64()%shardCount]
}

// RecordAndCheck evicts stale records for the key, appends weight new
// records at now, and reports whether the window now holds at least
// th.Count records. A weight of zero only evicts and re-checks.
func (t *Tracker) RecordAndCheck(guild, user model.Snowflake, kind Kind, now time.Time, th Threshold, weight int) bool {
	k := key{guild: guild, user: user, kind: kind}
	s := t.shardFor(k)

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windows[k]
	if w == nil {
		w = &window{}
		s.windows[k] = w
	}

	w.evict(now, th.Interval)
	for i := 0; i < weight; i++ {
		w.records = append(w.records, record{at: now})
	}
	return len(w.records) >= th.Count
}

// RecordDuplicate evicts stale records for the user's duplicate window,
// appends a record carrying the message's content fingerprint, and reports
// whether at least th.Count records in the window now share that
// fingerprint. A message whose fingerprint matches nothing starts a new
// duplicate chain without tripping the check.
func (t *Tracker) RecordDuplicate(guild, user model.Snowflake, now time.Time, th Threshold, fp uint64) bool {
	k := key{guild: guild, user: user, kind: Duplicate}
	s := t.shardFor(k)

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.windows[k]
	if w == nil {
		w = &window{}
		s.windows[k] = w
	}

	w.evict(now, th.Interval)

	matching := 1 // the new record always matches itself
	for _, r := range w.records {
		if r.fp == fp {
			matching++
		}
	}
	w.records = append(w.records, record{at: now, fp: fp})

	return matching >= th.Count
}

// Reap drops windows whose newest record is older than maxIdle, bounding
// memory to recently active keys. Meant to be called periodically.
func (t *Tracker) Reap(now time.Time, maxIdle time.Duration) int {
	reaped := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for k, w := range s.windows {
			if now.Sub(w.newest()) > maxIdle {
				delete(s.windows, k)
				reaped++
			}
		}
		s.mu.Unlock()
	}
	return reaped
}

// ActiveKeys returns the number of tracked windows, for metrics.
func (t *Tracker) ActiveKeys() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.windows)
		s.mu.Unlock()
	}
	return n
}

// Fingerprint hashes message content for duplicate detection. Content is
// case-folded and runs of whitespace collapse to a single space before
// hashing, so trivial re-spacing does not defeat the check.
func Fingerprint(content string) uint64 {
	normalized := strings.Join(strings.Fields(strings.ToLower(content)), " ")
	return xxhash.Sum64String(normalized)
}
