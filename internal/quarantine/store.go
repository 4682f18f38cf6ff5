// Package quarantine provides escalating temporary mutes for repeat
// offenders, backed by Redis. Mute records are stored as simple key-value
// pairs with TTL-based expiry:
//
//	Key:   mute:<guild_id>:<user_id>
//	Value: <reason>
//	TTL:   mute duration
//
// A per-user offense counter with its own TTL drives the escalation tier.
package quarantine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warden/mod-bot/internal/metrics"
	"github.com/warden/mod-bot/internal/model"
)

const (
	// MutePrefix is the Redis key prefix for mute records.
	MutePrefix = "mute:"

	// OffensesPrefix is the Redis key prefix for offense counters.
	OffensesPrefix = "offenses:"

	// Escalating mute durations.
	Mute15Min  = 15 * time.Minute // 1st offense
	Mute1Hour  = 1 * time.Hour    // 2nd offense
	Mute24Hour = 24 * time.Hour   // 3rd+ offense

	// OffensesTTL is how long the offense counter lives in Redis. After
	// 24h without new offenses the counter resets to zero.
	OffensesTTL = 24 * time.Hour

	// AutoMuteThreshold is the number of filter trips within OffensesTTL
	// that triggers an automatic mute.
	AutoMuteThreshold = 3
)

// Store manages mute records in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a new quarantine store using the provided Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func muteKey(guildID, userID model.Snowflake) string {
	return MutePrefix + guildID.String() + ":" + userID.String()
}

func offenseKey(guildID, userID model.Snowflake) string {
	return OffensesPrefix + guildID.String() + ":" + userID.String()
}

// IsMuted checks whether a user is currently muted in a guild.
// Returns (isMuted, remaining, reason, error). Redis errors are returned so
// callers can decide how to handle them (the recommended policy is
// fail-open).
func (s *Store) IsMuted(ctx context.Context, guildID, userID model.Snowflake) (bool, time.Duration, string, error) {
	key := muteKey(guildID, userID)

	reason, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, 0, "", nil
	}
	if err != nil {
		return false, 0, "", err
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// The mute exists but the TTL is unreadable. Report muted with 0
		// remaining rather than swallowing the mute.
		return true, 0, reason, nil
	}

	return true, ttl, reason, nil
}

// Mute applies a mute with the given duration and reason. The mute
// automatically expires after the specified duration.
func (s *Store) Mute(ctx context.Context, guildID, userID model.Snowflake, duration time.Duration, reason string) error {
	return s.client.Set(ctx, muteKey(guildID, userID), reason, duration).Err()
}

// Unmute removes a mute immediately.
func (s *Store) Unmute(ctx context.Context, guildID, userID model.Snowflake) error {
	return s.client.Del(ctx, muteKey(guildID, userID)).Err()
}

// escalationDuration returns the mute duration for a given offense count.
func escalationDuration(offenseCount int) time.Duration {
	switch {
	case offenseCount <= 1:
		return Mute15Min
	case offenseCount == 2:
		return Mute1Hour
	default:
		return Mute24Hour
	}
}

// OffenseCount returns the current offense counter for a user. Returns 0
// if the key does not exist (no offenses recorded or counter expired).
func (s *Store) OffenseCount(ctx context.Context, guildID, userID model.Snowflake) (int, error) {
	val, err := s.client.Get(ctx, offenseKey(guildID, userID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// RecordOffense increments the offense counter for a user and, once the
// auto-mute threshold is reached, applies a mute whose duration escalates
// with the number of offenses past the threshold:
//
//	at threshold      -> 15 minutes
//	threshold + 1     -> 1 hour
//	threshold + 2 on  -> 24 hours
//
// The counter has a 24h TTL set on first increment, so it naturally expires
// when a user stops tripping filters. Returns (muted, duration, error).
func (s *Store) RecordOffense(ctx context.Context, guildID, userID model.Snowflake, reason string) (bool, time.Duration, error) {
	key := offenseKey(guildID, userID)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("quarantine: offense incr: %w", err)
	}

	// Set TTL only on first increment so the 24h window doesn't slide.
	if count == 1 {
		if err := s.client.Expire(ctx, key, OffensesTTL).Err(); err != nil {
			return false, 0, fmt.Errorf("quarantine: offense expire: %w", err)
		}
	}

	if count < AutoMuteThreshold {
		return false, 0, nil
	}

	tier := int(count) - AutoMuteThreshold + 1
	if tier > 3 {
		tier = 3
	}
	duration := escalationDuration(tier)
	if err := s.Mute(ctx, guildID, userID, duration, reason); err != nil {
		return false, 0, fmt.Errorf("quarantine: apply mute: %w", err)
	}
	metrics.QuarantinesTotal.WithLabelValues(strconv.Itoa(tier)).Inc()

	return true, duration, nil
}
