package config

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/warden/mod-bot/internal/metrics"
)

// Source produces a complete configuration snapshot. Implementations:
// DirSource (YAML files on disk) and PGSource (Postgres-backed).
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Store holds the currently served snapshot behind an atomic pointer.
// Readers always observe either the old or the new complete snapshot,
// never a partial one.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store serving the given initial snapshot.
func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Current returns the snapshot in effect. The result is immutable.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace swaps in a new snapshot atomically.
func (s *Store) Replace(snapshot *Snapshot) {
	s.current.Store(snapshot)
}

// StartReload re-loads the source on the given interval and swaps the
// snapshot in whole. A failed load keeps the previous snapshot serving.
// Blocks until ctx is done.
func StartReload(ctx context.Context, store *Store, source Source, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[config] reload loop stopped")
			return
		case <-ticker.C:
			snapshot, err := source.Load(ctx)
			if err != nil {
				metrics.ConfigReloadsTotal.WithLabelValues("error").Inc()
				log.Printf("[config] reload failed, keeping previous snapshot: %v", err)
				continue
			}
			store.Replace(snapshot)
			metrics.ConfigReloadsTotal.WithLabelValues("ok").Inc()
			log.Printf("[config] reloaded: %d guild(s)", len(snapshot.Guilds))
		}
	}
}
