package dispatch

import (
	"log"
	"sync"

	"github.com/warden/mod-bot/internal/actions"
	"github.com/warden/mod-bot/internal/model"
)

// batchSeparator joins coalesced messages inside one combined send.
const batchSeparator = "\n\n"

// batcher accumulates batch-flagged message contents per channel between
// flush ticks.
type batcher struct {
	mu      sync.Mutex
	pending map[model.Snowflake][]string
}

func newBatcher() *batcher {
	return &batcher{pending: make(map[model.Snowflake][]string)}
}

// add appends content to the channel's pending batch. Content that alone
// exceeds the platform message limit can never be sent and is dropped.
func (b *batcher) add(channel model.Snowflake, content string) {
	if len(content) > actions.MaxMessageLen {
		log.Printf("[dispatch] dropping oversized batched message for channel %s (%d bytes)", channel, len(content))
		return
	}
	b.mu.Lock()
	b.pending[channel] = append(b.pending[channel], content)
	b.mu.Unlock()
}

// drain takes all pending batches and packs each channel's contents into
// combined blobs that fit the platform message limit, preserving order.
func (b *batcher) drain() map[model.Snowflake][]string {
	b.mu.Lock()
	pending := b.pending
	b.pending = make(map[model.Snowflake][]string)
	b.mu.Unlock()

	out := make(map[model.Snowflake][]string, len(pending))
	for channel, contents := range pending {
		out[channel] = pack(contents)
	}
	return out
}

// pack greedily combines contents into blobs of at most MaxMessageLen
// bytes, separated by blank lines.
func pack(contents []string) []string {
	var blobs []string
	var current string
	for _, content := range contents {
		if current == "" {
			current = content
			continue
		}
		if len(current)+len(batchSeparator)+len(content) > actions.MaxMessageLen {
			blobs = append(blobs, current)
			current = content
			continue
		}
		current += batchSeparator + content
	}
	if current != "" {
		blobs = append(blobs, current)
	}
	return blobs
}
