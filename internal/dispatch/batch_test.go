package dispatch

import (
	"strings"
	"testing"

	"github.com/warden/mod-bot/internal/actions"
	"github.com/warden/mod-bot/internal/model"
)

func TestPack(t *testing.T) {
	t.Run("combines under limit", func(t *testing.T) {
		blobs := pack([]string{"one", "two", "three"})
		if len(blobs) != 1 {
			t.Fatalf("blobs = %d, want 1", len(blobs))
		}
		if blobs[0] != "one\n\ntwo\n\nthree" {
			t.Errorf("blob = %q", blobs[0])
		}
	})

	t.Run("splits at limit", func(t *testing.T) {
		big := strings.Repeat("a", 1500)
		blobs := pack([]string{big, big, big})
		if len(blobs) != 3 {
			t.Fatalf("blobs = %d, want 3", len(blobs))
		}
		for i, b := range blobs {
			if len(b) > actions.MaxMessageLen {
				t.Errorf("blob %d length %d exceeds limit", i, len(b))
			}
		}
	})

	t.Run("preserves order", func(t *testing.T) {
		// "first" + separator + 1990 bytes still fits one blob; "last"
		// does not.
		big := strings.Repeat("x", 1990)
		blobs := pack([]string{"first", big, "last"})
		if len(blobs) != 2 {
			t.Fatalf("blobs = %d, want 2", len(blobs))
		}
		if blobs[0] != "first\n\n"+big || blobs[1] != "last" {
			t.Errorf("order broken: %q ... %q", blobs[0][:10], blobs[1])
		}
	})

	t.Run("starts new blob when combining would overflow", func(t *testing.T) {
		big := strings.Repeat("x", 1995)
		blobs := pack([]string{"first", big, "last"})
		if len(blobs) != 3 {
			t.Fatalf("blobs = %d, want 3", len(blobs))
		}
		if blobs[0] != "first" || blobs[1] != big || blobs[2] != "last" {
			t.Errorf("order broken: %q ... %q", blobs[0], blobs[2])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if blobs := pack(nil); blobs != nil {
			t.Errorf("pack(nil) = %v, want nil", blobs)
		}
	})
}

func TestBatcher(t *testing.T) {
	b := newBatcher()
	b.add(model.Snowflake(1), "alpha")
	b.add(model.Snowflake(1), "beta")
	b.add(model.Snowflake(2), "gamma")

	// Oversized content can never be sent and must be dropped.
	b.add(model.Snowflake(1), strings.Repeat("z", actions.MaxMessageLen+1))

	drained := b.drain()
	if len(drained) != 2 {
		t.Fatalf("channels = %d, want 2", len(drained))
	}
	if got := drained[1]; len(got) != 1 || got[0] != "alpha\n\nbeta" {
		t.Errorf("channel 1 = %v", got)
	}
	if got := drained[2]; len(got) != 1 || got[0] != "gamma" {
		t.Errorf("channel 2 = %v", got)
	}

	// drain resets pending state.
	if again := b.drain(); len(again) != 0 {
		t.Errorf("second drain = %v, want empty", again)
	}
}
