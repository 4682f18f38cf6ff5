package quarantine

import (
	"testing"
	"time"
)

func TestEscalationDuration(t *testing.T) {
	tests := []struct {
		offense int
		want    time.Duration
	}{
		{0, Mute15Min},
		{1, Mute15Min},
		{2, Mute1Hour},
		{3, Mute24Hour},
		{10, Mute24Hour},
	}

	for _, tt := range tests {
		if got := escalationDuration(tt.offense); got != tt.want {
			t.Errorf("escalationDuration(%d) = %s, want %s", tt.offense, got, tt.want)
		}
	}
}

func TestKeys(t *testing.T) {
	if got := muteKey(1, 42); got != "mute:1:42" {
		t.Errorf("muteKey = %q", got)
	}
	if got := offenseKey(1, 42); got != "offenses:1:42" {
		t.Errorf("offenseKey = %q", got)
	}
}
