package rules

import "testing"

func TestSkeletonize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain passthrough", "paypal", "paypal"},
		{"greek and ipa homoglyphs", "ρɑɣρɑl", "paypal"},
		{"cyrillic homoglyphs", "ѕраm", "spam"},
		{"mixed with plain", "join ѕраm now", "join spam now"},
		{"unmapped rune untouched", "日本語", "日本語"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Skeletonize(tt.input); got != tt.want {
				t.Errorf("Skeletonize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
