package rules

import "testing"

func TestIsZalgo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain ascii", "hello world", false},
		{"empty", "", false},
		{"accented french", "déjà vu, garçon", false},
		{"two stacked marks", "é̂", false},
		{"three stacked marks", "é̂̃", true},
		{"zalgo mid sentence", "he comes h́̿̂e̚͠ͅ", true},
		{"leading marks no base", "́̂̃", false},
		{"spacing combining marks", "காெேை", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isZalgo(tt.input); got != tt.want {
				t.Errorf("isZalgo(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestZalgoRule(t *testing.T) {
	r := Zalgo{}
	reason, matched := r.Match(textMsg("h́̿̂͠i"))
	if !matched {
		t.Fatal("expected zalgo content to match")
	}
	if reason != "contains zalgo" {
		t.Errorf("reason = %q, want %q", reason, "contains zalgo")
	}
}
