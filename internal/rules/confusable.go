package rules

import (
	_ "embed"
	"strconv"
	"strings"
	"sync"
)

//go:embed confusable_data.txt
var confusableData string

var (
	confusableOnce sync.Once
	confusableMap  map[rune]string
)

// confusables returns the homoglyph mapping table, parsed once from the
// embedded data file. Lines are `<hex> ; <hex> [<hex> ...]`; `#` starts a
// comment. Malformed lines are skipped.
func confusables() map[rune]string {
	confusableOnce.Do(func() {
		confusableMap = make(map[rune]string)
		for _, line := range strings.Split(confusableData, "\n") {
			if i := strings.Index(line, "#"); i >= 0 {
				line = line[:i]
			}
			parts := strings.SplitN(line, ";", 2)
			if len(parts) != 2 {
				continue
			}

			from, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 16, 32)
			if err != nil {
				continue
			}

			var to strings.Builder
			ok := true
			for _, field := range strings.Fields(parts[1]) {
				cp, err := strconv.ParseUint(field, 16, 32)
				if err != nil {
					ok = false
					break
				}
				to.WriteRune(rune(cp))
			}
			if !ok || to.Len() == 0 {
				continue
			}

			confusableMap[rune(from)] = to.String()
		}
	})
	return confusableMap
}

// Skeletonize folds homoglyphs in s to their plain-ASCII skeletons, so
// obfuscated text like `ρɑɣρɑl` compares equal to `paypal`. Runes without
// a mapping pass through unchanged.
func Skeletonize(s string) string {
	table := confusables()

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if to, ok := table[r]; ok {
			b.WriteString(to)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
