package rules

import "unicode"

// zalgoRunThreshold is the longest run of combining marks that still
// counts as legitimate accented text. Stacking more marks than this on a
// single base character reads as diacritic obfuscation.
const zalgoRunThreshold = 2

// combining matches the Unicode combining-mark categories.
var combining = []*unicode.RangeTable{unicode.Mn, unicode.Mc, unicode.Me}

// isZalgo reports whether text contains a base character followed by a run
// of more than zalgoRunThreshold combining marks.
func isZalgo(text string) bool {
	run := 0
	seenBase := false
	for _, r := range text {
		if unicode.IsOneOf(combining, r) {
			if !seenBase {
				continue
			}
			run++
			if run > zalgoRunThreshold {
				return true
			}
		} else {
			seenBase = true
			run = 0
		}
	}
	return false
}
