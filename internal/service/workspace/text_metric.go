package workspace

import "unicode"

// zeroWidthNoBreakSpace is the byte order mark some editors prepend to files.
// unicode.IsSpace does not cover it.
const zeroWidthNoBreakSpace = '\uFEFF'

// Count returns the number of word units in text: every rune that is not
// whitespace, and when countPunctuation is false, not punctuation or a
// symbol either (Unicode categories P* and S*). Each CJK ideograph, Latin
// letter or digit counts as one unit.
func Count(text string, countPunctuation bool) int {
	n := 0
	for _, r := range text {
		if unicode.IsSpace(r) || r == zeroWidthNoBreakSpace {
			continue
		}
		if !countPunctuation && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			continue
		}
		n++
	}
	return n
}
