package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenRunes drops single-character tokens, like the default
// word pattern of common count vectorizers.
const minTokenRunes = 2

// Tokenize splits lower-cased text on every rune that is not a letter or a
// digit and drops tokens shorter than two runes and English stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minTokenRunes {
			continue
		}
		if IsStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
