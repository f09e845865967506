// Package recommender builds and queries the content-based book recommendation
// model: text normalization, TF-IDF features, pairwise cosine similarity, the
// title index and top-N ranking.
package recommender

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// asciiPunctuation is the set of characters replaced by a space before tokenization.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// minTokenLen is the shortest token kept by Normalize.
const minTokenLen = 3

// Normalize converts free text into a canonical space-separated token string.
//
// The text is lowercased and accent-folded to ASCII, punctuation becomes
// whitespace, digits are deleted, and the remaining words are filtered
// against the NLTK English stop-word list and a minimum length. The result
// is "" when nothing survives. Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := foldASCII(strings.ToLower(raw))

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'A' && c <= 'Z':
			// NFKD can yield capitals from lowercase input, e.g. U+1D2C
			b.WriteByte(c + ('a' - 'A'))
		case c >= '0' && c <= '9':
			// digits are removed outright, they do not split words
		case strings.IndexByte(asciiPunctuation, c) >= 0:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}

	words := strings.FieldsFunc(b.String(), isSpace)
	kept := words[:0]
	for _, w := range words {
		if len(w) < minTokenLen {
			continue
		}
		if _, stop := nltkEnglish[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// NormalizeNullable normalizes an optional description. A nil value yields "".
func NormalizeNullable(raw *string) string {
	if raw == nil {
		return ""
	}
	return Normalize(*raw)
}

// foldASCII applies NFKD decomposition and drops every non-ASCII rune, so
// "café" becomes "cafe" and "’" disappears.
func foldASCII(s string) string {
	if isASCII(s) {
		return s
	}
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// isSpace matches the ASCII separators recognized by a Python str.split(),
// which include the file/group/record/unit separators 0x1c-0x1f.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x1c, 0x1d, 0x1e, 0x1f:
		return true
	}
	return false
}
