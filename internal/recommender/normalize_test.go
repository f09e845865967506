package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"punctuation only", "!!! ... ??? -- ()", ""},
		{"stop words and short tokens", "it is a to be", ""},
		{"lowercases and strips punctuation", "The Great Wizard's Journey!", "great wizard journey"},
		{"folds accents", "Café crème brûlée", "cafe creme brulee"},
		{"drops non-ascii remainders", "naïve “quoted” text…", "naive quoted text"},
		{"digits inside words", "abc123def 2024 r2d2", "abcdef"},
		{"collapses whitespace", "  alpha\t\tbeta\n\ngamma  ", "alpha beta gamma"},
		{"compatibility capitals fold to lowercase", "ᴬbc", "abc"},
		{"punctuation splits words", "night-time,story", "night time story"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"The Great Wizard's Journey!",
		"Café crème brûlée, 1999 edition",
		"ᴬBC ﬁne ½ price",
		"A tale of two cities -- it was the best of times",
		"x1y2z3 abc",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeNullable(t *testing.T) {
	assert.Equal(t, "", NormalizeNullable(nil))

	text := "Magic and Dragons"
	assert.Equal(t, "magic dragons", NormalizeNullable(&text))
}
