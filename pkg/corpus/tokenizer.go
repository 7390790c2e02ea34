package corpus

import (
	"strings"
	"unicode"
)

// DefaultMaxTokenLen is the exclusive upper bound on a token's byte length.
const DefaultMaxTokenLen = 30

// stripped holds the characters removed from a word before it is filtered.
// They are deleted in place, never used as split boundaries.
const stripped = `()«»"[]<>`

// trailing holds the punctuation a token may end with.
const trailing = ".,?!:;)"

// Tokenizer splits decoded lines into lowercase Cyrillic word tokens.
type Tokenizer struct {
	maxLen  int
	remover *strings.Replacer
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithMaxTokenLen sets the exclusive upper bound on the byte length of a token.
// Default: 30
func WithMaxTokenLen(n int) TokenizerOption {
	return func(t *Tokenizer) {
		if n > 0 {
			t.maxLen = n
		}
	}
}

// NewTokenizer creates a Tokenizer with default settings, which can be
// overridden by providing one or more TokenizerOption functions.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	pairs := make([]string, 0, 2*len(stripped))
	for _, c := range stripped {
		pairs = append(pairs, string(c), "")
	}
	t := &Tokenizer{
		maxLen:  DefaultMaxTokenLen,
		remover: strings.NewReplacer(pairs...),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize appends every token accepted from line to dst and returns the
// extended slice.
func (t *Tokenizer) Tokenize(dst []string, line string) []string {
	for _, raw := range strings.Fields(line) {
		if word, ok := t.Filter(raw); ok {
			dst = append(dst, word)
		}
	}
	return dst
}

// Filter normalises a single whitespace-free word and reports whether it is
// a token.
//
// The word is lowercased and stripped of brackets and quotes. It is rejected
// when empty, too long, or free of Cyrillic lowercase letters. Otherwise idx
// is the byte offset of the first rune that is neither alphabetic nor '-'
// (0 when there is none), and the word is kept only when idx is 0 or when
// that rune is the last byte and one of the trailing punctuation marks. A
// disqualifying rune at offset 0 therefore passes.
func (t *Tokenizer) Filter(raw string) (string, bool) {
	word := t.remover.Replace(strings.ToLower(raw))

	if word == "" || len(word) >= t.maxLen || !HasCyrillicLower(word) {
		return "", false
	}

	idx := strings.IndexFunc(word, func(c rune) bool {
		return !isAlphabetic(c) && !IsCyrillicLower(c) && c != '-'
	})
	if idx < 0 {
		idx = 0
	}

	if idx == 0 {
		return word, true
	}
	if idx == len(word)-1 && strings.IndexByte(trailing, word[idx]) >= 0 {
		return word, true
	}
	return "", false
}

// isAlphabetic reports whether c has the Unicode Alphabetic property: letters,
// letter numbers such as Roman numerals, and Other_Alphabetic marks.
func isAlphabetic(c rune) bool {
	return unicode.In(c, unicode.L, unicode.Nl, unicode.Other_Alphabetic)
}

// IsCyrillicLower reports whether c is in the range а..я (U+0430–U+044F).
func IsCyrillicLower(c rune) bool {
	return c >= 'а' && c <= 'я'
}

// HasCyrillicLower reports whether s contains at least one rune in а..я.
func HasCyrillicLower(s string) bool {
	return strings.IndexFunc(s, IsCyrillicLower) >= 0
}
