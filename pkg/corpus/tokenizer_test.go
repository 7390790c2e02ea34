package corpus

import (
	"reflect"
	"strings"
	"testing"
)

func TestFilter(t *testing.T) {
	tok := NewTokenizer()

	testCases := []struct {
		name     string
		raw      string
		expected string
		keep     bool
	}{
		{name: "trailing period", raw: "Привет.", expected: "привет.", keep: true},
		{name: "hyphenated", raw: "при-вет", expected: "при-вет", keep: true},
		{name: "comma in the middle", raw: "при,вет", keep: false},
		{name: "latin only", raw: "hello", keep: false},
		{name: "mixed latin and cyrillic", raw: "hello-мир", expected: "hello-мир", keep: true},
		{name: "brackets and quotes stripped", raw: "«(слово)»", expected: "слово", keep: true},
		{name: "quoted with trailing comma", raw: `"слово",`, expected: "слово,", keep: true},
		{name: "only stripped characters", raw: "()[]", keep: false},
		{name: "two trailing marks", raw: "что?!", keep: false},
		{name: "trailing mark outside the set", raw: "цена%", keep: false},
		{name: "digit inside", raw: "в2ух", keep: false},
		{name: "leading disqualifier passes", raw: "1слово", expected: "1слово", keep: true},
		{name: "yo alone has no lowercase range letter", raw: "ё", keep: false},
		{name: "roman numeral counts as a letter", raw: "главаⅫ", expected: "главаⅻ", keep: true},
		{name: "uppercase is lowered", raw: "МОСКВА!", expected: "москва!", keep: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			word, ok := tok.Filter(tc.raw)
			if ok != tc.keep {
				t.Fatalf("Filter(%q) keep = %v, want %v (got %q)", tc.raw, ok, tc.keep, word)
			}
			if ok && word != tc.expected {
				t.Errorf("Filter(%q) = %q, want %q", tc.raw, word, tc.expected)
			}
		})
	}
}

func TestFilterLength(t *testing.T) {
	tok := NewTokenizer()

	long := strings.Repeat("а", 30)
	if _, ok := tok.Filter(long); ok {
		t.Errorf("expected a 30 character word to be rejected")
	}

	// Lengths are measured in bytes; each Cyrillic letter is two.
	if _, ok := tok.Filter(strings.Repeat("а", 14)); !ok {
		t.Errorf("expected a 28 byte word to be kept")
	}
	if _, ok := tok.Filter(strings.Repeat("а", 15)); ok {
		t.Errorf("expected a 30 byte word to be rejected")
	}

	tok = NewTokenizer(WithMaxTokenLen(64))
	if _, ok := tok.Filter(strings.Repeat("а", 20)); !ok {
		t.Errorf("expected a raised limit to keep a 40 byte word")
	}
}

func TestTokenize(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize([]string{"начало"}, "  Мама мыла раму, а hello (папа) при,вет\tспал.  ")
	expected := []string{"начало", "мама", "мыла", "раму,", "а", "папа", "спал."}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("expected %q, got %q", expected, tokens)
	}

	if tokens := tok.Tokenize(nil, "   "); len(tokens) != 0 {
		t.Errorf("expected no tokens from a blank line, got %q", tokens)
	}
}
