package markov

import (
	"reflect"
	"testing"
)

func TestHistory(t *testing.T) {
	h := newHistory(3)

	if h.count("a") != 0 || len(h.words()) != 0 {
		t.Fatal("expected a new history to be empty")
	}

	h.push("a")
	h.push("b")
	h.push("a")
	if got := h.count("a"); got != 2 {
		t.Errorf("expected a twice, got %d", got)
	}

	// A fourth push evicts the oldest word.
	h.push("c")
	if got := h.words(); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("expected [b a c], got %q", got)
	}
	if got := h.count("a"); got != 1 {
		t.Errorf("expected a once after eviction, got %d", got)
	}

	for _, w := range []string{"d", "e", "f", "g"} {
		h.push(w)
	}
	if got := h.words(); !reflect.DeepEqual(got, []string{"e", "f", "g"}) {
		t.Errorf("expected [e f g], got %q", got)
	}
}

func TestHistoryDefaultWindow(t *testing.T) {
	h := newHistory(DefaultHistorySize)
	for i := 0; i < 25; i++ {
		h.push("слово")
	}
	if got := h.count("слово"); got != DefaultHistorySize {
		t.Errorf("expected the window to hold %d words, got %d", DefaultHistorySize, got)
	}

	if h := newHistory(0); len(h.buf) != 1 {
		t.Errorf("expected a non-positive capacity to be raised to 1, got %d", len(h.buf))
	}
}
