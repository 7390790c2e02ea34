package markov

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// newModel builds a MemoryStore from explicit pairs.
func newModel(t *testing.T, pairs ...Pair) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	if err := s.AddPairs(context.Background(), pairs); err != nil {
		t.Fatalf("AddPairs failed: %v", err)
	}
	return s
}

func TestChooseNext(t *testing.T) {
	choices := []Successor{{Word: "a", Freq: 5}, {Word: "b", Freq: 5}}

	testCases := []struct {
		draw     int
		expected string
	}{
		{draw: 0, expected: "a"},
		{draw: 5, expected: "a"}, // the running sum reaching the draw is enough
		{draw: 6, expected: "b"},
		{draw: 9, expected: "b"},
	}
	for _, tc := range testCases {
		if got := chooseNext(choices, tc.draw); got != tc.expected {
			t.Errorf("chooseNext(draw=%d) = %q, want %q", tc.draw, got, tc.expected)
		}
	}
}

func TestWeightedSampling(t *testing.T) {
	ctx := context.Background()

	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			pairs := []Pair{{Prev: "p", Next: "x"}}
			for i := 0; i < 99; i++ {
				pairs = append(pairs, Pair{Prev: "p", Next: "y"})
			}
			if err := s.AddPairs(ctx, pairs); err != nil {
				t.Fatalf("AddPairs failed: %v", err)
			}

			w := NewGenerator(s, []string{"p"}).newWalk(&generateOptions{historySize: DefaultHistorySize, rng: seededRand()})

			const draws = 10000
			var ys int
			for i := 0; i < draws; i++ {
				w.cur = "p"
				next, ok, err := w.advance(ctx)
				if err != nil || !ok {
					t.Fatalf("advance() = %q, %v, %v", next, ok, err)
				}
				if next == "y" {
					ys++
				}
			}
			if ys <= draws/2 {
				t.Errorf("expected y in a strict majority of %d draws, got %d", draws, ys)
			}
		})
	}
}

func TestGenerateEmptyPool(t *testing.T) {
	_, err := NewGenerator(NewMemoryStore(), nil).Generate(context.Background(), 10)
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}
}

func TestGenerateCycle(t *testing.T) {
	s := newModel(t,
		Pair{Prev: "раз", Next: "два"},
		Pair{Prev: "два", Next: "три"},
		Pair{Prev: "три", Next: "раз"},
	)
	g := NewGenerator(s, []string{"раз"})

	res, err := g.Generate(context.Background(), 3, WithRand(seededRand()), WithTailSteps(5))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// No word is seen twice before its step in the main loop, and nothing
	// ends in '.', so the walk runs the full tail.
	expected := []string{"раз", "два", "три", "раз", "два", "три", "раз", "два", "три"}
	if !reflect.DeepEqual(res.Words, expected) {
		t.Errorf("expected %q, got %q", expected, res.Words)
	}
	if res.Text() != strings.Join(expected, " ") {
		t.Errorf("unexpected text %q", res.Text())
	}
	if res.Restarts != 0 || res.Misses != 0 {
		t.Errorf("expected no restarts or misses, got %+v", res)
	}
}

func TestGenerateModelMiss(t *testing.T) {
	g := NewGenerator(NewMemoryStore(), []string{"тупик"})

	res, err := g.Generate(context.Background(), 5, WithRand(seededRand()))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !reflect.DeepEqual(res.Words, []string{"тупик"}) {
		t.Errorf("expected only the initial word, got %q", res.Words)
	}
	if res.Misses != 5+DefaultTailSteps {
		t.Errorf("expected %d misses, got %d", 5+DefaultTailSteps, res.Misses)
	}
}

func TestGenerateForcedRestart(t *testing.T) {
	ctx := context.Background()
	s := newModel(t, Pair{Prev: "эхо", Next: "эхо"})
	g := NewGenerator(s, []string{"другое"})

	w := g.newWalk(&generateOptions{historySize: DefaultHistorySize, rng: seededRand()})
	w.cur = "эхо"
	for i := 0; i < 3; i++ {
		w.history.push("эхо")
	}

	// The pool word has no successors, so after the restart nothing is
	// sampled and the current word is whatever the pool produced.
	if err := w.step(ctx); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if w.cur != "другое" {
		t.Errorf("expected a restart to the pool word, current is %q", w.cur)
	}
	if w.restarts != 1 || w.misses != 1 {
		t.Errorf("expected one restart and one miss, got %d and %d", w.restarts, w.misses)
	}
	if len(w.words) != 0 {
		t.Errorf("expected nothing appended, got %q", w.words)
	}
}

func TestGenerateNoRestartBelowThreshold(t *testing.T) {
	ctx := context.Background()
	s := newModel(t, Pair{Prev: "эхо", Next: "звук"})
	g := NewGenerator(s, []string{"другое"})

	w := g.newWalk(&generateOptions{historySize: DefaultHistorySize, rng: seededRand()})
	w.cur = "эхо"
	w.history.push("эхо")

	if err := w.step(ctx); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if w.cur != "звук" || w.restarts != 0 {
		t.Errorf("expected a normal step to звук, got %q with %d restarts", w.cur, w.restarts)
	}
	if got := w.history.words(); !reflect.DeepEqual(got, []string{"эхо", "звук"}) {
		t.Errorf("expected the sampled word in the history, got %q", got)
	}
}

func TestTailStopsAtPeriod(t *testing.T) {
	s := newModel(t,
		Pair{Prev: "начало", Next: "конец."},
		Pair{Prev: "конец.", Next: "начало"},
	)
	g := NewGenerator(s, []string{"начало"})

	res, err := g.Generate(context.Background(), 0, WithRand(seededRand()))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	expected := []string{"начало", "конец."}
	if !reflect.DeepEqual(res.Words, expected) {
		t.Errorf("expected %q, got %q", expected, res.Words)
	}
}

func TestTailStopsOnRepetition(t *testing.T) {
	ctx := context.Background()
	s := newModel(t, Pair{Prev: "снова", Next: "опять"})
	g := NewGenerator(s, []string{"снова"})

	w := g.newWalk(&generateOptions{historySize: DefaultHistorySize, tailSteps: DefaultTailSteps, rng: seededRand()})
	w.cur = "снова"
	for i := 0; i < 3; i++ {
		w.history.push("снова")
	}

	if err := w.tail(ctx); err != nil {
		t.Fatalf("tail failed: %v", err)
	}
	if len(w.words) != 0 || w.cur != "снова" {
		t.Errorf("expected the tail to stop immediately, got %q (current %q)", w.words, w.cur)
	}
}

func TestTailContinuesPastMisses(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(NewMemoryStore(), []string{"тупик"})

	w := g.newWalk(&generateOptions{historySize: DefaultHistorySize, tailSteps: 7, rng: seededRand()})
	w.cur = "тупик"

	if err := w.tail(ctx); err != nil {
		t.Fatalf("tail failed: %v", err)
	}
	if w.misses != 7 {
		t.Errorf("expected the tail to run all 7 steps, got %d misses", w.misses)
	}
}

func TestGenerateTrace(t *testing.T) {
	s := newModel(t, Pair{Prev: "да", Next: "нет."})
	g := NewGenerator(s, []string{"да"})

	var buf bytes.Buffer
	if _, err := g.Generate(context.Background(), 1, WithRand(seededRand()), WithTrace(&buf)); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	trace := buf.String()
	if !strings.Contains(trace, "DEBUG:\n\nда\n") {
		t.Errorf("expected the initial word in the trace, got %q", trace)
	}
	if !strings.Contains(trace, "нет.[0]  ") {
		t.Errorf("expected the sampled word with its draw, got %q", trace)
	}
}

func TestGenerateWithSQLStore(t *testing.T) {
	ctx := context.Background()
	_, s := setupTestDB(t)

	tokens := strings.Fields("мама мыла раму. папа мыл раму. мама мыла окно. мама")
	if err := Build(ctx, s, tokens); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := NewGenerator(s, tokens).Generate(ctx, 10, WithRand(seededRand()))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(res.Words) < 2 {
		t.Fatalf("expected the walk to advance, got %q", res.Words)
	}

	// Every consecutive pair in the output must either be a model link or a restart.
	known := make(map[Pair]bool)
	for i := 0; i+1 < len(tokens); i++ {
		known[Pair{Prev: tokens[i], Next: tokens[i+1]}] = true
	}
	var unknown int
	for i := 0; i+1 < len(res.Words); i++ {
		if !known[Pair{Prev: res.Words[i], Next: res.Words[i+1]}] {
			unknown++
		}
	}
	if unknown > res.Restarts {
		t.Errorf("found %d transitions outside the model with only %d restarts: %q", unknown, res.Restarts, res.Words)
	}
}

func BenchmarkGenerate(b *testing.B) {
	corpus := createBenchmarkCorpus()
	ctx := context.Background()

	stores := map[string]Store{"Memory": NewMemoryStore()}
	_, s := setupTestDB(b)
	stores["SQLite"] = s

	for name, store := range stores {
		if err := Build(ctx, store, corpus); err != nil {
			b.Fatalf("Build() setup for benchmark failed: %v", err)
		}
		g := NewGenerator(store, corpus)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				res, err := g.Generate(ctx, 100)
				if err != nil {
					b.Fatalf("Generate() failed: %v", err)
				}
				b.SetBytes(int64(len(res.Text())))
			}
		})
	}
}
