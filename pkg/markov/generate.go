package markov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
)

// ErrEmptyPool is returned by Generate when there are no words to start from.
var ErrEmptyPool = errors.New("no words to generate from")

const (
	// DefaultHistorySize is the number of recent words checked for repetition.
	DefaultHistorySize = 20
	// DefaultTailSteps is the maximum number of words added after the main loop.
	DefaultTailSteps = 20
)

// restartAbove and tailStopAbove are repetition counts in the history window.
// In the main loop a current word seen more than restartAbove times is
// replaced by a random word; in the tail phase a current word seen more than
// tailStopAbove times ends generation.
const (
	restartAbove  = 1
	tailStopAbove = 2
)

// generateOptions is used by Generate to configure default options.
type generateOptions struct {
	historySize int
	tailSteps   int
	trace       io.Writer
	rng         *rand.Rand
}

// GenerateOption is a function that configures generation parameters.
type GenerateOption func(*generateOptions)

// WithHistorySize sets the size of the repetition window.
// Default: 20
func WithHistorySize(n int) GenerateOption {
	return func(o *generateOptions) { o.historySize = n }
}

// WithTailSteps sets how many extra words may be generated after the main
// loop while looking for a sentence end.
// Default: 20
func WithTailSteps(n int) GenerateOption {
	return func(o *generateOptions) { o.tailSteps = n }
}

// WithTrace writes a step-by-step trace of the walk to w: every chosen word
// followed by its draw in brackets, and "*" whenever the walk restarts.
func WithTrace(w io.Writer) GenerateOption {
	return func(o *generateOptions) { o.trace = w }
}

// WithRand sets the random source. By default every call to Generate uses a
// freshly seeded PCG source.
func WithRand(r *rand.Rand) GenerateOption {
	return func(o *generateOptions) { o.rng = r }
}

// Result is the outcome of a single Generate call.
type Result struct {
	Words    []string // Generated words in order, starting with the random initial word.
	Restarts int      // Times the walk jumped to a random word to escape a repetition.
	Misses   int      // Steps that produced nothing because the current word had no successors.
}

// Text renders the generated words separated by single spaces.
func (r *Result) Text() string {
	return strings.Join(r.Words, " ")
}

// Generator walks a pair-frequency model to produce text. The pool is the
// full token sequence the model was built from; random starts and restarts
// are drawn from it, so frequent words are proportionally more likely.
type Generator struct {
	store  Store
	pool   []string
	logger *slog.Logger
}

// NewGenerator creates a Generator over store that draws random words from pool.
func NewGenerator(store Store, pool []string) *Generator {
	return &Generator{
		store:  store,
		pool:   pool,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Generator. By default, all logs are discarded.
func (g *Generator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// Generate starts from a random word and samples n successors, forcing a
// random restart whenever the current word already appears more than once in
// the recent history. It then runs a tail phase of up to WithTailSteps more
// samples that stops at the first word ending in '.', or as soon as the
// current word appears more than twice in the history. A step whose current
// word has no successors adds nothing, so the result may hold fewer words
// than requested.
func (g *Generator) Generate(ctx context.Context, n int, opts ...GenerateOption) (*Result, error) {
	if len(g.pool) == 0 {
		return nil, ErrEmptyPool
	}

	options := &generateOptions{
		historySize: DefaultHistorySize,
		tailSteps:   DefaultTailSteps,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.rng == nil {
		options.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	w := g.newWalk(options)
	w.start()

	for i := 0; i < n; i++ {
		if err := w.step(ctx); err != nil {
			return nil, err
		}
	}
	mainWords := len(w.words)

	if err := w.tail(ctx); err != nil {
		return nil, err
	}

	g.logger.DebugContext(ctx, "Generation finished",
		slog.Int("requested", n),
		slog.Int("main_words", mainWords),
		slog.Int("tail_words", len(w.words)-mainWords),
		slog.Int("restarts", w.restarts),
		slog.Int("misses", w.misses),
	)

	return &Result{Words: w.words, Restarts: w.restarts, Misses: w.misses}, nil
}

// walk is the mutable state of a single generation.
type walk struct {
	store    Store
	pool     []string
	opts     *generateOptions
	cur      string
	history  *history
	words    []string
	restarts int
	misses   int
}

func (g *Generator) newWalk(options *generateOptions) *walk {
	return &walk{
		store:   g.store,
		pool:    g.pool,
		opts:    options,
		history: newHistory(options.historySize),
	}
}

func (w *walk) start() {
	w.cur = w.randomWord()
	w.words = append(w.words, w.cur)
	w.history.push(w.cur)
	w.tracef("\n\nDEBUG:\n\n%s\n", w.cur)
}

// step is one iteration of the main loop.
func (w *walk) step(ctx context.Context) error {
	if w.history.count(w.cur) > restartAbove {
		w.cur = w.randomWord()
		w.restarts++
		w.tracef("*  ")
	}

	next, ok, err := w.advance(ctx)
	if err != nil {
		return err
	}
	if ok {
		w.history.push(next)
	}
	return nil
}

// tail runs the bounded continuation after the main loop. It never forces a
// restart and does not record its words in the history.
func (w *walk) tail(ctx context.Context) error {
	for i := 0; i < w.opts.tailSteps; i++ {
		if w.history.count(w.cur) > tailStopAbove {
			return nil
		}

		next, ok, err := w.advance(ctx)
		if err != nil {
			return err
		}
		if ok && strings.HasSuffix(next, ".") {
			return nil
		}
	}
	return nil
}

// advance samples a successor of the current word. When the word has no
// successors nothing changes and ok is false.
func (w *walk) advance(ctx context.Context) (string, bool, error) {
	choices, total, err := w.store.Successors(ctx, w.cur)
	if err != nil {
		return "", false, fmt.Errorf("failed to get successors of '%s': %w", w.cur, err)
	}
	if len(choices) == 0 || total <= 0 {
		w.misses++
		return "", false, nil
	}

	draw := w.opts.rng.IntN(total)
	next := chooseNext(choices, draw)

	w.cur = next
	w.words = append(w.words, next)
	w.tracef("%s[%d]  ", next, draw)
	return next, true, nil
}

func (w *walk) randomWord() string {
	return w.pool[w.opts.rng.IntN(len(w.pool))]
}

func (w *walk) tracef(format string, args ...any) {
	if w.opts.trace != nil {
		_, _ = fmt.Fprintf(w.opts.trace, format, args...)
	}
}

// chooseNext returns the first choice whose running frequency sum reaches
// draw. The comparison is inclusive, so a draw of 0 always picks the first
// choice and every choice is slightly favoured over the one after it.
func chooseNext(choices []Successor, draw int) string {
	var sum int
	for _, choice := range choices {
		sum += choice.Freq
		if sum >= draw {
			return choice.Word
		}
	}
	return choices[len(choices)-1].Word
}
