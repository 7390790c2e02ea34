package markov

import "context"

// Pair is one observed transition from Prev to Next.
type Pair struct {
	Prev string
	Next string
}

// Successor is a word observed after a given predecessor together with the
// number of times that transition was seen.
type Successor struct {
	Word string
	Freq int
}

// Store holds a pair-frequency model: for every predecessor word, the words
// that followed it and how often. Counts are always positive, and a word that
// was never followed by anything has no entry at all.
type Store interface {
	// AddPairs increments the count of every pair by one.
	AddPairs(ctx context.Context, pairs []Pair) error
	// Successors returns the successors of word in no particular order and
	// the sum of their frequencies. An unknown word yields a nil slice and 0.
	Successors(ctx context.Context, word string) ([]Successor, int, error)
	// Stats returns aggregate counts for the model.
	Stats(ctx context.Context) (ModelStats, error)
	// Walk calls fn once for every predecessor with all of its successors.
	Walk(ctx context.Context, fn func(word string, next []Successor) error) error
}
