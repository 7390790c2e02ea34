package markov

import (
	"context"
	"fmt"
)

// pairBatchSize determines how many pairs are buffered in memory before being handed to the store in a single batch.
const pairBatchSize = 1000

// Build scans tokens in overlapping pairs and adds every pair to store. The
// sequence is treated as one continuous stream; a sequence shorter than two
// tokens adds nothing.
func Build(ctx context.Context, store Store, tokens []string) error {
	batch := make([]Pair, 0, pairBatchSize)

	for i := 0; i+1 < len(tokens); i++ {
		batch = append(batch, Pair{Prev: tokens[i], Next: tokens[i+1]})
		if len(batch) < pairBatchSize {
			continue
		}
		if err := store.AddPairs(ctx, batch); err != nil {
			return fmt.Errorf("failed to add pairs ending at token %d: %w", i+1, err)
		}
		batch = batch[:0]
	}

	if err := store.AddPairs(ctx, batch); err != nil {
		return fmt.Errorf("failed to add final pairs: %w", err)
	}
	return nil
}
