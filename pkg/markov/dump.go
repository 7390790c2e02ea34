package markov

import (
	"context"
	"fmt"
	"io"
)

// Dump writes every predecessor in store followed by one indented line per
// successor with its frequency.
func Dump(ctx context.Context, store Store, w io.Writer) error {
	return store.Walk(ctx, func(word string, next []Successor) error {
		if _, err := fmt.Fprintln(w, word); err != nil {
			return err
		}
		for _, choice := range next {
			if _, err := fmt.Fprintf(w, "  L__ %s (%d)\n", choice.Word, choice.Freq); err != nil {
				return err
			}
		}
		return nil
	})
}
