/*
Package markov builds a first-order Markov chain over word pairs and walks it
to produce pseudo-random text.

The pair-frequency model lives behind the Store interface. MemoryStore keeps
it in nested maps; SQLStore keeps it in a SQLite database using prepared
statements and batched, transactional inserts. Build fills either store from
an ordered token sequence, and Generator walks the chain with weighted
sampling, a bounded repetition history and a short tail phase that tries to
finish on a sentence-ending word.
*/
package markov
