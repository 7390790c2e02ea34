package markov

import "context"

// MemoryStore is a Store backed by nested maps. Successors are returned in
// Go's map iteration order, which is deliberately unspecified.
type MemoryStore struct {
	chains map[string]map[string]int
	stats  ModelStats
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chains: make(map[string]map[string]int)}
}

// AddPairs implements Store.
func (m *MemoryStore) AddPairs(_ context.Context, pairs []Pair) error {
	for _, p := range pairs {
		next, ok := m.chains[p.Prev]
		if !ok {
			next = make(map[string]int)
			m.chains[p.Prev] = next
			m.stats.Entries++
		}
		if next[p.Next] == 0 {
			m.stats.Links++
		}
		next[p.Next]++
		m.stats.TotalFrequency++
	}
	return nil
}

// Successors implements Store.
func (m *MemoryStore) Successors(_ context.Context, word string) ([]Successor, int, error) {
	next, ok := m.chains[word]
	if !ok {
		return nil, 0, nil
	}
	choices := make([]Successor, 0, len(next))
	var total int
	for w, freq := range next {
		choices = append(choices, Successor{Word: w, Freq: freq})
		total += freq
	}
	return choices, total, nil
}

// Stats implements Store.
func (m *MemoryStore) Stats(_ context.Context) (ModelStats, error) {
	return m.stats, nil
}

// Walk implements Store.
func (m *MemoryStore) Walk(ctx context.Context, fn func(word string, next []Successor) error) error {
	for word := range m.chains {
		choices, _, _ := m.Successors(ctx, word)
		if err := fn(word, choices); err != nil {
			return err
		}
	}
	return nil
}
