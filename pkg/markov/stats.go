package markov

// ModelStats holds aggregated statistics for a pair-frequency model.
type ModelStats struct {
	Entries        int // The number of unique predecessor words.
	Links          int // The number of unique predecessor->successor links.
	TotalFrequency int // The sum of frequencies of all links; the total number of observed pairs.
}
