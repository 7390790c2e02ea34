package markov

// history is a fixed-capacity FIFO of recently generated words. Pushing onto
// a full history evicts the oldest word.
type history struct {
	buf  []string
	head int
	size int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{buf: make([]string, capacity)}
}

func (h *history) push(word string) {
	if h.size < len(h.buf) {
		h.buf[(h.head+h.size)%len(h.buf)] = word
		h.size++
		return
	}
	h.buf[h.head] = word
	h.head = (h.head + 1) % len(h.buf)
}

// count returns how many times word occurs in the window.
func (h *history) count(word string) int {
	var n int
	for i := 0; i < h.size; i++ {
		if h.buf[(h.head+i)%len(h.buf)] == word {
			n++
		}
	}
	return n
}

// words returns the window oldest first.
func (h *history) words() []string {
	out := make([]string, h.size)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}
