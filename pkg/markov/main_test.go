package markov

import (
	"database/sql"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"

	_ "modernc.org/sqlite"
)

// setupTestDB creates a new SQLite database in a temporary directory and a
// SQLStore on top of it. It uses t.Cleanup to ensure resources are released.
func setupTestDB(t testing.TB) (*sql.DB, *SQLStore) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbFile+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewSQLStore(db)
	if err != nil {
		t.Fatalf("NewSQLStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// testStores returns one empty instance of every Store implementation.
func testStores(t testing.TB) map[string]Store {
	_, s := setupTestDB(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": s,
	}
}

// seededRand returns a deterministic random source for tests.
func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 42))
}

var (
	benchmarkCorpus []string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus builds a synthetic token sequence with a skewed word
// distribution, so that some predecessors have many successors.
func createBenchmarkCorpus() []string {
	corpusOnce.Do(func() {
		const vocabSize = 2000
		const corpusSize = 50000

		letters := []rune("абвгдежзийклмнопрстуфхцчшщъыьэюя")
		vocab := make([]string, vocabSize)
		r := rand.New(rand.NewPCG(1, 2))
		for i := range vocab {
			word := make([]rune, 3+r.IntN(6))
			for j := range word {
				word[j] = letters[r.IntN(len(letters))]
			}
			if i%7 == 0 {
				word = append(word, '.')
			}
			vocab[i] = string(word)
		}

		benchmarkCorpus = make([]string, corpusSize)
		for i := range benchmarkCorpus {
			// Squaring the draw favours low indices.
			f := r.Float64()
			benchmarkCorpus[i] = vocab[int(f*f*vocabSize)]
		}
	})
	return benchmarkCorpus
}
