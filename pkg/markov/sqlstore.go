package markov

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema initializes the tables used by SQLStore in the provided
// database. It is idempotent and safe to call on an already-initialized
// database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS markov_vocabulary (
    token_id INTEGER PRIMARY KEY,
    token_text TEXT NOT NULL UNIQUE
);
`
		schemaChains = `
CREATE TABLE IF NOT EXISTS markov_chains (
    prefix_id INTEGER NOT NULL,
    next_token_id INTEGER NOT NULL,
    frequency  INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (prefix_id, next_token_id)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaVocab); err != nil {
		return fmt.Errorf("could not create vocabulary schema: %w", err)
	}

	if _, err = tx.Exec(schemaChains); err != nil {
		return fmt.Errorf("could not create chains schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// SQLStore is a Store backed by a SQLite database. Words are interned in a
// vocabulary table and chain links reference them by ID.
//
// For an in-memory database the caller must limit the pool to a single
// connection (db.SetMaxOpenConns(1)), otherwise every connection sees its own
// empty database.
type SQLStore struct {
	db               *sql.DB
	vocab            map[string]int
	stmtInsertVocab  *sql.Stmt
	stmtGetTokenID   *sql.Stmt
	stmtGetChain     *sql.Stmt
	stmtCountEntries *sql.Stmt
	stmtCountLinks   *sql.Stmt
	stmtSumFreq      *sql.Stmt
	stmtWalk         *sql.Stmt
	logger           *slog.Logger
}

// NewSQLStore creates a SQLStore on a database already prepared with
// SetupSchema. It pre-compiles all SQL statements, returning an error if any
// preparation fails.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	stmtInsertVocab, err := db.Prepare(`INSERT INTO markov_vocabulary (token_text) VALUES (?) ON CONFLICT(token_text) DO UPDATE SET token_text=excluded.token_text RETURNING token_id;`)
	if err != nil {
		return nil, err
	}

	stmtGetTokenID, err := db.Prepare(`SELECT token_id FROM markov_vocabulary WHERE token_text = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetChain, err := db.Prepare(`SELECT v.token_text, c.frequency FROM markov_chains c JOIN markov_vocabulary v ON v.token_id = c.next_token_id WHERE c.prefix_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtCountEntries, err := db.Prepare(`SELECT COUNT(DISTINCT prefix_id) FROM markov_chains;`)
	if err != nil {
		return nil, err
	}

	stmtCountLinks, err := db.Prepare(`SELECT COUNT(*) FROM markov_chains;`)
	if err != nil {
		return nil, err
	}

	stmtSumFreq, err := db.Prepare(`SELECT coalesce(SUM(frequency), 0) FROM markov_chains;`)
	if err != nil {
		return nil, err
	}

	stmtWalk, err := db.Prepare(`
		SELECT p.token_text, v.token_text, c.frequency
		FROM markov_chains c
		JOIN markov_vocabulary p ON p.token_id = c.prefix_id
		JOIN markov_vocabulary v ON v.token_id = c.next_token_id
		ORDER BY c.prefix_id;
	`)
	if err != nil {
		return nil, err
	}

	return &SQLStore{
		db:               db,
		vocab:            make(map[string]int),
		stmtInsertVocab:  stmtInsertVocab,
		stmtGetTokenID:   stmtGetTokenID,
		stmtGetChain:     stmtGetChain,
		stmtCountEntries: stmtCountEntries,
		stmtCountLinks:   stmtCountLinks,
		stmtSumFreq:      stmtSumFreq,
		stmtWalk:         stmtWalk,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the store. It does not
// close the database.
func (s *SQLStore) Close() {
	_ = s.stmtInsertVocab.Close()
	_ = s.stmtGetTokenID.Close()
	_ = s.stmtGetChain.Close()
	_ = s.stmtCountEntries.Close()
	_ = s.stmtCountLinks.Close()
	_ = s.stmtSumFreq.Close()
	_ = s.stmtWalk.Close()
}

// SetLogger sets the logger for the store. By default, all logs are discarded.
func (s *SQLStore) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// AddPairs implements Store. The whole batch is applied in a single
// transaction.
func (s *SQLStore) AddPairs(ctx context.Context, pairs []Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsertVocab := tx.StmtContext(ctx, s.stmtInsertVocab)
	stmtInsertLink, err := tx.PrepareContext(ctx, `INSERT INTO markov_chains (prefix_id, next_token_id, frequency) VALUES (?, ?, 1) ON CONFLICT(prefix_id, next_token_id) DO UPDATE SET frequency = frequency + 1;`)
	if err != nil {
		return fmt.Errorf("failed to prepare chain insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsertLink)

	// IDs interned in this transaction only become visible to the store once it commits.
	added := make(map[string]int)
	tokenID := func(word string) (int, error) {
		if id, ok := s.vocab[word]; ok {
			return id, nil
		}
		if id, ok := added[word]; ok {
			return id, nil
		}
		var id int
		if err := stmtInsertVocab.QueryRowContext(ctx, word).Scan(&id); err != nil {
			return 0, fmt.Errorf("sql insert vocabulary error for token '%s': %w", word, err)
		}
		added[word] = id
		return id, nil
	}

	for _, p := range pairs {
		prevID, err := tokenID(p.Prev)
		if err != nil {
			return err
		}
		nextID, err := tokenID(p.Next)
		if err != nil {
			return err
		}
		if _, err = stmtInsertLink.ExecContext(ctx, prevID, nextID); err != nil {
			return fmt.Errorf("failed during batch insert of chain link (%d -> %d): %w", prevID, nextID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	for word, id := range added {
		s.vocab[word] = id
	}

	s.logger.DebugContext(ctx, "Pair batch committed",
		slog.Int("pairs", len(pairs)),
		slog.Int("new_tokens", len(added)),
		slog.Int("vocabulary_size", len(s.vocab)),
	)
	return nil
}

// Successors implements Store.
func (s *SQLStore) Successors(ctx context.Context, word string) ([]Successor, int, error) {
	var prefixID int
	err := s.stmtGetTokenID.QueryRowContext(ctx, word).Scan(&prefixID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// This word has never been seen, so there are no possible successors.
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("could not get token ID for '%s': %w", word, err)
	}

	rows, err := s.stmtGetChain.QueryContext(ctx, prefixID)
	if err != nil {
		return nil, 0, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var choices []Successor
	var totalFreq int
	for rows.Next() {
		var choice Successor
		if err = rows.Scan(&choice.Word, &choice.Freq); err != nil {
			return nil, 0, err
		}
		choices = append(choices, choice)
		totalFreq += choice.Freq
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return choices, totalFreq, nil
}

// Stats implements Store.
func (s *SQLStore) Stats(ctx context.Context) (ModelStats, error) {
	var stats ModelStats
	if err := s.stmtCountEntries.QueryRowContext(ctx).Scan(&stats.Entries); err != nil {
		return ModelStats{}, err
	}
	if err := s.stmtCountLinks.QueryRowContext(ctx).Scan(&stats.Links); err != nil {
		return ModelStats{}, err
	}
	if err := s.stmtSumFreq.QueryRowContext(ctx).Scan(&stats.TotalFrequency); err != nil {
		return ModelStats{}, err
	}
	return stats, nil
}

// Walk implements Store. All rows are read before fn is called, so fn may
// use the store itself.
func (s *SQLStore) Walk(ctx context.Context, fn func(word string, next []Successor) error) error {
	rows, err := s.stmtWalk.QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("could not query chains: %w", err)
	}

	var words []string
	grouped := make(map[string][]Successor)
	for rows.Next() {
		var prev string
		var choice Successor
		if err := rows.Scan(&prev, &choice.Word, &choice.Freq); err != nil {
			_ = rows.Close()
			return err
		}
		if _, ok := grouped[prev]; !ok {
			words = append(words, prev)
		}
		grouped[prev] = append(grouped[prev], choice)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, word := range words {
		if err := fn(word, grouped[word]); err != nil {
			return err
		}
	}
	return nil
}
