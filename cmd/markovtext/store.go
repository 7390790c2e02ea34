package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/CTAG07/markovtext/pkg/markov"
)

// openStore creates the pair-frequency store selected by cfg. The returned
// function releases it.
func openStore(cfg *StoreConfig, logger *slog.Logger) (markov.Store, func(), error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return markov.NewMemoryStore(), func() {}, nil
	case "sqlite":
		db, err := initDB(":memory:")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)

		if err = markov.SetupSchema(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to setup markov schema: %w", err)
		}
		s, err := markov.NewSQLStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("error creating sqlite store: %w", err)
		}
		s.SetLogger(logger)
		return s, func() {
			s.Close()
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
