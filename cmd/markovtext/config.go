package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/markovtext/pkg/corpus"
	"github.com/CTAG07/markovtext/pkg/markov"
)

// ReaderConfig holds settings for encoding detection.
type ReaderConfig struct {
	SniffBytes      int `json:"sniff_bytes"`
	LegacyThreshold int `json:"legacy_threshold_pct"`
}

// TokenizerConfig holds settings for word filtering.
type TokenizerConfig struct {
	MaxTokenLength int `json:"max_token_length"`
}

// GeneratorConfig holds settings for text generation.
type GeneratorConfig struct {
	DefaultWords int `json:"default_words"`
	HistorySize  int `json:"history_size"`
	TailSteps    int `json:"tail_steps"`
}

// StoreConfig selects the pair-frequency store. Both backends live only for
// the duration of a run.
type StoreConfig struct {
	Backend string `json:"backend"` // "memory" or "sqlite"
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	LogLevel  string           `json:"log_level"`
	Reader    *ReaderConfig    `json:"reader_config"`
	Tokenizer *TokenizerConfig `json:"tokenizer_config"`
	Generator *GeneratorConfig `json:"generator_config"`
	Store     *StoreConfig     `json:"store_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Reader: &ReaderConfig{
			SniffBytes:      corpus.DefaultSniffSize,
			LegacyThreshold: corpus.DefaultLegacyThreshold,
		},
		Tokenizer: &TokenizerConfig{
			MaxTokenLength: corpus.DefaultMaxTokenLen,
		},
		Generator: &GeneratorConfig{
			DefaultWords: 100,
			HistorySize:  markov.DefaultHistorySize,
			TailSteps:    markov.DefaultTailSteps,
		},
		Store: &StoreConfig{
			Backend: "memory",
		},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path on
// top of the defaults. An empty path or a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A section set to null in the file falls back to its defaults.
	defaults := DefaultConfig()
	if config.Reader == nil {
		config.Reader = defaults.Reader
	}
	if config.Tokenizer == nil {
		config.Tokenizer = defaults.Tokenizer
	}
	if config.Generator == nil {
		config.Generator = defaults.Generator
	}
	if config.Store == nil {
		config.Store = defaults.Store
	}

	return config, config.Validate()
}

// Validate checks that every numeric setting is usable.
func (c *Config) Validate() error {
	if c.Reader.SniffBytes < 1 {
		return fmt.Errorf("reader_config.sniff_bytes must be positive, got %d", c.Reader.SniffBytes)
	}
	if c.Reader.LegacyThreshold < 0 || c.Reader.LegacyThreshold > 100 {
		return fmt.Errorf("reader_config.legacy_threshold_pct must be between 0 and 100, got %d", c.Reader.LegacyThreshold)
	}
	if c.Tokenizer.MaxTokenLength < 1 {
		return fmt.Errorf("tokenizer_config.max_token_length must be positive, got %d", c.Tokenizer.MaxTokenLength)
	}
	if c.Generator.DefaultWords < 2 {
		return fmt.Errorf("generator_config.default_words must be at least 2, got %d", c.Generator.DefaultWords)
	}
	if c.Generator.HistorySize < 1 {
		return fmt.Errorf("generator_config.history_size must be positive, got %d", c.Generator.HistorySize)
	}
	if c.Generator.TailSteps < 0 {
		return fmt.Errorf("generator_config.tail_steps must not be negative, got %d", c.Generator.TailSteps)
	}
	switch strings.ToLower(c.Store.Backend) {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("store_config.backend must be memory or sqlite, got %q", c.Store.Backend)
	}
	return nil
}

// logLevel maps the configured level name to a slog.Level.
func (c *Config) logLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
