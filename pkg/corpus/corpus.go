package corpus

import (
	"errors"
	"io"
	"log/slog"
)

// FileReport describes what a single input file contributed to a Corpus.
type FileReport struct {
	Path     string
	Encoding Encoding
	Lines    int
	Tokens   int
	Err      error // nil unless the file was skipped
}

// Corpus is the ordered token sequence of every input file, concatenated in
// file-then-line order. It is built once and then only read.
type Corpus struct {
	Tokens []string
	Files  []FileReport
}

// Len returns the number of tokens in the corpus.
func (c *Corpus) Len() int {
	return len(c.Tokens)
}

// Loader reads files through a Resolver and feeds their lines to a Tokenizer.
type Loader struct {
	resolver  *Resolver
	tokenizer *Tokenizer
	logger    *slog.Logger
}

// NewLoader creates a Loader. Nil arguments are replaced with defaults.
func NewLoader(resolver *Resolver, tokenizer *Tokenizer) *Loader {
	if resolver == nil {
		resolver = NewResolver()
	}
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	return &Loader{
		resolver:  resolver,
		tokenizer: tokenizer,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Loader. By default, all logs are discarded.
func (l *Loader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Load reads paths in order and returns the resulting Corpus. A file that
// cannot be read or decoded contributes no tokens and does not stop the
// remaining files from being processed.
func (l *Loader) Load(paths []string) *Corpus {
	c := &Corpus{Files: make([]FileReport, 0, len(paths))}

	for _, path := range paths {
		report := FileReport{Path: path}

		lines, enc, err := l.resolver.ReadLines(path)
		report.Encoding = enc
		if err != nil {
			report.Err = err
			if errors.Is(err, ErrUnknownEncoding) {
				l.logger.Debug("Skipping file with unrecognised encoding", slog.String("path", path))
			} else {
				l.logger.Warn("Skipping unreadable file", slog.String("path", path), slog.Any("error", err))
			}
			c.Files = append(c.Files, report)
			continue
		}

		before := len(c.Tokens)
		for _, line := range lines {
			c.Tokens = l.tokenizer.Tokenize(c.Tokens, line)
		}
		report.Lines = len(lines)
		report.Tokens = len(c.Tokens) - before

		l.logger.Debug("File tokenized",
			slog.String("path", path),
			slog.String("encoding", enc.String()),
			slog.Int("lines", report.Lines),
			slog.Int("tokens", report.Tokens),
		)
		c.Files = append(c.Files, report)
	}

	return c
}
