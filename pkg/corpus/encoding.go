package corpus

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding identifies how the bytes of a file were interpreted.
type Encoding int

const (
	// EncodingUnknown means the file matched neither UTF-8 nor the legacy sniff.
	EncodingUnknown Encoding = iota
	// EncodingUTF8 means the file was valid UTF-8.
	EncodingUTF8
	// EncodingWindows1251 means the file was decoded as legacy Cyrillic text.
	EncodingWindows1251
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingWindows1251:
		return "windows-1251"
	default:
		return "unknown"
	}
}

const (
	// DefaultSniffSize is the number of leading bytes inspected by the legacy sniff.
	DefaultSniffSize = 4096
	// DefaultLegacyThreshold is the minimum percentage of legacy Cyrillic bytes
	// needed to decode a file as Windows-1251.
	DefaultLegacyThreshold = 60
)

// ErrUnknownEncoding is returned by ReadLines when a file is neither valid
// UTF-8 nor recognised as Windows-1251. The returned lines are empty.
var ErrUnknownEncoding = errors.New("unrecognised text encoding")

// Resolver decides per file whether its bytes are UTF-8 or Windows-1251.
// It holds no state between files.
type Resolver struct {
	sniffSize int
	threshold int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSniffSize sets how many leading bytes are inspected by the legacy sniff.
// Default: 4096
func WithSniffSize(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.sniffSize = n
		}
	}
}

// WithLegacyThreshold sets the percentage of legacy Cyrillic bytes required
// to accept a file as Windows-1251.
// Default: 60
func WithLegacyThreshold(pct int) ResolverOption {
	return func(r *Resolver) {
		r.threshold = pct
	}
}

// NewResolver creates a Resolver with default settings, which can be
// overridden by providing one or more ResolverOption functions.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		sniffSize: DefaultSniffSize,
		threshold: DefaultLegacyThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadLines reads the file at path and returns its decoded lines together
// with the encoding that was used. I/O failures are returned as errors; a file
// that cannot be decoded returns no lines and ErrUnknownEncoding.
func (r *Resolver) ReadLines(path string) ([]string, Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, EncodingUnknown, fmt.Errorf("could not read '%s': %w", path, err)
	}
	lines, enc := r.DecodeLines(data)
	if enc == EncodingUnknown {
		return nil, enc, fmt.Errorf("could not decode '%s': %w", path, ErrUnknownEncoding)
	}
	return lines, enc, nil
}

// DecodeLines tries UTF-8 first and falls back to the Windows-1251 sniff.
func (r *Resolver) DecodeLines(data []byte) ([]string, Encoding) {
	if utf8.Valid(data) {
		return splitLines(data), EncodingUTF8
	}

	if LegacyPercent(data, r.sniffSize) < r.threshold {
		return nil, EncodingUnknown
	}

	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return nil, EncodingUnknown
	}
	return splitLines(decoded), EncodingWindows1251
}

// LegacyPercent returns the integer percentage of the first sniffSize bytes
// of data that are Windows-1251 Cyrillic letters (>= 192) or the Ё/ё code
// points (168, 184). An empty buffer is 0%.
func LegacyPercent(data []byte, sniffSize int) int {
	n := len(data)
	if n > sniffSize {
		n = sniffSize
	}
	if n == 0 {
		return 0
	}

	var legacy int
	for _, c := range data[:n] {
		if c >= 192 || c == 168 || c == 184 {
			legacy++
		}
	}
	return 100 * legacy / n
}

func splitLines(data []byte) []string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	// A whole file can be one line; never let the scanner give up on it.
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
