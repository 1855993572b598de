// Package testutil provides common testing utilities for table fixtures.
//
// It consolidates the patterns shared by the join, facade and command line
// tests:
// - writing table files into a test's temporary directory
// - generating keyed tables of a given size
// - reading output back for comparison
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in generated tables.
	defaultRowCount = 4
)

// WriteTable writes content to dir/name and returns the path.
//
// Example usage:
//
//	dir := t.TempDir()
//	left := testutil.WriteTable(t, dir, "left.tsv", "1\ta\n2\tb\n")
func WriteTable(tb testing.TB, dir, name, content string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ReadFile returns the contents of path.
func ReadFile(tb testing.TB, path string) string {
	tb.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	require.NoError(tb, err)
	return string(data)
}

// TableOption configures table generation.
type TableOption func(*tableConfig)

type tableConfig struct {
	rowCount  int
	delimiter string
	header    []string
	keyStep   int
	keyStart  int
	prefix    string
}

// WithRowCount sets the number of data rows.
func WithRowCount(count int) TableOption {
	return func(cfg *tableConfig) {
		cfg.rowCount = count
	}
}

// WithDelimiter sets the field delimiter.
func WithDelimiter(delim string) TableOption {
	return func(cfg *tableConfig) {
		cfg.delimiter = delim
	}
}

// WithHeader prepends a header line.
func WithHeader(labels ...string) TableOption {
	return func(cfg *tableConfig) {
		cfg.header = labels
	}
}

// WithKeys makes row i carry key start+i*step.
func WithKeys(start, step int) TableOption {
	return func(cfg *tableConfig) {
		cfg.keyStart = start
		cfg.keyStep = step
	}
}

// WithValuePrefix sets the prefix of the generated value column.
func WithValuePrefix(prefix string) TableOption {
	return func(cfg *tableConfig) {
		cfg.prefix = prefix
	}
}

// GenerateTable renders a two-column table of integer keys and string
// values: "0,v0", "1,v1", ...
func GenerateTable(opts ...TableOption) string {
	cfg := &tableConfig{
		rowCount:  defaultRowCount,
		delimiter: ",",
		keyStep:   1,
		prefix:    "v",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var sb strings.Builder
	if cfg.header != nil {
		sb.WriteString(strings.Join(cfg.header, cfg.delimiter))
		sb.WriteByte('\n')
	}
	for i := range cfg.rowCount {
		fmt.Fprintf(&sb, "%d%s%s%d\n", cfg.keyStart+i*cfg.keyStep, cfg.delimiter, cfg.prefix, i)
	}
	return sb.String()
}

// Lines splits output into its lines, dropping the final newline.
func Lines(output string) []string {
	trimmed := strings.TrimSuffix(output, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
