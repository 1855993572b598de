// Package index reads a whole table into memory as a map from composite key
// to the non-key fields of every row sharing that key.
package index

import (
	"log/slog"

	"github.com/paveg/tablejoin/internal/errors"
	"github.com/paveg/tablejoin/internal/keys"
	"github.com/paveg/tablejoin/internal/logging"
	"github.com/paveg/tablejoin/internal/table"
	"golang.org/x/exp/slices"
)

// Options control how a table is indexed.
type Options struct {
	// Types is the combined per-position key type vector
	Types []bool
	// Repeats allows a key to map to more than one row
	Repeats bool
	// WarnUnequalDuplicates logs repeated keys whose rows differ
	WarnUnequalDuplicates bool
	// Logger receives duplicate-value warnings; nil discards them
	Logger *slog.Logger
	// SizeHint pre-sizes the key map (usually the scanned row count)
	SizeHint int
}

// Index is one table's indexed contents.
type Index struct {
	Side        errors.Side
	Header      []string // nil unless the table has a header line
	Rows        int      // data rows read, header excluded
	Width       int
	NonKeyWidth int
	// Order holds one key per indexed row, in file order. A key repeated on
	// a side that allows repeats appears once per occurrence.
	Order []keys.Key
	// DuplicateWarnings counts repeated keys whose rows differed
	DuplicateWarnings int

	data *KeyMap
}

// Lookup returns the non-key rows stored for key, in file order.
func (ix *Index) Lookup(key keys.Key) ([][]string, bool) {
	return ix.data.Get(key)
}

// Contains reports whether key was indexed.
func (ix *Index) Contains(key keys.Key) bool {
	_, ok := ix.data.Get(key)
	return ok
}

// Distinct returns each indexed key once, in first-seen order.
func (ix *Index) Distinct() []keys.Key {
	return ix.data.Keys()
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	return ix.data.Len()
}

// Build indexes every data row of spec's table. Rows whose key is the lone
// empty string are skipped. A repeated key fails with a non-unique key error
// unless opts.Repeats is set.
func Build(spec table.Spec, opts Options) (*Index, error) {
	logger := logging.OrDiscard(opts.Logger)

	sc, closeFn, err := spec.Open()
	if err != nil {
		return nil, errors.NewIOError("index", spec.Side, err)
	}
	defer closeFn()

	ix := &Index{
		Side:  spec.Side,
		Width: -1,
		data:  NewKeyMap(opts.SizeHint),
	}

	if header := sc.Skip(spec.Header); header != nil {
		ix.Header = header
		if err := ix.setWidth(spec, len(header)); err != nil {
			return nil, err
		}
	}

	for sc.Next() {
		row := sc.Row()
		if ix.Width < 0 {
			if err := ix.setWidth(spec, len(row)); err != nil {
				return nil, err
			}
		}
		if len(row) != ix.Width {
			return nil, errors.NewWidthError("index", spec.Side, sc.Line(), ix.Width, len(row))
		}
		ix.Rows++

		key := keys.Extract(row, spec.KeyColumns, opts.Types)
		if key.IsSentinel() {
			continue
		}
		if !opts.Repeats && ix.Contains(key) {
			return nil, errors.NewNonUniqueKeyError("index", spec.Side, sc.Line(), key.String())
		}

		fields := table.ProjectNonKey(row, spec.KeyColumns)
		previous := ix.data.Put(key, fields)
		ix.Order = append(ix.Order, key)

		if previous != nil && differs(previous, fields) {
			ix.DuplicateWarnings++
			if opts.WarnUnequalDuplicates {
				logger.Warn("duplicate entries with the same key but different values",
					"side", spec.Side.String(),
					"key", key.String(),
					"line", sc.Line())
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewIOError("index", spec.Side, err)
	}

	if ix.Width < 0 {
		ix.Width = 0
	}
	if ix.Width > len(spec.KeyColumns) {
		ix.NonKeyWidth = ix.Width - len(spec.KeyColumns)
	}
	return ix, nil
}

// setWidth fixes the table width from its first line.
func (ix *Index) setWidth(spec table.Spec, width int) error {
	ix.Width = width
	for _, col := range spec.KeyColumns {
		if col >= width {
			return errors.NewKeyColumnError("index", spec.Side, col, width)
		}
	}
	return nil
}

// differs reports whether fields disagree with any earlier row of the key.
func differs(previous [][]string, fields []string) bool {
	for _, p := range previous {
		if !slices.Equal(p, fields) {
			return true
		}
	}
	return false
}
