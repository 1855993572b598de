// Package table decodes delimited text tables (TSV, CSV, SSV) into rows of
// string fields. Decoding is literal: fields are split on every occurrence
// of the delimiter, with no quoting or escaping.
package table

import (
	"fmt"

	"github.com/paveg/tablejoin/internal/common"
	"github.com/paveg/tablejoin/internal/errors"
)

// Delimiter is one of the three supported field separators.
type Delimiter int

const (
	Tab Delimiter = iota
	Comma
	Space
)

// String returns the literal separator.
func (d Delimiter) String() string {
	switch d {
	case Tab:
		return "\t"
	case Comma:
		return ","
	case Space:
		return " "
	default:
		return ""
	}
}

// Extension returns the file format name (tsv, csv or ssv).
func (d Delimiter) Extension() string {
	return common.FormatDelimiter(int(d))
}

// ParseDelimiter resolves a format name or literal separator.
func ParseDelimiter(s string) (Delimiter, error) {
	v, ok := common.ParseDelimiter(s)
	if !ok {
		return Tab, errors.NewInvalidInputError("parse",
			fmt.Sprintf("invalid file format %q: expected one of tsv, csv, ssv", s))
	}
	return Delimiter(v), nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Delimiter) MarshalText() ([]byte, error) {
	return []byte(d.Extension()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Delimiter) UnmarshalText(text []byte) error {
	parsed, err := ParseDelimiter(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
