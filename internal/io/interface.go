// Package io provides the output sinks a join writes its rows to.
//
// Key components:
//   - RowWriter, the sink interface the join engine emits into
//   - DelimitedWriter for TSV, CSV and SSV output
//   - JSONWriter for JSON Lines output
//   - ParquetWriter for Parquet output through Apache Arrow
//   - CreateFile, which binds a writer to a file and removes it on Abort
package io

import (
	"fmt"
	"io"
	"strings"

	"github.com/paveg/tablejoin/internal/errors"
	"github.com/paveg/tablejoin/internal/table"
)

const (
	// DefaultBatchSize is the default Parquet write batch size
	DefaultBatchSize = 1024
	// DefaultCompression is the default Parquet compression codec
	DefaultCompression = "snappy"
)

// RowWriter receives the rows of a join result in order.
type RowWriter interface {
	// WriteHeader writes the column labels; called at most once, first.
	WriteHeader(labels []string) error
	// WriteRow writes one output row. fields may be reused after it returns.
	WriteRow(fields []string) error
	// Close flushes buffered output and releases the destination.
	Close() error
	// Abort discards the output after a failed join.
	Abort() error
}

// Format selects the encoding of an output table.
type Format int

const (
	// FormatTSV writes tab separated values
	FormatTSV Format = iota
	// FormatCSV writes comma separated values
	FormatCSV
	// FormatSSV writes space separated values
	FormatSSV
	// FormatJSON writes one JSON object per row
	FormatJSON
	// FormatParquet writes an Apache Parquet file
	FormatParquet
)

var formatNames = map[Format]string{
	FormatTSV:     "tsv",
	FormatCSV:     "csv",
	FormatSSV:     "ssv",
	FormatJSON:    "json",
	FormatParquet: "parquet",
}

// String returns the format's file extension.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(f))
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	return f.String()
}

// Delimited reports whether the format is a delimited text table.
func (f Format) Delimited() bool {
	return f == FormatTSV || f == FormatCSV || f == FormatSSV
}

// FormatFor returns the delimited format matching d.
func FormatFor(d table.Delimiter) Format {
	switch d {
	case table.Comma:
		return FormatCSV
	case table.Space:
		return FormatSSV
	default:
		return FormatTSV
	}
}

// ParseFormat accepts a delimiter alias or one of "json", "jsonl" and
// "parquet".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	case "parquet", "pq":
		return FormatParquet, nil
	}
	d, err := table.ParseDelimiter(s)
	if err != nil {
		return 0, errors.NewInvalidInputError("parse format", fmt.Sprintf("unknown output format %q", s))
	}
	return FormatFor(d), nil
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Options configure an output writer.
type Options struct {
	Format Format
	// Compression is the Parquet codec: snappy, gzip, zstd, lz4 or uncompressed
	Compression string
	// BatchSize is the Parquet row group batch size
	BatchSize int
	// Columns is the expected row width; used to name unlabelled Parquet columns
	Columns int
}

// DefaultOptions returns TSV output options.
func DefaultOptions() Options {
	return Options{
		Format:      FormatTSV,
		Compression: DefaultCompression,
		BatchSize:   DefaultBatchSize,
	}
}

// NewWriter returns a RowWriter that encodes rows to w.
func NewWriter(w io.Writer, opts Options) (RowWriter, error) {
	switch opts.Format {
	case FormatTSV:
		return NewDelimitedWriter(w, table.Tab), nil
	case FormatCSV:
		return NewDelimitedWriter(w, table.Comma), nil
	case FormatSSV:
		return NewDelimitedWriter(w, table.Space), nil
	case FormatJSON:
		return NewJSONWriter(w, opts.Columns), nil
	case FormatParquet:
		return NewParquetWriter(w, opts), nil
	default:
		return nil, errors.NewInvalidInputError("new writer", fmt.Sprintf("unsupported output format %s", opts.Format))
	}
}

// columnName labels an unlabelled column; i is 0-based.
func columnName(i int) string {
	return fmt.Sprintf("column_%d", i+1)
}
