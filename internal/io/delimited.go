package io

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/paveg/tablejoin/internal/table"
)

// DelimitedWriter writes rows as delimiter-joined, newline-terminated lines.
// Fields are written verbatim; there is no quoting.
type DelimitedWriter struct {
	w     *bufio.Writer
	delim string
	rows  int
}

// NewDelimitedWriter creates a writer emitting rows separated by delim.
func NewDelimitedWriter(w io.Writer, delim table.Delimiter) *DelimitedWriter {
	return &DelimitedWriter{
		w:     bufio.NewWriter(w),
		delim: delim.String(),
	}
}

// WriteHeader writes the labels as an ordinary line.
func (d *DelimitedWriter) WriteHeader(labels []string) error {
	if err := d.writeLine(labels); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// WriteRow writes one row.
func (d *DelimitedWriter) WriteRow(fields []string) error {
	d.rows++
	if err := d.writeLine(fields); err != nil {
		return fmt.Errorf("writing row %d: %w", d.rows, err)
	}
	return nil
}

func (d *DelimitedWriter) writeLine(fields []string) error {
	if _, err := d.w.WriteString(strings.Join(fields, d.delim)); err != nil {
		return err
	}
	return d.w.WriteByte('\n')
}

// Close flushes buffered output.
func (d *DelimitedWriter) Close() error {
	return d.w.Flush()
}

// Abort drops buffered output.
func (d *DelimitedWriter) Abort() error {
	d.w.Reset(io.Discard)
	return nil
}
