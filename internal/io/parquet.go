package io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParquetWriter buffers rows in Arrow string builders and writes them as a
// single Parquet table on Close. Every column is a non-null UTF-8 string.
type ParquetWriter struct {
	writer   io.Writer
	options  ParquetOptions
	mem      memory.Allocator
	labels   []string
	builders []*array.StringBuilder
	rows     int
	closed   bool
}

// ParquetOptions contains configuration options for Parquet output.
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for writing operations
	BatchSize int
	// Columns is the expected row width
	Columns int
}

// NewParquetWriter creates a Parquet writer from output options.
func NewParquetWriter(writer io.Writer, opts Options) *ParquetWriter {
	options := ParquetOptions{
		Compression: opts.Compression,
		BatchSize:   opts.BatchSize,
		Columns:     opts.Columns,
	}
	if options.BatchSize <= 0 {
		options.BatchSize = DefaultBatchSize
	}
	return &ParquetWriter{
		writer:  writer,
		options: options,
		mem:     memory.NewGoAllocator(),
	}
}

// WriteHeader names the Parquet columns.
func (w *ParquetWriter) WriteHeader(labels []string) error {
	w.labels = append([]string(nil), labels...)
	return nil
}

// WriteRow appends one row to the column builders.
func (w *ParquetWriter) WriteRow(fields []string) error {
	if w.builders == nil {
		w.ensureBuilders(len(fields))
	}
	if len(fields) != len(w.builders) {
		return fmt.Errorf("writing row %d: expected %d fields, got %d", w.rows+1, len(w.builders), len(fields))
	}
	for i, value := range fields {
		w.builders[i].Append(value)
	}
	w.rows++
	return nil
}

func (w *ParquetWriter) ensureBuilders(width int) {
	w.builders = make([]*array.StringBuilder, width)
	for i := range w.builders {
		w.builders[i] = array.NewStringBuilder(w.mem)
	}
}

// Close builds the Arrow table and writes it to the underlying writer.
func (w *ParquetWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.builders == nil {
		width := w.options.Columns
		if len(w.labels) > 0 {
			width = len(w.labels)
		}
		w.ensureBuilders(width)
	}

	tbl := w.buildTable()
	defer tbl.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compressionCodec(w.options.Compression)),
		parquet.WithBatchSize(int64(w.options.BatchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(w.mem))

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}
	if err := writer.WriteTable(tbl, int64(w.options.BatchSize)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing file writer: %w", err)
	}
	return nil
}

// Abort releases the buffered rows without writing anything.
func (w *ParquetWriter) Abort() error {
	w.closed = true
	for _, b := range w.builders {
		b.Release()
	}
	w.builders = nil
	return nil
}

// buildTable converts the builders into an Arrow table, releasing them.
func (w *ParquetWriter) buildTable() arrow.Table {
	names := uniqueNames(w.labels, len(w.builders))
	fields := make([]arrow.Field, len(w.builders))
	columns := make([]arrow.Column, len(w.builders))

	for i, b := range w.builders {
		arr := b.NewArray()
		b.Release()

		fields[i] = arrow.Field{Name: names[i], Type: arrow.BinaryTypes.String}
		chunked := arrow.NewChunked(arrow.BinaryTypes.String, []arrow.Array{arr})
		arr.Release()
		columns[i] = *arrow.NewColumn(fields[i], chunked)
		chunked.Release()
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewTable(schema, columns, int64(w.rows))
}

// uniqueNames labels width columns from labels, falling back to column_N and
// suffixing repeated names so the schema stays unambiguous.
func uniqueNames(labels []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := range names {
		name := columnName(i)
		if i < len(labels) && labels[i] != "" {
			name = labels[i]
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		names[i] = name
	}
	return names
}

func compressionCodec(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Codecs.Gzip
	case "lz4":
		return compress.Codecs.Lz4Raw
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed", "none":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// ValidCompression reports whether name is a supported Parquet codec.
func ValidCompression(name string) bool {
	switch name {
	case "", "snappy", "gzip", "lz4", "zstd", "uncompressed", "none":
		return true
	default:
		return false
	}
}

// ReadParquet reads a Parquet file of string columns back into labels and
// rows.
func ReadParquet(r io.Reader) ([]string, [][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	mem := memory.NewGoAllocator()
	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("reading table: %w", err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	labels := make([]string, schema.NumFields())
	for i := range labels {
		labels[i] = schema.Field(i).Name
	}

	rows := make([][]string, tbl.NumRows())
	for i := range rows {
		rows[i] = make([]string, len(labels))
	}
	for c := range labels {
		offset := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			strs, ok := chunk.(*array.String)
			if !ok {
				return nil, nil, fmt.Errorf("column %s is %s, not utf8", labels[c], chunk.DataType())
			}
			for i := range strs.Len() {
				rows[offset+i][c] = strs.Value(i)
			}
			offset += strs.Len()
		}
	}
	return labels, rows, nil
}
