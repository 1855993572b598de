package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter writes each row as a JSON object on its own line, keyed by the
// header labels or by column_N when there is no header. Repeated labels are
// suffixed so every column keeps its own key.
type JSONWriter struct {
	w       *bufio.Writer
	enc     *json.Encoder
	columns int
	labels  []string
	rows    int
}

// NewJSONWriter creates a JSON Lines writer. columns sizes the default labels.
func NewJSONWriter(w io.Writer, columns int) *JSONWriter {
	bw := bufio.NewWriter(w)
	return &JSONWriter{w: bw, enc: json.NewEncoder(bw), columns: columns, labels: uniqueNames(nil, columns)}
}

// WriteHeader sets the object keys for subsequent rows.
func (j *JSONWriter) WriteHeader(labels []string) error {
	j.labels = uniqueNames(labels, max(len(labels), j.columns))
	return nil
}

// WriteRow encodes one row as an ordered JSON object.
func (j *JSONWriter) WriteRow(fields []string) error {
	j.rows++
	record := make(orderedRecord, len(fields))
	for i, value := range fields {
		name := columnName(i)
		if i < len(j.labels) {
			name = j.labels[i]
		}
		record[i] = recordField{name: name, value: value}
	}
	if err := j.enc.Encode(record); err != nil {
		return fmt.Errorf("writing row %d: %w", j.rows, err)
	}
	return nil
}

// Close flushes buffered output.
func (j *JSONWriter) Close() error {
	return j.w.Flush()
}

// Abort drops buffered output.
func (j *JSONWriter) Abort() error {
	j.w.Reset(io.Discard)
	return nil
}

type recordField struct {
	name  string
	value string
}

// orderedRecord marshals as a JSON object preserving column order.
type orderedRecord []recordField

// MarshalJSON implements json.Marshaler.
func (r orderedRecord) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, f := range r {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, name...)
		buf = append(buf, ':')
		buf = append(buf, value...)
	}
	return append(buf, '}'), nil
}
