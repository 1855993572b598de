package table

import (
	"bytes"
	"io"
	"os"
)

// Source is a re-openable table input. The engine reads each table twice
// (type scan, then indexing), so a Source must yield the same bytes on every
// Open.
type Source interface {
	// Name identifies the source in logs and error messages
	Name() string
	// Open returns a fresh reader positioned at the first line
	Open() (io.ReadCloser, error)
}

// FileSource reads a table from the local file system.
type FileSource struct {
	Path string
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string) FileSource {
	return FileSource{Path: path}
}

// Name returns the file path.
func (s FileSource) Name() string { return s.Path }

// Open opens the file for reading.
func (s FileSource) Open() (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// ReaderSource serves a table held in memory.
type ReaderSource struct {
	name string
	data []byte
}

// NewReaderSource creates an in-memory source.
func NewReaderSource(name string, data []byte) ReaderSource {
	return ReaderSource{name: name, data: data}
}

// NewStringSource creates an in-memory source from text.
func NewStringSource(name, text string) ReaderSource {
	return NewReaderSource(name, []byte(text))
}

// Name returns the name given at construction.
func (s ReaderSource) Name() string { return s.name }

// Open returns a reader over the held bytes.
func (s ReaderSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
