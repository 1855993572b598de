package io

import (
	"fmt"
	"io"
	"os"

	"github.com/paveg/tablejoin/internal/errors"
)

// FileSink is a RowWriter bound to a file it created.
type FileSink struct {
	RowWriter
	file *os.File
	path string
}

// CreateFile creates path and returns a sink encoding rows into it. With
// noClobber set an existing file is an error and is left untouched.
func CreateFile(path string, opts Options, noClobber bool) (*FileSink, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if noClobber {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644) //nolint:gosec // output path is chosen by the caller
	if err != nil {
		return nil, errors.NewIOError("create output", errors.SideNone, err)
	}

	w, err := NewWriter(fileWriter{f}, opts)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	return &FileSink{RowWriter: w, file: f, path: path}, nil
}

// fileWriter hides the file's Close from encoders that close their
// destination, so the sink stays the only owner of the descriptor.
type fileWriter struct {
	io.Writer
}

// Path returns the output file path.
func (s *FileSink) Path() string {
	return s.path
}

// Close flushes the encoder and closes the file.
func (s *FileSink) Close() error {
	werr := s.RowWriter.Close()
	ferr := s.file.Close()
	if werr != nil {
		return errors.NewIOError("write output", errors.SideNone, werr)
	}
	if ferr != nil {
		return errors.NewIOError("close output", errors.SideNone, ferr)
	}
	return nil
}

// Abort discards pending output and removes the partially written file.
func (s *FileSink) Abort() error {
	_ = s.RowWriter.Abort()
	_ = s.file.Close()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing partial output %s: %w", s.path, err)
	}
	return nil
}
