package table

import (
	"bufio"
	"io"
)

// DefaultMaxLineBytes bounds the length of a single input line.
const DefaultMaxLineBytes = 1 << 20

// Scanner iterates over the decoded rows of a table, one line at a time.
type Scanner struct {
	sc    *bufio.Scanner
	delim Delimiter
	row   []string
	line  int
}

// NewScanner creates a Scanner over r. maxLineBytes <= 0 selects
// DefaultMaxLineBytes.
func NewScanner(r io.Reader, delim Delimiter, maxLineBytes int) *Scanner {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	sc := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > maxLineBytes {
		initial = maxLineBytes
	}
	sc.Buffer(make([]byte, 0, initial), maxLineBytes)
	return &Scanner{sc: sc, delim: delim}
}

// Next advances to the next row and reports whether one is available.
func (s *Scanner) Next() bool {
	if !s.sc.Scan() {
		s.row = nil
		return false
	}
	s.line++
	s.row = SplitLine(s.sc.Text(), s.delim)
	return true
}

// Row returns the current row's fields.
func (s *Scanner) Row() []string { return s.row }

// Line returns the 1-based line number of the current row.
func (s *Scanner) Line() int { return s.line }

// Err returns the first non-EOF read error.
func (s *Scanner) Err() error { return s.sc.Err() }

// Skip consumes the header line when header is set, returning its fields.
// It returns nil fields when header is false or the table is empty.
func (s *Scanner) Skip(header bool) []string {
	if !header || !s.Next() {
		return nil
	}
	return s.row
}

// ReadHeader returns the first line of src decoded with delim, or nil for an
// empty table.
func ReadHeader(src Source, delim Delimiter, maxLineBytes int) ([]string, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sc := NewScanner(rc, delim, maxLineBytes)
	if !sc.Next() {
		return nil, sc.Err()
	}
	return sc.Row(), nil
}
