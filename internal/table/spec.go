package table

import (
	"github.com/paveg/tablejoin/internal/errors"
)

// Spec describes one side of a join: where the table comes from, how it is
// delimited, and which columns form its key.
type Spec struct {
	Source       Source
	Delimiter    Delimiter
	KeyColumns   []int // 0-based, in key order
	Header       bool  // first line holds column labels
	MaxLineBytes int
	Side         errors.Side
}

// Open opens the spec's source and wraps it in a Scanner.
func (s Spec) Open() (*Scanner, func() error, error) {
	rc, err := s.Source.Open()
	if err != nil {
		return nil, nil, err
	}
	return NewScanner(rc, s.Delimiter, s.MaxLineBytes), rc.Close, nil
}
