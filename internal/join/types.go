package join

import (
	"fmt"

	"github.com/paveg/tablejoin/internal/common"
	"github.com/paveg/tablejoin/internal/errors"
)

// JoinType selects which keys a join emits.
type JoinType int

const (
	// InnerJoin emits keys present in both tables
	InnerJoin JoinType = iota
	// LeftJoin emits every left key
	LeftJoin
	// RightJoin emits every right key
	RightJoin
	// OuterJoin emits left keys followed by right-only keys
	OuterJoin
	// XorJoin emits keys present in exactly one table
	XorJoin
)

var joinTypeNames = map[JoinType]string{
	InnerJoin: "inner",
	LeftJoin:  "left",
	RightJoin: "right",
	OuterJoin: "outer",
	XorJoin:   "xor",
}

// ParseJoinType accepts any of the join type aliases (I, left, Out, x, ...).
func ParseJoinType(s string) (JoinType, error) {
	v, ok := common.ParseJoinType(s)
	if !ok {
		return 0, errors.NewInvalidInputError("parse join type", fmt.Sprintf("invalid join type %q", s))
	}
	return JoinType(v), nil
}

// String returns the join's label, as used in generated output file names.
func (t JoinType) String() string {
	return common.FormatJoinType(int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t JoinType) MarshalText() ([]byte, error) {
	name, ok := joinTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown join type %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *JoinType) UnmarshalText(text []byte) error {
	parsed, err := ParseJoinType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Repeats reports whether each side may hold a key more than once.
func (t JoinType) Repeats() (left, right bool) {
	switch t {
	case LeftJoin:
		return true, false
	case RightJoin:
		return false, true
	case XorJoin:
		return true, true
	default:
		return false, false
	}
}

// SortMode orders the left table's keys before emission.
type SortMode int

const (
	// NoSort keeps first-seen order
	NoSort SortMode = iota
	// SortForward orders keys ascending
	SortForward
	// SortReverse orders keys descending
	SortReverse
)

// ParseSortMode accepts any of the sort mode aliases. "F" means no sorting.
func ParseSortMode(s string) (SortMode, error) {
	v, ok := common.ParseSortMode(s)
	if !ok {
		return 0, errors.NewInvalidInputError("parse sort mode", fmt.Sprintf("invalid sorting method %q", s))
	}
	return SortMode(v), nil
}

// String returns the mode's name.
func (m SortMode) String() string {
	return common.FormatSortMode(int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m SortMode) MarshalText() ([]byte, error) {
	if _, ok := common.SortModeMapping[int(m)]; !ok {
		return nil, fmt.Errorf("unknown sort mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SortMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSortMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
