// Package keys builds composite join keys from table rows and decides,
// per key position, whether values compare as integers or as strings.
package keys

import (
	"strconv"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
)

// Field is one component of a key tuple. Numeric fields hold the canonical
// decimal text of a non-negative integer (no leading zeros), so equality and
// ordering work for integers of any size.
type Field struct {
	Text    string
	Numeric bool
}

// Key is an ordered tuple of fields drawn from a row's key columns.
type Key []Field

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NewField builds a key field. numeric must only be set for values that
// satisfy IsDigits.
func NewField(value string, numeric bool) Field {
	if !numeric {
		return Field{Text: value}
	}
	trimmed := strings.TrimLeft(value, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return Field{Text: trimmed, Numeric: true}
}

// Extract builds the key tuple of row in key-column order. types[i] selects
// integer interpretation for position i.
func Extract(row []string, keyCols []int, types []bool) Key {
	key := make(Key, len(keyCols))
	for i, col := range keyCols {
		numeric := i < len(types) && types[i]
		key[i] = NewField(row[col], numeric)
	}
	return key
}

// Compare compares two fields of the same position.
func (f Field) Compare(o Field) int {
	if f.Numeric && o.Numeric {
		if len(f.Text) != len(o.Text) {
			if len(f.Text) < len(o.Text) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(f.Text, o.Text)
}

// Compare orders keys tuple-wise, first position primary.
func (k Key) Compare(o Key) int {
	n := len(k)
	if len(o) < n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		if c := k[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(k) < len(o):
		return -1
	case len(k) > len(o):
		return 1
	}
	return 0
}

// Equal reports whether two keys hold the same values.
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if k[i] != o[i] {
			return false
		}
	}
	return true
}

// IsSentinel reports whether k is the lone empty string key, which marks a
// malformed row and is never indexed.
func (k Key) IsSentinel() bool {
	return len(k) == 1 && !k[0].Numeric && k[0].Text == ""
}

// Fields returns the output text of each key field.
func (k Key) Fields() []string {
	out := make([]string, len(k))
	for i, f := range k {
		out[i] = f.Text
	}
	return out
}

// String renders the key as a tuple, quoting string fields.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, f := range k {
		if f.Numeric {
			parts[i] = f.Text
		} else {
			parts[i] = strconv.Quote(f.Text)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Encode returns an unambiguous string form of the key, suitable as a map
// key: each field is tagged with its type and length-prefixed.
func (k Key) Encode() string {
	var sb strings.Builder
	for _, f := range k {
		if f.Numeric {
			sb.WriteByte('n')
		} else {
			sb.WriteByte('s')
		}
		sb.WriteString(strconv.Itoa(len(f.Text)))
		sb.WriteByte(':')
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// Hash returns the xxhash of the key's encoding.
func (k Key) Hash() uint64 {
	return xxhash.Sum64String(k.Encode())
}
