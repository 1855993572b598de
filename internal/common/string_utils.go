// Package common provides shared utilities for enum lookups and string formatting
package common

import (
	"fmt"
	"strings"
)

// EnumStringMap represents a mapping from enum values to string representations.
type EnumStringMap map[int]string

// FormatEnum formats an enum value using the provided mapping.
func FormatEnum(value int, mapping EnumStringMap) string {
	if str, exists := mapping[value]; exists {
		return str
	}
	return fmt.Sprintf("unknown(%d)", value)
}

// PadLeft right-aligns s in a field of the given width.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// MaxLen returns the length of the longest string.
func MaxLen(values ...string) int {
	longest := 0
	for _, v := range values {
		if len(v) > longest {
			longest = len(v)
		}
	}
	return longest
}

// FormatPercent renders p with exactly two decimals, truncating rather than
// rounding (66.666 -> "66.66").
func FormatPercent(p float64) string {
	s := fmt.Sprintf("%.6f", p)
	dot := strings.IndexByte(s, '.')
	return s[:dot+3]
}
