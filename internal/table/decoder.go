package table

import (
	"strings"
)

// SplitLine strips one trailing line terminator and splits the rest on every
// literal occurrence of delim. It never fails: an empty line yields a single
// empty field.
func SplitLine(line string, delim Delimiter) []string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		line = line[:len(line)-2]
	case strings.HasSuffix(line, "\n"), strings.HasSuffix(line, "\r"):
		line = line[:len(line)-1]
	}
	return strings.Split(line, delim.String())
}

// ProjectNonKey returns a new slice holding the fields of row whose index is
// not in keyCols, in their original relative order.
func ProjectNonKey(row []string, keyCols []int) []string {
	if len(keyCols) == 0 {
		return append([]string(nil), row...)
	}
	isKey := make(map[int]struct{}, len(keyCols))
	for _, c := range keyCols {
		isKey[c] = struct{}{}
	}

	out := make([]string, 0, len(row))
	for i, field := range row {
		if _, skip := isKey[i]; !skip {
			out = append(out, field)
		}
	}
	return out
}
