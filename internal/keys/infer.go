package keys

import (
	"github.com/paveg/tablejoin/internal/errors"
	"github.com/paveg/tablejoin/internal/table"
)

// TypeInfo is the result of scanning one table's key columns.
type TypeInfo struct {
	Numeric     []bool // per key position: every data value is digits only
	Width       int    // column count measured on the first line
	NonKeyWidth int    // Width minus key arity, never negative
	Rows        int    // data rows scanned (header excluded)
}

// Infer scans spec's table once, line by line, without holding its rows.
// Every line must have the width of the first line, and every key column
// must exist within that width. An empty table is vacuously numeric with
// width 0.
func Infer(spec table.Spec) (TypeInfo, error) {
	arity := len(spec.KeyColumns)
	info := TypeInfo{Numeric: make([]bool, arity)}
	for i := range info.Numeric {
		info.Numeric[i] = true
	}

	sc, closeFn, err := spec.Open()
	if err != nil {
		return info, errors.NewIOError("scan", spec.Side, err)
	}
	defer closeFn()

	first := true
	for sc.Next() {
		row := sc.Row()
		if first {
			first = false
			info.Width = len(row)
			for _, col := range spec.KeyColumns {
				if col >= info.Width {
					return info, errors.NewKeyColumnError("scan", spec.Side, col, info.Width)
				}
			}
			if info.Width > arity {
				info.NonKeyWidth = info.Width - arity
			}
			if spec.Header {
				continue
			}
		} else if len(row) != info.Width {
			return info, errors.NewWidthError("scan", spec.Side, sc.Line(), info.Width, len(row))
		}

		info.Rows++
		for i, col := range spec.KeyColumns {
			if info.Numeric[i] && !IsDigits(row[col]) {
				info.Numeric[i] = false
			}
		}
	}
	if err := sc.Err(); err != nil {
		return info, errors.NewIOError("scan", spec.Side, err)
	}
	return info, nil
}

// Combine ANDs two per-position type vectors. With numericAware off every
// position is string typed.
func Combine(left, right []bool, numericAware bool) []bool {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make([]bool, n)
	if !numericAware {
		return out
	}
	for i := range out {
		out[i] = left[i] && right[i]
	}
	return out
}
