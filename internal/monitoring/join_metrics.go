package monitoring

import (
	"fmt"

	"github.com/paveg/tablejoin/internal/common"
)

// JoinMetrics summarises a completed join.
type JoinMetrics struct {
	OutputRows   int `json:"output_rows"`
	LeftMatched  int `json:"left_matched"`  // output rows carrying left data
	RightMatched int `json:"right_matched"` // output rows carrying right data
	LeftRows     int `json:"left_rows"`
	RightRows    int `json:"right_rows"`
	KeyColumns   int `json:"key_columns"`
	LeftColumns  int `json:"left_columns"`  // left non-key columns
	RightColumns int `json:"right_columns"` // right non-key columns
}

// LeftPercent is the share of left rows that reached the output.
func (m JoinMetrics) LeftPercent() float64 {
	return percent(m.LeftMatched, m.LeftRows)
}

// RightPercent is the share of right rows that reached the output.
func (m JoinMetrics) RightPercent() float64 {
	return percent(m.RightMatched, m.RightRows)
}

// OutputColumns is the width of every output row.
func (m JoinMetrics) OutputColumns() int {
	return m.KeyColumns + m.LeftColumns + m.RightColumns
}

// LeftTotalColumns is the left table's width including keys.
func (m JoinMetrics) LeftTotalColumns() int {
	return m.KeyColumns + m.LeftColumns
}

// RightTotalColumns is the right table's width including keys.
func (m JoinMetrics) RightTotalColumns() int {
	return m.KeyColumns + m.RightColumns
}

func percent(matched, rows int) float64 {
	if rows == 0 {
		return 0
	}
	return float64(matched) * 100 / float64(rows)
}

// Report renders the metrics block printed after a join.
func (m JoinMetrics) Report() string {
	counts := []string{
		fmt.Sprint(m.OutputRows),
		fmt.Sprint(m.LeftRows),
		fmt.Sprint(m.RightRows),
		fmt.Sprint(m.OutputColumns()),
		fmt.Sprint(m.LeftTotalColumns()),
		fmt.Sprint(m.RightTotalColumns()),
	}
	width := common.MaxLen(counts...)
	for i := range counts {
		counts[i] = common.PadLeft(counts[i], width)
	}

	return fmt.Sprintf(`
    JOIN METRICS:

     Lines (O): %s
     Lines (L): %s (%s%%)
     Lines (R): %s (%s%%)

    Columns(O): %s
    Columns(L): %s
    Columns(R): %s`,
		counts[0],
		counts[1], common.FormatPercent(m.LeftPercent()),
		counts[2], common.FormatPercent(m.RightPercent()),
		counts[3], counts[4], counts[5])
}
