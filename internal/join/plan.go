package join

import (
	"github.com/paveg/tablejoin/internal/errors"
	"github.com/paveg/tablejoin/internal/index"
	"github.com/paveg/tablejoin/internal/keys"
	"github.com/paveg/tablejoin/internal/monitoring"
	"github.com/paveg/tablejoin/internal/table"
	"golang.org/x/exp/slices"
)

// plan is an indexed join ready to be written.
type plan struct {
	req         Request
	left, right *index.Index
	order       []keys.Key
	leftWidth   int
	rightWidth  int
}

func newPlan(req Request, left, right *index.Index) *plan {
	return &plan{
		req:        req,
		left:       left,
		right:      right,
		order:      Order(req.Type, req.Sort, left, right),
		leftWidth:  left.NonKeyWidth,
		rightWidth: right.NonKeyWidth,
	}
}

// Order lists the keys to emit, one per output row. The left table's
// occurrence order is sorted first; right-only keys keep right file order.
func Order(joinType JoinType, sort SortMode, left, right *index.Index) []keys.Key {
	leftOrder := sortKeys(left.Order, sort)

	var order []keys.Key
	switch joinType {
	case InnerJoin:
		for _, k := range leftOrder {
			if right.Contains(k) {
				order = append(order, k)
			}
		}
	case LeftJoin:
		order = leftOrder
	case RightJoin:
		order = slices.Clone(right.Order)
	case OuterJoin:
		order = leftOrder
		for _, k := range right.Order {
			if !left.Contains(k) {
				order = append(order, k)
			}
		}
	case XorJoin:
		for _, k := range leftOrder {
			if !right.Contains(k) {
				order = append(order, k)
			}
		}
		for _, k := range right.Order {
			if !left.Contains(k) {
				order = append(order, k)
			}
		}
	}
	return order
}

// sortKeys returns a sorted copy of order. Both directions are stable.
func sortKeys(order []keys.Key, sort SortMode) []keys.Key {
	sorted := slices.Clone(order)
	switch sort {
	case SortForward:
		slices.SortStableFunc(sorted, func(a, b keys.Key) int { return a.Compare(b) })
	case SortReverse:
		slices.SortStableFunc(sorted, func(a, b keys.Key) int { return b.Compare(a) })
	}
	return sorted
}

// Header builds the output header: key labels from the left header (the
// right one for RIGHT joins), then left and right non-key labels.
func Header(joinType JoinType, left, right table.Spec, leftHeader, rightHeader []string, leftWidth, rightWidth int) []string {
	keySpec, keyHeader := left, leftHeader
	if joinType == RightJoin {
		keySpec, keyHeader = right, rightHeader
	}

	labels := make([]string, 0, len(keySpec.KeyColumns)+leftWidth+rightWidth)
	for _, col := range keySpec.KeyColumns {
		labels = append(labels, field(keyHeader, col))
	}
	labels = append(labels, pad(table.ProjectNonKey(leftHeader, left.KeyColumns), leftWidth)...)
	labels = append(labels, pad(table.ProjectNonKey(rightHeader, right.KeyColumns), rightWidth)...)
	return labels
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// pad resizes fields to exactly width entries.
func pad(fields []string, width int) []string {
	out := make([]string, width)
	copy(out, fields)
	return out
}

// write opens the output and emits every planned row, updating m.
func (p *plan) write(open OpenWriter, m *monitoring.JoinMetrics) (err error) {
	w, err := open(m.OutputColumns())
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			err = w.Close()
		}
		if err != nil {
			_ = w.Abort()
		}
	}()

	if p.req.Headers {
		labels := Header(p.req.Type, p.req.Left, p.req.Right, p.left.Header, p.right.Header, p.leftWidth, p.rightWidth)
		if err := w.WriteHeader(labels); err != nil {
			return errors.NewIOError("write header", errors.SideNone, err)
		}
	}

	leftRepeats, rightRepeats := p.req.Type.Repeats()
	leftCursor := newCursor(p.left, leftRepeats)
	rightCursor := newCursor(p.right, rightRepeats)
	row := make([]string, 0, m.OutputColumns())

	for _, k := range p.order {
		row = append(row[:0], k.Fields()...)

		fields, ok := leftCursor.next(k)
		if ok {
			m.LeftMatched++
			row = append(row, fields...)
		} else {
			row = append(row, make([]string, p.leftWidth)...)
		}

		fields, ok = rightCursor.next(k)
		if ok {
			m.RightMatched++
			row = append(row, fields...)
		} else {
			row = append(row, make([]string, p.rightWidth)...)
		}

		if err := w.WriteRow(row); err != nil {
			return errors.NewIOError("write row", errors.SideNone, err)
		}
		m.OutputRows++
	}
	return nil
}

// cursor hands out one side's stored rows for each emitted key. With
// repeats allowed every emission of a key takes its next stored row;
// otherwise the key's first row is reused.
type cursor struct {
	ix       *index.Index
	repeats  bool
	consumed map[string]int
}

func newCursor(ix *index.Index, repeats bool) *cursor {
	return &cursor{ix: ix, repeats: repeats, consumed: make(map[string]int)}
}

func (c *cursor) next(k keys.Key) ([]string, bool) {
	rows, ok := c.ix.Lookup(k)
	if !ok {
		return nil, false
	}
	if !c.repeats {
		return rows[0], true
	}
	enc := k.Encode()
	i := c.consumed[enc]
	c.consumed[enc]++
	if i >= len(rows) {
		i = len(rows) - 1
	}
	return rows[i], true
}
