package join_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/paveg/tablejoin/internal/errors"
	"github.com/paveg/tablejoin/internal/io"
	"github.com/paveg/tablejoin/internal/join"
	"github.com/paveg/tablejoin/internal/monitoring"
	"github.com/paveg/tablejoin/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(left, right string, joinType join.JoinType) join.Request {
	return join.Request{
		Left: table.Spec{
			Source:     table.NewStringSource("left.csv", left),
			Delimiter:  table.Comma,
			KeyColumns: []int{0},
			Side:       errors.SideLeft,
		},
		Right: table.Spec{
			Source:     table.NewStringSource("right.csv", right),
			Delimiter:  table.Comma,
			KeyColumns: []int{0},
			Side:       errors.SideRight,
		},
		Type:     joinType,
		Sort:     join.SortForward,
		Integers: true,
	}
}

// runJoin executes req and returns the CSV output and whether the writer
// was ever opened.
func runJoin(t *testing.T, req join.Request) (string, join.Result, bool, error) {
	t.Helper()
	var buf bytes.Buffer
	opened := false
	res, err := join.NewEngine().Run(context.Background(), req, func(int) (io.RowWriter, error) {
		opened = true
		return io.NewDelimitedWriter(&buf, table.Comma), nil
	})
	return buf.String(), res, opened, err
}

func TestRun_Scenarios(t *testing.T) {
	left := "A,1\nB,2\n"
	right := "A,x\nC,y\n"

	tests := []struct {
		name     string
		joinType join.JoinType
		expected string
	}{
		{"inner", join.InnerJoin, "A,1,x\n"},
		{"left", join.LeftJoin, "A,1,x\nB,2,\n"},
		{"right", join.RightJoin, "A,1,x\nC,,y\n"},
		{"outer", join.OuterJoin, "A,1,x\nB,2,\nC,,y\n"},
		{"xor", join.XorJoin, "B,2,\nC,,y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res, _, err := runJoin(t, newRequest(left, right, tt.joinType))
			require.NoError(t, err)
			assert.Equal(t, join.CodeSuccess, res.Code)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRun_OuterMetrics(t *testing.T) {
	_, res, _, err := runJoin(t, newRequest("A,1\nB,2\n", "A,x\nC,y\n", join.OuterJoin))
	require.NoError(t, err)

	assert.Equal(t, monitoring.JoinMetrics{
		OutputRows:   3,
		LeftMatched:  2,
		RightMatched: 2,
		LeftRows:     2,
		RightRows:    2,
		KeyColumns:   1,
		LeftColumns:  1,
		RightColumns: 1,
	}, res.Metrics)
}

func TestRun_NonUniqueKey(t *testing.T) {
	tests := []struct {
		name     string
		left     string
		right    string
		joinType join.JoinType
		code     join.ResultCode
	}{
		{"inner left duplicate", "A,1\nA,2\n", "A,x\n", join.InnerJoin, join.CodeLeftKeyNonUnique},
		{"inner right duplicate", "A,1\n", "A,x\nA,y\n", join.InnerJoin, join.CodeRightKeyNonUnique},
		{"left join right duplicate", "A,1\n", "A,x\nA,y\n", join.LeftJoin, join.CodeRightKeyNonUnique},
		{"right join left duplicate", "A,1\nA,2\n", "A,x\n", join.RightJoin, join.CodeLeftKeyNonUnique},
		{"outer left duplicate", "A,1\nA,2\n", "B,x\n", join.OuterJoin, join.CodeLeftKeyNonUnique},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res, opened, err := runJoin(t, newRequest(tt.left, tt.right, tt.joinType))
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrNonUniqueKey)
			assert.Equal(t, tt.code, res.Code)
			assert.False(t, opened, "no output is created for a failed join")
		})
	}
}

func TestRun_WidthInconsistent(t *testing.T) {
	_, res, opened, err := runJoin(t, newRequest("A,1\nB\n", "A,x\n", join.InnerJoin))
	require.Error(t, err)
	assert.Equal(t, join.CodeLeftWidthInvalid, res.Code)
	assert.False(t, opened)

	_, res, _, err = runJoin(t, newRequest("A,1\n", "A,x\nB,y,z\n", join.InnerJoin))
	require.Error(t, err)
	assert.Equal(t, join.CodeRightWidthInvalid, res.Code)

	// A key column beyond the table is a structural problem of that side.
	req := newRequest("A,1\n", "A,x\n", join.InnerJoin)
	req.Right.KeyColumns = []int{5}
	_, res, _, err = runJoin(t, req)
	require.Error(t, err)
	assert.Equal(t, join.CodeRightWidthInvalid, res.Code)
}

func TestRun_NumericSort(t *testing.T) {
	left := "10,a\n2,b\n"
	right := "2,x\n10,y\n"

	t.Run("forward numeric", func(t *testing.T) {
		out, res, _, err := runJoin(t, newRequest(left, right, join.InnerJoin))
		require.NoError(t, err)
		assert.Equal(t, "2,b,x\n10,a,y\n", out)
		assert.Equal(t, []bool{true}, res.KeyTypes)
	})

	t.Run("reverse numeric", func(t *testing.T) {
		req := newRequest(left, right, join.InnerJoin)
		req.Sort = join.SortReverse
		out, _, _, err := runJoin(t, req)
		require.NoError(t, err)
		assert.Equal(t, "10,a,y\n2,b,x\n", out)
	})

	t.Run("forward lexical without integers", func(t *testing.T) {
		req := newRequest(left, right, join.InnerJoin)
		req.Integers = false
		out, res, _, err := runJoin(t, req)
		require.NoError(t, err)
		assert.Equal(t, "10,a,y\n2,b,x\n", out)
		assert.Equal(t, []bool{false}, res.KeyTypes)
	})

	t.Run("no sort keeps left order", func(t *testing.T) {
		req := newRequest("3,a\n1,b\n2,c\n", "1,x\n2,y\n3,z\n", join.InnerJoin)
		req.Sort = join.NoSort
		out, _, _, err := runJoin(t, req)
		require.NoError(t, err)
		assert.Equal(t, "3,a,z\n1,b,x\n2,c,y\n", out)
	})
}

func TestRun_CompositeKeys(t *testing.T) {
	req := newRequest("1,B,x\n1,A,y\n0,C,z\n", "A,1,p\nC,0,q\nB,1,r\n", join.InnerJoin)
	req.Left.KeyColumns = []int{0, 1}
	req.Right.KeyColumns = []int{1, 0}

	out, res, _, err := runJoin(t, req)
	require.NoError(t, err)
	assert.Equal(t, "0,C,z,q\n1,A,y,p\n1,B,x,r\n", out)
	assert.Equal(t, []bool{true, false}, res.KeyTypes)
}

func TestRun_NumericCanonicalEquality(t *testing.T) {
	out, _, _, err := runJoin(t, newRequest("007,a\n", "7,b\n", join.InnerJoin))
	require.NoError(t, err)
	assert.Equal(t, "7,a,b\n", out)

	req := newRequest("007,a\n", "7,b\n", join.InnerJoin)
	req.Integers = false
	out, _, _, err = runJoin(t, req)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_RepeatExpansion(t *testing.T) {
	t.Run("left join without match", func(t *testing.T) {
		out, res, _, err := runJoin(t, newRequest("A,1\nA,2\nB,3\n", "C,x\n", join.LeftJoin))
		require.NoError(t, err)
		assert.Equal(t, "A,1,\nA,2,\nB,3,\n", out)
		assert.Equal(t, 3, res.Metrics.LeftMatched)
		assert.Equal(t, 0, res.Metrics.RightMatched)
		assert.Equal(t, 1, res.LeftWarnings)
	})

	t.Run("left join reuses the single right row", func(t *testing.T) {
		out, _, _, err := runJoin(t, newRequest("A,1\nA,2\n", "A,x\n", join.LeftJoin))
		require.NoError(t, err)
		assert.Equal(t, "A,1,x\nA,2,x\n", out)
	})

	t.Run("right join follows right order", func(t *testing.T) {
		out, res, _, err := runJoin(t, newRequest("A,1\n", "B,y\nA,x\nA,z\n", join.RightJoin))
		require.NoError(t, err)
		assert.Equal(t, "B,,y\nA,1,x\nA,1,z\n", out)
		assert.Equal(t, 2, res.Metrics.LeftMatched)
		assert.Equal(t, 3, res.Metrics.RightMatched)
	})

	t.Run("xor expands both sides", func(t *testing.T) {
		out, _, _, err := runJoin(t, newRequest("A,1\nB,3\nA,2\n", "B,x\nC,y\nC,z\n", join.XorJoin))
		require.NoError(t, err)
		assert.Equal(t, "A,1,\nA,2,\nC,,y\nC,,z\n", out)
	})
}

func TestRun_SentinelKeyExcluded(t *testing.T) {
	for _, jt := range []join.JoinType{join.InnerJoin, join.LeftJoin, join.RightJoin, join.OuterJoin, join.XorJoin} {
		t.Run(jt.String(), func(t *testing.T) {
			out, res, _, err := runJoin(t, newRequest("A,1\n,2\n,3\n", ",x\nA,y\n", jt))
			require.NoError(t, err)
			assert.NotContains(t, "\n"+out, "\n,")
			assert.Equal(t, 3, res.Metrics.LeftRows)
		})
	}
}

func TestRun_Headers(t *testing.T) {
	left := "lid,lv\nA,1\n"
	right := "rv,rid\nx,A\n"

	req := newRequest(left, right, join.InnerJoin)
	req.Right.KeyColumns = []int{1}
	req.Headers = true
	out, res, _, err := runJoin(t, req)
	require.NoError(t, err)
	assert.Equal(t, "lid,lv,rv\nA,1,x\n", out)
	assert.Equal(t, 1, res.Metrics.LeftRows)

	req = newRequest(left, right, join.RightJoin)
	req.Right.KeyColumns = []int{1}
	req.Headers = true
	out, _, _, err = runJoin(t, req)
	require.NoError(t, err)
	assert.Equal(t, "rid,lv,rv\nA,1,x\n", out)
}

func TestRun_HeaderLineExcludedFromTypes(t *testing.T) {
	req := newRequest("id,v\n10,a\n9,b\n", "id,w\n9,x\n10,y\n", join.InnerJoin)
	req.Headers = true
	out, res, _, err := runJoin(t, req)
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, res.KeyTypes)
	assert.Equal(t, "id,v,w\n9,b,x\n10,a,y\n", out)
}

func TestRun_EmptyRightTable(t *testing.T) {
	out, res, _, err := runJoin(t, newRequest("A,1\n", "", join.LeftJoin))
	require.NoError(t, err)
	assert.Equal(t, "A,1\n", out)
	assert.Equal(t, 0, res.Metrics.RightColumns)
	assert.Zero(t, res.Metrics.RightPercent())
}

func TestRun_WidthInvariant(t *testing.T) {
	req := newRequest("A,1,2\nB,3,4\n", "A,x\nC,y\n", join.OuterJoin)
	var rows [][]string
	var width int
	_, err := join.NewEngine().Run(context.Background(), req, func(columns int) (io.RowWriter, error) {
		width = columns
		return &recordingWriter{rows: &rows}, nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 4, width)
	for _, row := range rows {
		assert.Len(t, row, width)
	}
}

func TestRun_InvalidRequest(t *testing.T) {
	req := newRequest("A,1\n", "A,x\n", join.InnerJoin)
	req.Right.KeyColumns = []int{0, 1}

	_, res, opened, err := runJoin(t, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
	assert.Equal(t, join.CodeFailure, res.Code)
	assert.False(t, opened)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := join.NewEngine().Run(ctx, newRequest("A,1\n", "A,x\n", join.InnerJoin), func(int) (io.RowWriter, error) {
		t.Fatal("writer opened after cancellation")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, join.CodeFailure, res.Code)
}

func TestRun_WriterFailureAborts(t *testing.T) {
	var rows [][]string
	w := &recordingWriter{rows: &rows, failAt: 1}
	res, err := join.NewEngine().Run(context.Background(), newRequest("A,1\nB,2\n", "A,x\nB,y\n", join.InnerJoin),
		func(int) (io.RowWriter, error) { return w, nil })

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrIO)
	assert.Equal(t, join.CodeFailure, res.Code)
	assert.True(t, w.aborted)
	assert.False(t, w.closed)
}

func TestRun_CloseFailureAborts(t *testing.T) {
	var rows [][]string
	w := &recordingWriter{rows: &rows, closeErr: stderrors.New("flush failed")}
	res, err := join.NewEngine().Run(context.Background(), newRequest("A,1\n", "A,x\n", join.InnerJoin),
		func(int) (io.RowWriter, error) { return w, nil })

	require.Error(t, err)
	assert.Equal(t, join.CodeFailure, res.Code)
	assert.True(t, w.closed)
	assert.True(t, w.aborted)
}

func TestRun_CollectsPhaseMetrics(t *testing.T) {
	collector := monitoring.NewMetricsCollector(true)
	engine := join.NewEngine(join.WithCollector(collector))

	_, err := engine.Run(context.Background(), newRequest("A,1\nB,2\n", "A,x\n", join.LeftJoin),
		func(int) (io.RowWriter, error) { return io.NewDelimitedWriter(&bytes.Buffer{}, table.Tab), nil })
	require.NoError(t, err)

	summary := collector.GetSummary()
	assert.Equal(t, 3, summary.TotalOperations)
	assert.Equal(t, 1, summary.OperationCounts["scan"])
	assert.Equal(t, 1, summary.OperationCounts["index"])
	assert.Equal(t, 1, summary.OperationCounts["write"])
}

type recordingWriter struct {
	rows    *[][]string
	failAt   int // 1-based row that fails; 0 never fails
	closeErr error
	closed   bool
	aborted  bool
}

func (r *recordingWriter) WriteHeader([]string) error { return nil }

func (r *recordingWriter) WriteRow(fields []string) error {
	if r.failAt > 0 && len(*r.rows)+1 == r.failAt {
		return stderrors.New("disk full")
	}
	*r.rows = append(*r.rows, append([]string(nil), fields...))
	return nil
}

func (r *recordingWriter) Close() error { r.closed = true; return r.closeErr }

func (r *recordingWriter) Abort() error { r.aborted = true; return nil }
