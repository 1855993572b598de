// Package join executes a key-typed hash join of two delimited tables.
//
// Both tables are scanned once to infer key types and widths, then indexed
// fully into memory. Keys are emitted in an order fixed by the join type and
// sort mode, and each output row is key fields + left fields + right fields.
package join

import (
	"context"
	"log/slog"

	"github.com/paveg/tablejoin/internal/index"
	"github.com/paveg/tablejoin/internal/io"
	"github.com/paveg/tablejoin/internal/keys"
	"github.com/paveg/tablejoin/internal/logging"
	"github.com/paveg/tablejoin/internal/monitoring"
	"github.com/paveg/tablejoin/internal/table"
	"github.com/paveg/tablejoin/internal/validation"
)

// Request describes one join.
type Request struct {
	Left  table.Spec
	Right table.Spec
	Type  JoinType
	Sort  SortMode
	// Headers marks the first line of both tables as labels and writes a
	// header row to the output
	Headers bool
	// Integers compares digit-only key columns numerically
	Integers bool
	// WarnUnequalDuplicates logs repeated keys carrying different rows
	WarnUnequalDuplicates bool
}

// OpenWriter creates the output once both tables have been indexed. columns
// is the width of every output row.
type OpenWriter func(columns int) (io.RowWriter, error)

// Result reports a completed join.
type Result struct {
	Code    ResultCode
	Metrics monitoring.JoinMetrics
	// KeyTypes is the combined per-position numeric flag
	KeyTypes []bool
	// LeftWarnings and RightWarnings count repeated keys with differing rows
	LeftWarnings  int
	RightWarnings int
}

// Engine runs joins.
type Engine struct {
	logger    *slog.Logger
	collector *monitoring.MetricsCollector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCollector records the duration of each phase into c.
func WithCollector(c *monitoring.MetricsCollector) Option {
	return func(e *Engine) { e.collector = c }
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.OrDiscard(e.logger)
	return e
}

// Run joins req's tables into the writer returned by open. The writer is
// only created once both tables are indexed; it is closed on success and
// aborted on failure. ctx is checked between phases.
func (e *Engine) Run(ctx context.Context, req Request, open OpenWriter) (Result, error) {
	res, err := e.run(ctx, req, open)
	res.Code = CodeFor(err)
	if err != nil {
		e.logger.Error("join failed", "code", res.Code.String(), "error", err)
	}
	return res, err
}

func (e *Engine) run(ctx context.Context, req Request, open OpenWriter) (Result, error) {
	var res Result

	if err := validation.ValidateKeySpecs(req.Left.KeyColumns, req.Right.KeyColumns, "join"); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	req.Left.Header = req.Headers
	req.Right.Header = req.Headers

	e.logger.Info("running join",
		"left", req.Left.Source.Name(),
		"right", req.Right.Source.Name(),
		"type", req.Type.String(),
		"sort", req.Sort.String())

	// Pre-pass: key types and widths.
	var leftInfo, rightInfo keys.TypeInfo
	err := e.collector.RecordOperation("scan", func() int { return leftInfo.Rows + rightInfo.Rows }, func() error {
		var err error
		if leftInfo, err = keys.Infer(req.Left); err != nil {
			return err
		}
		rightInfo, err = keys.Infer(req.Right)
		return err
	})
	if err != nil {
		return res, err
	}
	res.KeyTypes = keys.Combine(leftInfo.Numeric, rightInfo.Numeric, req.Integers)
	e.logger.Debug("key types inferred", "numeric", res.KeyTypes,
		"left_width", leftInfo.Width, "right_width", rightInfo.Width)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	// Index both sides.
	leftRepeats, rightRepeats := req.Type.Repeats()
	var left, right *index.Index
	err = e.collector.RecordOperation("index", func() int { return indexedRows(left) + indexedRows(right) }, func() error {
		var err error
		left, err = index.Build(req.Left, e.indexOptions(req, res.KeyTypes, leftRepeats, leftInfo.Rows))
		if err != nil {
			return err
		}
		right, err = index.Build(req.Right, e.indexOptions(req, res.KeyTypes, rightRepeats, rightInfo.Rows))
		return err
	})
	if err != nil {
		return res, err
	}
	res.LeftWarnings = left.DuplicateWarnings
	res.RightWarnings = right.DuplicateWarnings

	if err := ctx.Err(); err != nil {
		return res, err
	}

	plan := newPlan(req, left, right)
	res.Metrics = monitoring.JoinMetrics{
		LeftRows:     left.Rows,
		RightRows:    right.Rows,
		KeyColumns:   len(req.Left.KeyColumns),
		LeftColumns:  leftInfo.NonKeyWidth,
		RightColumns: rightInfo.NonKeyWidth,
	}

	// Emit.
	err = e.collector.RecordOperation("write", func() int { return res.Metrics.OutputRows }, func() error {
		return plan.write(open, &res.Metrics)
	})
	if err != nil {
		return res, err
	}

	e.logger.Info("join complete",
		"output_rows", res.Metrics.OutputRows,
		"left_matched", res.Metrics.LeftMatched,
		"right_matched", res.Metrics.RightMatched)
	return res, nil
}

func (e *Engine) indexOptions(req Request, types []bool, repeats bool, rows int) index.Options {
	return index.Options{
		Types:                 types,
		Repeats:               repeats,
		WarnUnequalDuplicates: req.WarnUnequalDuplicates,
		Logger:                e.logger,
		SizeHint:              rows,
	}
}

func indexedRows(ix *index.Index) int {
	if ix == nil {
		return 0
	}
	return ix.Rows
}
