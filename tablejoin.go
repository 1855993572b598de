// Package tablejoin joins two delimited text tables on composite keys.
// This package is the public API for the library; the command line in
// cmd/tablejoin is a thin wrapper around JoinTables.
package tablejoin

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paveg/tablejoin/internal/errors"
	"github.com/paveg/tablejoin/internal/io"
	"github.com/paveg/tablejoin/internal/join"
	"github.com/paveg/tablejoin/internal/logging"
	"github.com/paveg/tablejoin/internal/monitoring"
	"github.com/paveg/tablejoin/internal/table"
	"github.com/paveg/tablejoin/internal/validation"
)

// JoinType represents the type of join operation
type JoinType = join.JoinType

const (
	InnerJoin = join.InnerJoin
	LeftJoin  = join.LeftJoin
	RightJoin = join.RightJoin
	OuterJoin = join.OuterJoin
	XorJoin   = join.XorJoin
)

// SortMode represents how the left table's keys are ordered
type SortMode = join.SortMode

const (
	NoSort      = join.NoSort
	SortForward = join.SortForward
	SortReverse = join.SortReverse
)

// ResultCode is the outcome of JoinTables
type ResultCode = join.ResultCode

const (
	CodeSuccess           = join.CodeSuccess
	CodeLeftWidthInvalid  = join.CodeLeftWidthInvalid
	CodeRightWidthInvalid = join.CodeRightWidthInvalid
	CodeLeftKeyNonUnique  = join.CodeLeftKeyNonUnique
	CodeRightKeyNonUnique = join.CodeRightKeyNonUnique
	CodeFailure           = join.CodeFailure
)

// Metrics summarises a completed join
type Metrics = monitoring.JoinMetrics

// PhaseMetrics is the cost of one engine phase (scan, index, write)
type PhaseMetrics = monitoring.OperationMetrics

// PhaseSummary aggregates the recorded phases
type PhaseSummary = monitoring.MetricsSummary

// ParseJoinType parses a join type alias such as "inner", "L" or "xor".
func ParseJoinType(s string) (JoinType, error) { return join.ParseJoinType(s) }

// ParseSortMode parses a sort mode alias such as "no", "forward" or "R".
func ParseSortMode(s string) (SortMode, error) { return join.ParseSortMode(s) }

// Table names one input table.
type Table struct {
	Path   string
	Format string // tsv, csv, ssv or any of their aliases
	Keys   string // 1-based key columns, e.g. "1,3"
}

// Options control a join.
type Options struct {
	// OutputPath defaults to DefaultOutputPath
	OutputPath string
	// OutputFormat defaults to the left table's format
	OutputFormat       string
	ParquetCompression string

	JoinType JoinType
	Sort     SortMode
	Headers  bool
	Integers bool

	WarnUnequalDuplicates bool
	// WritePrevent refuses to overwrite an existing output file
	WritePrevent bool
	MaxLineBytes int

	// CollectMetrics records per-phase timings into Result.Phases and
	// Result.Summary
	CollectMetrics bool
	Logger         *slog.Logger
}

// DefaultOptions returns the command line defaults: inner join, forward
// sort, no headers, integer keys.
func DefaultOptions() Options {
	return Options{
		JoinType:              InnerJoin,
		Sort:                  SortForward,
		Integers:              true,
		WarnUnequalDuplicates: true,
	}
}

// Result reports a join.
type Result struct {
	Code       ResultCode
	OutputPath string
	Metrics    Metrics
	Phases     []PhaseMetrics
	Summary    PhaseSummary
	// DuplicateWarnings counts repeated keys whose rows differed
	DuplicateWarnings int
}

// JoinTables joins left and right into a new file. The output is only
// created once both tables are indexed and is removed again if writing
// fails.
func JoinTables(ctx context.Context, left, right Table, opts Options) (Result, error) {
	req, out, err := prepare(left, right, opts)
	res := Result{OutputPath: out.path}
	if err != nil {
		res.Code = join.CodeFor(err)
		logging.OrDiscard(opts.Logger).Error("join failed", "code", res.Code.String(), "error", err)
		return res, err
	}

	var collector *monitoring.MetricsCollector
	if opts.CollectMetrics {
		collector = monitoring.NewMetricsCollector(true)
	}
	engine := join.NewEngine(join.WithLogger(opts.Logger), join.WithCollector(collector))

	jr, err := engine.Run(ctx, req, func(columns int) (io.RowWriter, error) {
		o := out.options
		o.Columns = columns
		return io.CreateFile(out.path, o, opts.WritePrevent)
	})
	res.Code = jr.Code
	res.Metrics = jr.Metrics
	res.DuplicateWarnings = jr.LeftWarnings + jr.RightWarnings
	if collector != nil {
		res.Phases = collector.GetMetrics()
		res.Summary = collector.GetSummary()
	}
	return res, err
}

type output struct {
	path    string
	options io.Options
}

func prepare(left, right Table, opts Options) (join.Request, output, error) {
	var out output

	leftSpec, err := tableSpec(left, errors.SideLeft, opts)
	if err != nil {
		return join.Request{}, out, err
	}
	rightSpec, err := tableSpec(right, errors.SideRight, opts)
	if err != nil {
		return join.Request{}, out, err
	}

	out.options = io.DefaultOptions()
	out.options.Format = io.FormatFor(leftSpec.Delimiter)
	if opts.OutputFormat != "" {
		if out.options.Format, err = io.ParseFormat(opts.OutputFormat); err != nil {
			return join.Request{}, out, err
		}
	}
	if opts.ParquetCompression != "" {
		if !io.ValidCompression(opts.ParquetCompression) {
			return join.Request{}, out, errors.NewInvalidInputError("join", "invalid parquet compression "+opts.ParquetCompression)
		}
		out.options.Compression = opts.ParquetCompression
	}

	out.path = opts.OutputPath
	if out.path == "" {
		out.path = DefaultOutputPath(left.Path, right.Path, opts.JoinType, out.options.Format.Extension())
	}
	if opts.WritePrevent {
		if _, err := os.Stat(out.path); err == nil {
			return join.Request{}, out, errors.NewIOError("join", errors.SideNone, fmt.Errorf("output file %s exists: %w", out.path, fs.ErrExist))
		}
	}

	req := join.Request{
		Left:                  leftSpec,
		Right:                 rightSpec,
		Type:                  opts.JoinType,
		Sort:                  opts.Sort,
		Headers:               opts.Headers,
		Integers:              opts.Integers,
		WarnUnequalDuplicates: opts.WarnUnequalDuplicates,
	}
	return req, out, nil
}

func tableSpec(t Table, side errors.Side, opts Options) (table.Spec, error) {
	if err := validation.NewInputFileValidator(t.Path, side, "join").Validate(); err != nil {
		return table.Spec{}, err
	}
	delim, err := table.ParseDelimiter(t.Format)
	if err != nil {
		return table.Spec{}, err
	}
	cols, err := validation.ParseKeyColumns(t.Keys)
	if err != nil {
		return table.Spec{}, err
	}
	return table.Spec{
		Source:       table.NewFileSource(t.Path),
		Delimiter:    delim,
		KeyColumns:   cols,
		MaxLineBytes: opts.MaxLineBytes,
		Side:         side,
	}, nil
}

// DefaultOutputPath names the output after both inputs and the join:
// <dir of left>/<left name>__<JOIN_LABEL>__<right name>.<ext>
func DefaultOutputPath(leftPath, rightPath string, joinType JoinType, ext string) string {
	dir := filepath.Dir(leftPath)
	if abs, err := filepath.Abs(leftPath); err == nil {
		dir = filepath.Dir(abs)
	}
	name := stem(leftPath) + "__" + joinType.String() + "__" + stem(rightPath) + "." + ext
	return filepath.Join(dir, name)
}

// stem returns the file name without its last extension.
func stem(path string) string {
	base := filepath.Base(path)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
