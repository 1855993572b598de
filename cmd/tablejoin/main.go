package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/paveg/tablejoin"
	"github.com/paveg/tablejoin/internal/common"
	"github.com/paveg/tablejoin/internal/config"
	"github.com/paveg/tablejoin/internal/logging"
	"github.com/paveg/tablejoin/internal/version"
	"golang.org/x/exp/slices"
)

const usageExitCode = 1

func customUsage(w io.Writer) func() {
	return func() {
		fmt.Fprintf(w, "tablejoin (version %s)\n\n", version.Version)
		fmt.Fprintf(w, "Usage: tablejoin [options] <left> <format> <keys> <right> <format> <keys>\n\n")
		fmt.Fprintf(w, "  <format>  tsv, csv or ssv (aliases: t, c, s, tab, comma, space)\n")
		fmt.Fprintf(w, "  <keys>    1-based key columns, e.g. 1 or 1,3\n\n")
		fmt.Fprintf(w, "Options:\n")
		fmt.Fprintf(w, "  -o path\n\t\tOutput file (default: <left>__<JOIN>__<right>.<ext> next to the left table)\n")
		fmt.Fprintf(w, "  -f format\n\t\tOutput format: tsv, csv, ssv, json or parquet (default: left format)\n")
		fmt.Fprintf(w, "  -j type\n\t\tJoin type: inner, left, right, outer or xor (default: inner)\n")
		fmt.Fprintf(w, "  -s mode\n\t\tSort the left keys: no, forward or reverse (default: forward)\n")
		fmt.Fprintf(w, "  -H [yes|no]\n\t\tFirst line of each table is a header\n")
		fmt.Fprintf(w, "  -i [yes|no]\n\t\tCompare digit-only keys as integers (default: yes)\n")
		fmt.Fprintf(w, "  -config file\n\t\tLoad settings from a JSON or YAML file\n")
		fmt.Fprintf(w, "  -v, -version\n\t\tPrint version information and exit\n")
		fmt.Fprintf(w, "  -h, -help\n\t\tShow this help message and exit\n")
	}
}

// boolFlag is a boolean flag that also accepts the Y/N aliases.
type boolFlag struct{ value *bool }

func (b boolFlag) String() string {
	if b.value == nil {
		return "false"
	}
	return strconv.FormatBool(*b.value)
}

func (b boolFlag) Set(s string) error {
	v, ok := common.ParseBool(s)
	if !ok {
		return fmt.Errorf("invalid boolean %q", s)
	}
	*b.value = v
	return nil
}

func (b boolFlag) IsBoolFlag() bool { return true }

type cliFlags struct {
	output       string
	format       string
	joinType     string
	sort         string
	headers      bool
	integers     bool
	configFile   string
	printVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := flag.NewFlagSet("tablejoin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = customUsage(stderr)

	fs.StringVar(&f.output, "o", "", "output file")
	fs.StringVar(&f.format, "f", "", "output format")
	fs.StringVar(&f.joinType, "j", "", "join type")
	fs.StringVar(&f.sort, "s", "", "sort mode")
	fs.Var(boolFlag{&f.headers}, "H", "tables have a header line")
	fs.Var(boolFlag{&f.integers}, "i", "compare integer keys numerically")
	fs.StringVar(&f.configFile, "config", "", "configuration file")
	fs.BoolVar(&f.printVersion, "v", false, "print version and exit")
	fs.BoolVar(&f.printVersion, "version", false, "print version and exit")

	positional, err := parseInterleaved(fs, joinBoolValues(args, "H", "i"))
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return usageExitCode
	}

	if f.printVersion {
		fmt.Fprint(stdout, version.Info().String())
		return 0
	}

	if len(positional) != 6 {
		fmt.Fprintf(stderr, "tablejoin: expected 6 arguments, got %d\n\n", len(positional))
		fs.Usage()
		return usageExitCode
	}

	cfg, err := loadConfig(fs, f)
	if err != nil {
		fmt.Fprintf(stderr, "tablejoin: %v\n", err)
		return usageExitCode
	}

	opts, err := joinOptions(cfg, f.output, newLogger(stderr, cfg))
	if err != nil {
		fmt.Fprintf(stderr, "tablejoin: %v\n", err)
		return usageExitCode
	}

	left := tablejoin.Table{Path: positional[0], Format: positional[1], Keys: positional[2]}
	right := tablejoin.Table{Path: positional[3], Format: positional[4], Keys: positional[5]}

	res, err := tablejoin.JoinTables(ctx, left, right, opts)
	if err != nil {
		return int(res.Code)
	}

	opts.Logger.Info("join written", "output", res.OutputPath, "rows", res.Metrics.OutputRows)
	if cfg.PrintMetrics {
		fmt.Fprintln(stdout, res.Metrics.Report())
	}
	if sum := res.Summary; sum.TotalOperations > 0 {
		opts.Logger.Info("phase timings",
			"operations", sum.TotalOperations,
			"total_duration", sum.TotalDuration,
			"average_duration", sum.AverageDuration,
			"rows", sum.TotalRows,
			"allocated_bytes", sum.TotalMemory)
	}
	return int(res.Code)
}

// parseInterleaved parses flags that may appear before, between or after
// the positional arguments.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// joinBoolValues rewrites "-H yes" as "-H=yes" for the named boolean flags,
// so a Y/N answer may follow the flag as a separate argument.
func joinBoolValues(args []string, names ...string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		name := strings.TrimLeft(arg, "-")
		if name != arg && slices.Contains(names, name) && i+1 < len(args) {
			if _, ok := common.ParseBool(args[i+1]); ok {
				out = append(out, arg+"="+args[i+1])
				i++
				continue
			}
		}
		out = append(out, arg)
	}
	return out
}

// loadConfig layers the config file (or defaults), TABLEJOIN_* variables
// and explicitly set flags, in that order.
func loadConfig(fs *flag.FlagSet, f cliFlags) (config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(f.configFile); err != nil {
			return config.Config{}, err
		}
	}
	cfg = cfg.MergeEnv()

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "f":
			cfg.OutputFormat = f.format
		case "j":
			cfg.JoinType = f.joinType
		case "s":
			cfg.Sort = f.sort
		case "H":
			cfg.Headers = f.headers
		case "i":
			cfg.Integers = f.integers
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func joinOptions(cfg config.Config, output string, logger *slog.Logger) (tablejoin.Options, error) {
	joinType, err := tablejoin.ParseJoinType(cfg.JoinType)
	if err != nil {
		return tablejoin.Options{}, err
	}
	sortMode, err := tablejoin.ParseSortMode(cfg.Sort)
	if err != nil {
		return tablejoin.Options{}, err
	}

	return tablejoin.Options{
		OutputPath:            output,
		OutputFormat:          cfg.OutputFormat,
		ParquetCompression:    cfg.ParquetCompression,
		JoinType:              joinType,
		Sort:                  sortMode,
		Headers:               cfg.Headers,
		Integers:              cfg.Integers,
		WarnUnequalDuplicates: cfg.WarnUnequalDuplicates,
		WritePrevent:          cfg.WritePrevent,
		MaxLineBytes:          cfg.MaxLineBytes,
		CollectMetrics:        cfg.MetricsCollection,
		Logger:                logger,
	}, nil
}

// newLogger honours print_progress (info and below) and print_errors
// (everything else).
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	if !cfg.PrintErrors {
		return logging.Discard()
	}
	lc := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if !cfg.PrintProgress && logging.ParseLevel(cfg.LogLevel) < slog.LevelWarn {
		lc.Level = "warn"
	}
	return logging.New(w, lc)
}
