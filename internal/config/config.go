// Package config provides configuration management for join runs
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paveg/tablejoin/internal/common"
	"github.com/paveg/tablejoin/internal/io"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of one join invocation
type Config struct {
	// Join behaviour
	JoinType string `json:"join_type" yaml:"join_type"` // inner, left, right, outer or xor
	Sort     string `json:"sort" yaml:"sort"`           // no, forward or reverse
	Headers  bool   `json:"headers" yaml:"headers"`     // first line of each table holds labels
	Integers bool   `json:"integers" yaml:"integers"`   // compare digit-only key columns as integers

	// Output
	OutputFormat       string `json:"output_format" yaml:"output_format"`             // empty = left input format
	ParquetCompression string `json:"parquet_compression" yaml:"parquet_compression"` // snappy, gzip, zstd, lz4, uncompressed
	WritePrevent       bool   `json:"write_prevent" yaml:"write_prevent"`             // refuse to overwrite an existing output file

	// Input
	MaxLineBytes          int  `json:"max_line_bytes" yaml:"max_line_bytes"`
	WarnUnequalDuplicates bool `json:"warn_unequal_duplicates" yaml:"warn_unequal_duplicates"`

	// Reporting
	PrintErrors       bool   `json:"print_errors" yaml:"print_errors"`
	PrintProgress     bool   `json:"print_progress" yaml:"print_progress"`
	PrintMetrics      bool   `json:"print_metrics" yaml:"print_metrics"`
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"` // time each engine phase
	LogLevel          string `json:"log_level" yaml:"log_level"`                   // debug, info, warn or error
	LogFormat         string `json:"log_format" yaml:"log_format"`                 // text or json
}

// Default configuration values
const (
	DefaultJoinType           = "inner"
	DefaultSort               = "forward"
	DefaultParquetCompression = io.DefaultCompression
	DefaultMaxLineBytes       = 1 << 20
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "TABLEJOIN_"

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		JoinType: DefaultJoinType,
		Sort:     DefaultSort,
		Headers:  false,
		Integers: true,

		ParquetCompression: DefaultParquetCompression,
		WritePrevent:       false,

		MaxLineBytes:          DefaultMaxLineBytes,
		WarnUnequalDuplicates: true,

		PrintErrors:       true,
		PrintProgress:     true,
		PrintMetrics:      true,
		MetricsCollection: false,
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if _, ok := common.ParseJoinType(c.JoinType); !ok {
		return fmt.Errorf("invalid join type %q: use one of inner, left, right, outer, xor", c.JoinType)
	}

	if _, ok := common.ParseSortMode(c.Sort); !ok {
		return fmt.Errorf("invalid sorting method %q: use one of no, forward, reverse", c.Sort)
	}

	if c.OutputFormat != "" {
		if _, err := io.ParseFormat(c.OutputFormat); err != nil {
			return fmt.Errorf("invalid output format %q", c.OutputFormat)
		}
	}

	if !io.ValidCompression(c.ParquetCompression) {
		return fmt.Errorf("invalid parquet compression %q", c.ParquetCompression)
	}

	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("MaxLineBytes must be positive, got %d", c.MaxLineBytes)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.JoinType == "" {
		c.JoinType = defaults.JoinType
	}
	if c.Sort == "" {
		c.Sort = defaults.Sort
	}
	if c.ParquetCompression == "" {
		c.ParquetCompression = defaults.ParquetCompression
	}
	if c.MaxLineBytes == 0 {
		c.MaxLineBytes = defaults.MaxLineBytes
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = defaults.LogFormat
	}

	// Boolean fields are left alone so an explicit false survives.
	// LoadFromFile decodes over NewConfig() to keep unset booleans at their defaults.

	return c
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data
func LoadFromYAML(data []byte) (Config, error) {
	config := NewConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename) //nolint:gosec // config path is supplied by the user
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return LoadFromJSON(data)
	case ".yaml", ".yml":
		return LoadFromYAML(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}
}

// LoadFromEnv loads configuration from environment variables over the defaults
func LoadFromEnv() Config {
	return NewConfig().MergeEnv()
}

// MergeEnv overrides c with any TABLEJOIN_* environment variables that are
// set and parse. Booleans accept the same Y/N aliases as the command line.
func (c Config) MergeEnv() Config {
	strs := map[string]*string{
		"JOIN_TYPE":           &c.JoinType,
		"SORT":                &c.Sort,
		"OUTPUT_FORMAT":       &c.OutputFormat,
		"PARQUET_COMPRESSION": &c.ParquetCompression,
		"LOG_LEVEL":           &c.LogLevel,
		"LOG_FORMAT":          &c.LogFormat,
	}
	for name, field := range strs {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			*field = val
		}
	}

	bools := map[string]*bool{
		"HEADERS":                 &c.Headers,
		"INTEGERS":                &c.Integers,
		"WRITE_PREVENT":           &c.WritePrevent,
		"WARN_UNEQUAL_DUPLICATES": &c.WarnUnequalDuplicates,
		"PRINT_ERRORS":            &c.PrintErrors,
		"PRINT_PROGRESS":          &c.PrintProgress,
		"PRINT_METRICS":           &c.PrintMetrics,
		"METRICS_COLLECTION":      &c.MetricsCollection,
	}
	for name, field := range bools {
		if val := os.Getenv(EnvPrefix + name); val != "" {
			if parsed, ok := common.ParseBool(val); ok {
				*field = parsed
			}
		}
	}

	if val := os.Getenv(EnvPrefix + "MAX_LINE_BYTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.MaxLineBytes = parsed
		}
	}

	return c
}
