package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Output format names accepted by the renderer.
const (
	OutputTree = "tree"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// SummaryDepth and SummaryThreshold implement the summary shortcut:
// depth 1, aggregate below 1 MiB.
const (
	SummaryDepth     = 1
	SummaryThreshold = 1 << 20
)

var validOutputFormats = map[string]bool{
	OutputTree: true,
	OutputJSON: true,
	OutputYAML: true,
}

// Config holds every knob the pipeline consumes. The CLI layer fills in
// paths and flag overrides after Load.
type Config struct {
	// Paths are the roots to analyze, in input order.
	Paths []string

	// Depth caps the displayed depth; 0 shows the whole tree.
	Depth int

	// Aggr is the aggregation threshold in bytes; 0 disables folding.
	Aggr int64

	// UsageMode reports real disk usage instead of apparent size.
	UsageMode bool

	// BytesOnly prints sizes in exact bytes.
	BytesOnly bool

	// FilesOnly skips directory nodes for a fast flat overview.
	FilesOnly bool

	// NoHidden excludes hidden files and directories.
	NoHidden bool

	// ASCII restricts output to ASCII characters, without colors.
	ASCII bool

	// Exclude removes matching files or directories from all totals.
	Exclude []string

	// ColorSpec is the raw LS_COLORS specification string.
	ColorSpec string

	// Output selects the output format: tree, json or yaml.
	Output string

	// Workers bounds the concurrent walk.
	Workers int

	// RateLimit caps filesystem operations per second; 0 is unlimited.
	RateLimit int

	// NoColor disables colored output regardless of terminal.
	NoColor bool

	// Verbose sets the log verbosity level.
	Verbose int

	// Width is the terminal width in columns; 0 uses the default.
	Width int

	// WithStats appends a statistics footer to tree output.
	WithStats bool
}

// ThresholdError reports an unusable aggregation threshold argument.
type ThresholdError struct {
	Value  string
	Reason string
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("invalid aggregation threshold %q: %s", e.Value, e.Reason)
}

// PatternError reports a malformed exclude pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid exclude pattern %q: %v", e.Pattern, e.Err)
}

// Load reads configuration from environment variables, applies defaults
// and validates the result.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("depth", 0)
	v.SetDefault("aggr", "0")
	v.SetDefault("output", OutputTree)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", 0)

	v.SetEnvPrefix("DUTREE")
	v.AutomaticEnv()

	v.BindEnv("workers")
	v.BindEnv("depth")
	v.BindEnv("aggr")
	v.BindEnv("exclude")
	v.BindEnv("output")
	v.BindEnv("rate_limit")
	v.BindEnv("no_color")
	v.BindEnv("verbose")
	v.BindEnv("ls_colors", "LS_COLORS")

	cfg := Config{
		Depth:     v.GetInt("depth"),
		Output:    v.GetString("output"),
		Workers:   v.GetInt("workers"),
		RateLimit: v.GetInt("rate_limit"),
		NoColor:   v.GetBool("no_color"),
		Verbose:   v.GetInt("verbose"),
		ColorSpec: v.GetString("ls_colors"),
	}

	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	aggr, err := ParseThreshold(v.GetString("aggr"))
	if err != nil {
		return Config{}, err
	}
	cfg.Aggr = aggr

	if excludeStr := v.GetString("exclude"); excludeStr != "" {
		for _, p := range strings.Split(excludeStr, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Exclude = append(cfg.Exclude, trimmed)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var thresholdRe = regexp.MustCompile(`^(\d+)([bBkKmMgGtT]?)$`)

// ParseThreshold parses an N[KMGT] literal into bytes. Units are binary:
// K is KiB, M is MiB and so on. A bare number means bytes.
func ParseThreshold(s string) (int64, error) {
	m := thresholdRe.FindStringSubmatch(s)
	if m == nil {
		return 0, &ThresholdError{Value: s, Reason: "expected N[KMGT]"}
	}

	num, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, &ThresholdError{Value: s, Reason: "number out of range"}
	}

	var shift uint
	switch strings.ToLower(m[2]) {
	case "", "b":
		shift = 0
	case "k":
		shift = 10
	case "m":
		shift = 20
	case "g":
		shift = 30
	case "t":
		shift = 40
	}

	result := num << shift
	if result>>shift != num {
		return 0, &ThresholdError{Value: s, Reason: "overflows"}
	}

	return result, nil
}

// Validate checks the configuration before any traversal starts.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers count must be positive")
	}
	if c.Workers > runtime.NumCPU()*4 {
		return fmt.Errorf("workers count cannot exceed system CPU count * 4")
	}

	if c.Depth < 0 {
		return fmt.Errorf("depth must be zero (unlimited) or positive")
	}

	if c.Aggr < 0 {
		return &ThresholdError{Value: strconv.FormatInt(c.Aggr, 10), Reason: "must be non-negative"}
	}

	if !validOutputFormats[c.Output] {
		return fmt.Errorf("invalid output format %q: must be one of [tree json yaml]", c.Output)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative")
	}

	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return &PatternError{Pattern: pattern, Err: err}
		}
	}

	return nil
}

// String returns a loggable representation of the configuration.
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Paths: %v, Depth: %d, Aggr: %d, UsageMode: %v, BytesOnly: %v, "+
			"FilesOnly: %v, NoHidden: %v, ASCII: %v, Exclude: %v, Output: %s, "+
			"Workers: %d, RateLimit: %d, NoColor: %v, Verbose: %d}",
		c.Paths, c.Depth, c.Aggr, c.UsageMode, c.BytesOnly,
		c.FilesOnly, c.NoHidden, c.ASCII, c.Exclude, c.Output,
		c.Workers, c.RateLimit, c.NoColor, c.Verbose,
	)
}
