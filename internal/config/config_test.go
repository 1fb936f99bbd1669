package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 0, cfg.Depth)
	assert.Equal(t, int64(0), cfg.Aggr)
	assert.Equal(t, OutputTree, cfg.Output)
	assert.False(t, cfg.NoColor)
	assert.Empty(t, cfg.Exclude)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DUTREE_WORKERS", "2")
	t.Setenv("DUTREE_DEPTH", "3")
	t.Setenv("DUTREE_AGGR", "2M")
	t.Setenv("DUTREE_EXCLUDE", "node_modules, *.log ,")
	t.Setenv("DUTREE_OUTPUT", "json")
	t.Setenv("LS_COLORS", "di=01;34")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.Depth)
	assert.Equal(t, int64(2<<20), cfg.Aggr)
	assert.Equal(t, []string{"node_modules", "*.log"}, cfg.Exclude)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, "di=01;34", cfg.ColorSpec)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	t.Setenv("DUTREE_AGGR", "abc")

	_, err := Load()
	var thresholdErr *ThresholdError
	require.ErrorAs(t, err, &thresholdErr)
}

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"500", 500, false},
		{"500b", 500, false},
		{"1K", 1024, false},
		{"1k", 1024, false},
		{"1M", 1 << 20, false},
		{"2G", 2 << 30, false},
		{"1T", 1 << 40, false},
		{"", 0, true},
		{"M", 0, true},
		{"1.5M", 0, true},
		{"1X", 0, true},
		{"-1K", 0, true},
		{"99999999999999999999", 0, true},
		{"9223372036854775807K", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseThreshold(tt.in)
			if tt.wantErr {
				var thresholdErr *ThresholdError
				require.ErrorAs(t, err, &thresholdErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Workers: 1, Output: OutputTree}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: "workers",
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Workers = runtime.NumCPU()*4 + 1 },
			wantErr: "workers",
		},
		{
			name:    "negative depth",
			mutate:  func(c *Config) { c.Depth = -1 },
			wantErr: "depth",
		},
		{
			name:    "bad output format",
			mutate:  func(c *Config) { c.Output = "xml" },
			wantErr: "output format",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RateLimit = -1 },
			wantErr: "rate limit",
		},
		{
			name:    "bad exclude pattern",
			mutate:  func(c *Config) { c.Exclude = []string{"[unterminated"} },
			wantErr: "exclude pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePatternErrorType(t *testing.T) {
	cfg := Config{Workers: 1, Output: OutputTree, Exclude: []string{"[bad"}}

	var patternErr *PatternError
	require.ErrorAs(t, cfg.Validate(), &patternErr)
	assert.Equal(t, "[bad", patternErr.Pattern)
}
