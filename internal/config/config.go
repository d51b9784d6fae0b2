// Package config loads runtime settings from the environment. Every knob
// has a working default; a bare process with no variables set runs with the
// standard segmentation profile.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/dshills/codechunk-mcp/pkg/types"
)

// Config is the full process configuration.
type Config struct {
	// Server
	DBPath   string `env:"CODECHUNK_DB_PATH" envDefault:"codechunk.db"`
	LogLevel string `env:"CODECHUNK_LOG_LEVEL" envDefault:"info"`

	// Indexing
	MaxConcurrency int   `env:"CODECHUNK_MAX_CONCURRENCY" envDefault:"4"`
	MaxFileSize    int   `env:"CODECHUNK_MAX_FILE_SIZE" envDefault:"1048576"`
	SkipHidden     bool  `env:"CODECHUNK_SKIP_HIDDEN" envDefault:"true"`

	// Segmentation bounds
	MinChunkSize  int `env:"CODECHUNK_MIN_CHUNK_SIZE" envDefault:"50"`
	MaxChunkSize  int `env:"CODECHUNK_MAX_CHUNK_SIZE" envDefault:"2000"`
	MinChunkLines int `env:"CODECHUNK_MIN_CHUNK_LINES" envDefault:"2"`
	MaxChunkLines int `env:"CODECHUNK_MAX_CHUNK_LINES" envDefault:"200"`

	// Nesting
	EnableNesting   bool   `env:"CODECHUNK_ENABLE_NESTING" envDefault:"true"`
	MaxNestingLevel int    `env:"CODECHUNK_MAX_NESTING_LEVEL" envDefault:"3"`
	NestedPolicy    string `env:"CODECHUNK_NESTED_POLICY" envDefault:"full"`

	// Overlap
	OverlapEnabled  bool    `env:"CODECHUNK_OVERLAP_ENABLED" envDefault:"true"`
	OverlapMaxSize  int     `env:"CODECHUNK_OVERLAP_MAX_SIZE" envDefault:"400"`
	OverlapMaxLines int     `env:"CODECHUNK_OVERLAP_MAX_LINES" envDefault:"10"`
	OverlapMaxRatio float64 `env:"CODECHUNK_OVERLAP_MAX_RATIO" envDefault:"0.35"`
	OverlapStrategy string  `env:"CODECHUNK_OVERLAP_STRATEGY" envDefault:"auto"`

	// Merge
	MergeEnabled   bool    `env:"CODECHUNK_MERGE_ENABLED" envDefault:"true"`
	MergeThreshold float64 `env:"CODECHUNK_MERGE_THRESHOLD" envDefault:"0.6"`

	// Cache
	CacheEnabled  bool          `env:"CODECHUNK_CACHE_ENABLED" envDefault:"true"`
	CacheCapacity int           `env:"CODECHUNK_CACHE_CAPACITY" envDefault:"512"`
	CacheTTL      time.Duration `env:"CODECHUNK_CACHE_TTL" envDefault:"15m"`

	// Segmentation limits
	ImbalanceTolerance int           `env:"CODECHUNK_IMBALANCE_TOLERANCE" envDefault:"50"`
	MaxParseTime       time.Duration `env:"CODECHUNK_MAX_PARSE_TIME" envDefault:"5s"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	seg := cfg.Segmentation()
	if err := seg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.MaxConcurrency < 1 {
		return nil, fmt.Errorf("invalid configuration: max concurrency must be at least 1, got %d", cfg.MaxConcurrency)
	}
	return cfg, nil
}

// Segmentation projects the process config onto the segmentation profile.
func (c *Config) Segmentation() types.SegmentationConfig {
	return types.SegmentationConfig{
		MinChunkSize:       c.MinChunkSize,
		MaxChunkSize:       c.MaxChunkSize,
		MinChunkLines:      c.MinChunkLines,
		MaxChunkLines:      c.MaxChunkLines,
		EnableNesting:      c.EnableNesting,
		MaxNestingLevel:    c.MaxNestingLevel,
		NestedPolicy:       types.NestedPolicy(c.NestedPolicy),
		OverlapEnabled:     c.OverlapEnabled,
		OverlapMaxSize:     c.OverlapMaxSize,
		OverlapMaxLines:    c.OverlapMaxLines,
		OverlapMaxRatio:    c.OverlapMaxRatio,
		OverlapStrategy:    types.OverlapStrategy(c.OverlapStrategy),
		MergeEnabled:       c.MergeEnabled,
		MergeThreshold:     c.MergeThreshold,
		CacheEnabled:       c.CacheEnabled,
		CacheCapacity:      c.CacheCapacity,
		CacheTTL:           c.CacheTTL,
		ImbalanceTolerance: c.ImbalanceTolerance,
		MaxFileSize:        c.MaxFileSize,
		MaxParseTime:       c.MaxParseTime,
	}
}
