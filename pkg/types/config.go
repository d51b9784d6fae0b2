package types

import (
	"errors"
	"time"
)

// NestedPolicy decides how structures below the top level are emitted.
type NestedPolicy string

const (
	// NestedFull emits the complete body of a nested structure.
	NestedFull NestedPolicy = "full"
	// NestedSignature emits only the first line of a nested structure,
	// tagged SignatureOnly. A deliberate completeness/chunk-count trade-off.
	NestedSignature NestedPolicy = "signature"
)

// SegmentationConfig holds the immutable per-run tuning for segmentation.
// Loading and validation of external sources is the config provider's job;
// the core treats a config value as read-only once a run starts.
type SegmentationConfig struct {
	MinChunkSize  int
	MaxChunkSize  int
	MinChunkLines int
	MaxChunkLines int

	EnableNesting   bool
	MaxNestingLevel int
	NestedPolicy    NestedPolicy

	OverlapEnabled  bool
	OverlapMaxSize  int
	OverlapMaxLines int
	OverlapMaxRatio float64
	OverlapStrategy OverlapStrategy

	MergeEnabled   bool
	MergeThreshold float64

	CacheEnabled  bool
	CacheCapacity int
	CacheTTL      time.Duration

	// ImbalanceTolerance is the bracket/tag depth beyond which the balance
	// segmenter forces a boundary instead of stalling on malformed input.
	ImbalanceTolerance int

	// MaxFileSize and MaxParseTime bound the AST path. Exceeding either
	// short-circuits to a non-AST strategy; neither aborts the run.
	MaxFileSize  int
	MaxParseTime time.Duration
}

// DefaultSegmentationConfig returns the standard tuning.
func DefaultSegmentationConfig() SegmentationConfig {
	return SegmentationConfig{
		MinChunkSize:       50,
		MaxChunkSize:       2000,
		MinChunkLines:      2,
		MaxChunkLines:      200,
		EnableNesting:      true,
		MaxNestingLevel:    3,
		NestedPolicy:       NestedFull,
		OverlapEnabled:     true,
		OverlapMaxSize:     400,
		OverlapMaxLines:    10,
		OverlapMaxRatio:    0.35,
		OverlapStrategy:    OverlapAuto,
		MergeEnabled:       true,
		MergeThreshold:     0.6,
		CacheEnabled:       true,
		CacheCapacity:      512,
		CacheTTL:           15 * time.Minute,
		ImbalanceTolerance: 50,
		MaxFileSize:        1 << 20, // 1 MiB
		MaxParseTime:       5 * time.Second,
	}
}

// Validate checks internal consistency of the config.
func (c *SegmentationConfig) Validate() error {
	if c.MinChunkSize < 0 || c.MaxChunkSize <= 0 {
		return errors.New("chunk size bounds must be positive")
	}
	if c.MinChunkSize > c.MaxChunkSize {
		return errors.New("min chunk size exceeds max chunk size")
	}
	if c.MaxChunkLines <= 0 {
		return errors.New("max chunk lines must be positive")
	}
	if c.EnableNesting && c.MaxNestingLevel < 1 {
		return errors.New("max nesting level must be at least 1 when nesting is enabled")
	}
	if c.NestedPolicy != NestedFull && c.NestedPolicy != NestedSignature {
		return errors.New("invalid nested policy")
	}
	if c.OverlapMaxRatio < 0 || c.OverlapMaxRatio > 1 {
		return errors.New("overlap max ratio must be in [0, 1]")
	}
	if c.MergeThreshold < 0 || c.MergeThreshold > 1 {
		return errors.New("merge threshold must be in [0, 1]")
	}
	if c.ImbalanceTolerance <= 0 {
		return errors.New("imbalance tolerance must be positive")
	}
	return nil
}
