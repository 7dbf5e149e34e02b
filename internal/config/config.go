// Package config implements the engine's §6 configuration schema: version,
// preset, and the per-stage option groups (stages, taint, pta, clone,
// chunking, pagerank, parallel, cache), loaded from defaults, then a YAML
// file, then CODEINTEL_-prefixed environment variables.
package config

import "errors"

// SchemaVersion is the only configuration schema version this engine
// understands. A document with any other `version` is rejected at load
// time with ErrUnsupportedVersion.
const SchemaVersion = 1

// Preset names a named bundle of stage/analysis defaults.
type Preset string

// Recognized presets (spec.md §6). "custom" starts from the balanced
// preset's defaults; the config file overrides whatever it sets.
const (
	PresetFast     Preset = "fast"
	PresetBalanced Preset = "balanced"
	PresetThorough Preset = "thorough"
	PresetCustom   Preset = "custom"
)

// Config is the top-level configuration struct for codeintel-engine.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Version  int            `mapstructure:"version"`
	Preset   Preset         `mapstructure:"preset"`
	Stages   map[string]bool `mapstructure:"stages"`
	Taint    TaintConfig    `mapstructure:"taint"`
	PTA      PTAConfig      `mapstructure:"pta"`
	Clone    CloneConfig    `mapstructure:"clone"`
	Chunking ChunkingConfig `mapstructure:"chunking"`
	PageRank PageRankConfig `mapstructure:"pagerank"`
	Parallel ParallelConfig `mapstructure:"parallel"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// TaintConfig tunes the IFDS/IDE taint analysis (spec.md §4.G).
type TaintConfig struct {
	MaxDepth               int  `mapstructure:"max_depth"`
	MaxPaths               int  `mapstructure:"max_paths"`
	UsePointsTo            bool `mapstructure:"use_points_to"`
	FieldSensitive         bool `mapstructure:"field_sensitive"`
	UseSSA                 bool `mapstructure:"use_ssa"`
	DetectSanitizers       bool `mapstructure:"detect_sanitizers"`
	EnableInterprocedural  bool `mapstructure:"enable_interprocedural"`
	WorklistMaxIterations  int  `mapstructure:"worklist_max_iterations"`
}

// PTAMode selects the points-to solver algorithm (spec.md §4.E).
type PTAMode string

// Recognized PTA modes.
const (
	PTASteensgaard PTAMode = "steensgaard"
	PTAAndersen    PTAMode = "andersen"
	PTAHybrid      PTAMode = "hybrid"
)

// PTAConfig tunes the points-to analysis stage.
type PTAConfig struct {
	Mode             PTAMode `mapstructure:"mode"`
	AutoThreshold    int     `mapstructure:"auto_threshold"`
	MaxIterations    int     `mapstructure:"max_iterations"`
	FieldSensitive   bool    `mapstructure:"field_sensitive"`
	ContextSensitive bool    `mapstructure:"context_sensitive"`
	K                int     `mapstructure:"k"`
}

// CloneType names a detectable clone category (spec.md §4.H).
type CloneType string

// Recognized clone types.
const (
	CloneType1 CloneType = "type1"
	CloneType2 CloneType = "type2"
	CloneType3 CloneType = "type3"
	CloneType4 CloneType = "type4"
)

// CloneConfig tunes the clone detection stage.
type CloneConfig struct {
	Types              []CloneType `mapstructure:"types"`
	MinTokens          int         `mapstructure:"min_tokens"`
	MinLOC             int         `mapstructure:"min_loc"`
	SimilarityThreshold float64    `mapstructure:"similarity_threshold"`
}

// ChunkingConfig tunes source chunking for clone detection / RepoMap.
type ChunkingConfig struct {
	MinChunkSize int `mapstructure:"min_chunk_size"`
	MaxChunkSize int `mapstructure:"max_chunk_size"`
}

// PageRankConfig tunes the RepoMap PageRank stage (spec.md §4's repo map).
type PageRankConfig struct {
	Damping    float64 `mapstructure:"damping"`
	Iterations int     `mapstructure:"iterations"`
	Tolerance  float64 `mapstructure:"tolerance"`
}

// ParallelConfig tunes orchestrator concurrency.
type ParallelConfig struct {
	NumWorkers int `mapstructure:"num_workers"`
}

// CacheConfig tunes the tiered cache (spec.md §4.J).
type CacheConfig struct {
	L0Capacity   int    `mapstructure:"l0_capacity"`
	L1Bytes      int64  `mapstructure:"l1_bytes"`
	L1TTLSeconds int    `mapstructure:"l1_ttl_seconds"`
	L2Directory  string `mapstructure:"l2_directory"`
}

// Sentinel errors for configuration validation.
var (
	// ErrUnsupportedVersion indicates the document's version field isn't
	// SchemaVersion.
	ErrUnsupportedVersion = errors.New("config: unsupported version")
	// ErrInvalidPreset indicates an unrecognized preset name.
	ErrInvalidPreset = errors.New("config: preset must be one of fast, balanced, thorough, custom")
	// ErrInvalidTaintMaxDepth indicates taint.max_depth is not positive.
	ErrInvalidTaintMaxDepth = errors.New("config: taint.max_depth must be at least 1")
	// ErrInvalidTaintMaxPaths indicates taint.max_paths is not positive.
	ErrInvalidTaintMaxPaths = errors.New("config: taint.max_paths must be at least 1")
	// ErrInvalidTaintWorklistIterations indicates taint.worklist_max_iterations is not positive.
	ErrInvalidTaintWorklistIterations = errors.New("config: taint.worklist_max_iterations must be at least 1")
	// ErrInvalidPTAMode indicates an unrecognized pta.mode value.
	ErrInvalidPTAMode = errors.New("config: pta.mode must be one of steensgaard, andersen, hybrid")
	// ErrInvalidPTAThreshold indicates pta.auto_threshold is below its floor.
	ErrInvalidPTAThreshold = errors.New("config: pta.auto_threshold must be at least 100")
	// ErrInvalidPTAMaxIterations indicates pta.max_iterations is not positive.
	ErrInvalidPTAMaxIterations = errors.New("config: pta.max_iterations must be at least 1")
	// ErrInvalidPTAK indicates pta.k is negative.
	ErrInvalidPTAK = errors.New("config: pta.k must be non-negative")
	// ErrInvalidCloneType indicates an unrecognized clone.types entry.
	ErrInvalidCloneType = errors.New("config: clone.types must be a subset of type1, type2, type3, type4")
	// ErrInvalidCloneSimilarity indicates clone.similarity_threshold is out of [0,1].
	ErrInvalidCloneSimilarity = errors.New("config: clone.similarity_threshold must be between 0 and 1")
	// ErrInvalidChunkRange indicates chunking.min_chunk_size exceeds max_chunk_size.
	ErrInvalidChunkRange = errors.New("config: chunking.min_chunk_size must be <= chunking.max_chunk_size")
	// ErrInvalidPageRankDamping indicates pagerank.damping is out of (0,1).
	ErrInvalidPageRankDamping = errors.New("config: pagerank.damping must be between 0 and 1 exclusive")
	// ErrInvalidParallelWorkers indicates parallel.num_workers is not positive.
	ErrInvalidParallelWorkers = errors.New("config: parallel.num_workers must be at least 1")
	// ErrInvalidCacheL0Capacity indicates cache.l0_capacity is negative.
	ErrInvalidCacheL0Capacity = errors.New("config: cache.l0_capacity must be non-negative")
)

// Validate checks Config invariants and returns the first error found, the
// order spec.md §7 gives Config errors: they abort the run at plan time,
// so the first violation is reported rather than accumulated.
func (c *Config) Validate() error {
	if c.Version != SchemaVersion {
		return ErrUnsupportedVersion
	}

	switch c.Preset {
	case PresetFast, PresetBalanced, PresetThorough, PresetCustom:
	default:
		return ErrInvalidPreset
	}

	if err := c.Taint.validate(); err != nil {
		return err
	}

	if err := c.PTA.validate(); err != nil {
		return err
	}

	if err := c.Clone.validate(); err != nil {
		return err
	}

	if err := c.Chunking.validate(); err != nil {
		return err
	}

	if err := c.PageRank.validate(); err != nil {
		return err
	}

	if err := c.Parallel.validate(); err != nil {
		return err
	}

	return c.Cache.validate()
}

func (t TaintConfig) validate() error {
	if t.MaxDepth < 1 {
		return ErrInvalidTaintMaxDepth
	}

	if t.MaxPaths < 1 {
		return ErrInvalidTaintMaxPaths
	}

	if t.WorklistMaxIterations < 1 {
		return ErrInvalidTaintWorklistIterations
	}

	return nil
}

func (p PTAConfig) validate() error {
	switch p.Mode {
	case PTASteensgaard, PTAAndersen, PTAHybrid:
	default:
		return ErrInvalidPTAMode
	}

	if p.AutoThreshold < minPTAAutoThreshold {
		return ErrInvalidPTAThreshold
	}

	if p.MaxIterations < 1 {
		return ErrInvalidPTAMaxIterations
	}

	if p.K < 0 {
		return ErrInvalidPTAK
	}

	return nil
}

// minPTAAutoThreshold is the floor spec.md §6 gives pta.auto_threshold.
const minPTAAutoThreshold = 100

func (c CloneConfig) validate() error {
	for _, t := range c.Types {
		switch t {
		case CloneType1, CloneType2, CloneType3, CloneType4:
		default:
			return ErrInvalidCloneType
		}
	}

	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidCloneSimilarity
	}

	return nil
}

func (c ChunkingConfig) validate() error {
	if c.MinChunkSize > c.MaxChunkSize {
		return ErrInvalidChunkRange
	}

	return nil
}

func (p PageRankConfig) validate() error {
	if p.Damping <= 0 || p.Damping >= 1 {
		return ErrInvalidPageRankDamping
	}

	return nil
}

func (p ParallelConfig) validate() error {
	if p.NumWorkers < 1 {
		return ErrInvalidParallelWorkers
	}

	return nil
}

func (c CacheConfig) validate() error {
	if c.L0Capacity < 0 {
		return ErrInvalidCacheL0Capacity
	}

	return nil
}
