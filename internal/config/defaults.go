package config

// presetDefaults returns the full set of option-group defaults a preset
// name expands to (spec.md §6: "Presets define defaults; overrides are
// merged last-writer-wins"). PresetCustom and any unrecognized preset
// fall back to the balanced bundle, since custom configurations are
// expected to override every field they care about explicitly.
func presetDefaults(p Preset) Config {
	switch p {
	case PresetFast:
		return fastDefaults
	case PresetThorough:
		return thoroughDefaults
	case PresetBalanced, PresetCustom:
		return balancedDefaults
	default:
		return balancedDefaults
	}
}

var balancedDefaults = Config{
	Version: SchemaVersion,
	Preset:  PresetBalanced,
	Taint: TaintConfig{
		MaxDepth:              25,
		MaxPaths:              1000,
		UsePointsTo:           true,
		FieldSensitive:        true,
		UseSSA:                true,
		DetectSanitizers:      true,
		EnableInterprocedural: true,
		WorklistMaxIterations: 10000,
	},
	PTA: PTAConfig{
		Mode:          PTASteensgaard,
		AutoThreshold: 50000,
		MaxIterations: 100,
		K:             0,
	},
	Clone: CloneConfig{
		Types:               []CloneType{CloneType1, CloneType2, CloneType3},
		MinTokens:           50,
		MinLOC:              6,
		SimilarityThreshold: 0.8,
	},
	Chunking: ChunkingConfig{
		MinChunkSize: 10,
		MaxChunkSize: 200,
	},
	PageRank: PageRankConfig{
		Damping:    0.85,
		Iterations: 50,
		Tolerance:  1e-6,
	},
	Parallel: ParallelConfig{
		NumWorkers: 8,
	},
	Cache: CacheConfig{
		L0Capacity:   4096,
		L1Bytes:      256 << 20,
		L1TTLSeconds: 3600,
		L2Directory:  "",
	},
}

var fastDefaults = Config{
	Version: SchemaVersion,
	Preset:  PresetFast,
	Taint: TaintConfig{
		MaxDepth:              10,
		MaxPaths:              200,
		UsePointsTo:           false,
		FieldSensitive:        false,
		UseSSA:                false,
		DetectSanitizers:      true,
		EnableInterprocedural: false,
		WorklistMaxIterations: 2000,
	},
	PTA: PTAConfig{
		Mode:          PTASteensgaard,
		AutoThreshold: 10000,
		MaxIterations: 30,
		K:             0,
	},
	Clone: CloneConfig{
		Types:               []CloneType{CloneType1},
		MinTokens:           80,
		MinLOC:              10,
		SimilarityThreshold: 0.9,
	},
	Chunking: ChunkingConfig{
		MinChunkSize: 20,
		MaxChunkSize: 200,
	},
	PageRank: PageRankConfig{
		Damping:    0.85,
		Iterations: 20,
		Tolerance:  1e-4,
	},
	Parallel: ParallelConfig{
		NumWorkers: 4,
	},
	Cache: CacheConfig{
		L0Capacity:   1024,
		L1Bytes:      64 << 20,
		L1TTLSeconds: 900,
		L2Directory:  "",
	},
}

var thoroughDefaults = Config{
	Version: SchemaVersion,
	Preset:  PresetThorough,
	Taint: TaintConfig{
		MaxDepth:              100,
		MaxPaths:              10000,
		UsePointsTo:           true,
		FieldSensitive:        true,
		UseSSA:                true,
		DetectSanitizers:      true,
		EnableInterprocedural: true,
		WorklistMaxIterations: 100000,
	},
	PTA: PTAConfig{
		Mode:             PTAHybrid,
		AutoThreshold:    50000,
		MaxIterations:    500,
		FieldSensitive:   true,
		ContextSensitive: true,
		K:                2,
	},
	Clone: CloneConfig{
		Types:               []CloneType{CloneType1, CloneType2, CloneType3, CloneType4},
		MinTokens:           30,
		MinLOC:              4,
		SimilarityThreshold: 0.7,
	},
	Chunking: ChunkingConfig{
		MinChunkSize: 5,
		MaxChunkSize: 500,
	},
	PageRank: PageRankConfig{
		Damping:    0.85,
		Iterations: 200,
		Tolerance:  1e-9,
	},
	Parallel: ParallelConfig{
		NumWorkers: 16,
	},
	Cache: CacheConfig{
		L0Capacity:   16384,
		L1Bytes:      1 << 30,
		L1TTLSeconds: 86400,
		L2Directory:  "",
	},
}
