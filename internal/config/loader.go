package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".codeintel"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for engine settings.
const envPrefix = "CODEINTEL"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults, in that
// precedence order (defaults lowest, env vars highest). If configPath is
// non-empty it names an explicit file; otherwise the file is searched in
// CWD. A missing config file is not an error; preset defaults apply.
// Unknown fields anywhere in the document are rejected.
func LoadConfig(configPath string, preset Preset) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg, preset)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg, rejectUnknownFields)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// rejectUnknownFields makes viper.Unmarshal fail when the document
// contains a key the Config struct has no field for, per spec.md §6's
// "Unknown fields are rejected."
func rejectUnknownFields(dc *mapstructure.DecoderConfig) {
	dc.ErrorUnused = true
}

func applyDefaults(viperCfg *viper.Viper, preset Preset) {
	viperCfg.SetDefault("version", SchemaVersion)
	viperCfg.SetDefault("preset", string(preset))

	d := presetDefaults(preset)

	viperCfg.SetDefault("taint.max_depth", d.Taint.MaxDepth)
	viperCfg.SetDefault("taint.max_paths", d.Taint.MaxPaths)
	viperCfg.SetDefault("taint.use_points_to", d.Taint.UsePointsTo)
	viperCfg.SetDefault("taint.field_sensitive", d.Taint.FieldSensitive)
	viperCfg.SetDefault("taint.use_ssa", d.Taint.UseSSA)
	viperCfg.SetDefault("taint.detect_sanitizers", d.Taint.DetectSanitizers)
	viperCfg.SetDefault("taint.enable_interprocedural", d.Taint.EnableInterprocedural)
	viperCfg.SetDefault("taint.worklist_max_iterations", d.Taint.WorklistMaxIterations)

	viperCfg.SetDefault("pta.mode", string(d.PTA.Mode))
	viperCfg.SetDefault("pta.auto_threshold", d.PTA.AutoThreshold)
	viperCfg.SetDefault("pta.max_iterations", d.PTA.MaxIterations)
	viperCfg.SetDefault("pta.field_sensitive", d.PTA.FieldSensitive)
	viperCfg.SetDefault("pta.context_sensitive", d.PTA.ContextSensitive)
	viperCfg.SetDefault("pta.k", d.PTA.K)

	viperCfg.SetDefault("clone.types", d.Clone.Types)
	viperCfg.SetDefault("clone.min_tokens", d.Clone.MinTokens)
	viperCfg.SetDefault("clone.min_loc", d.Clone.MinLOC)
	viperCfg.SetDefault("clone.similarity_threshold", d.Clone.SimilarityThreshold)

	viperCfg.SetDefault("chunking.min_chunk_size", d.Chunking.MinChunkSize)
	viperCfg.SetDefault("chunking.max_chunk_size", d.Chunking.MaxChunkSize)

	viperCfg.SetDefault("pagerank.damping", d.PageRank.Damping)
	viperCfg.SetDefault("pagerank.iterations", d.PageRank.Iterations)
	viperCfg.SetDefault("pagerank.tolerance", d.PageRank.Tolerance)

	viperCfg.SetDefault("parallel.num_workers", d.Parallel.NumWorkers)

	viperCfg.SetDefault("cache.l0_capacity", d.Cache.L0Capacity)
	viperCfg.SetDefault("cache.l1_bytes", d.Cache.L1Bytes)
	viperCfg.SetDefault("cache.l1_ttl_seconds", d.Cache.L1TTLSeconds)
	viperCfg.SetDefault("cache.l2_directory", d.Cache.L2Directory)
}
