package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// defaults mirror spec.md §6's documented defaults for fields the operator
// may leave unset.
const (
	defaultRankConstant           = 60
	defaultRankWindowSize         = 100
	defaultKNNK                   = 50
	defaultKNNNumCandidates       = 100
	defaultRelationshipsBatchSize = 500
	defaultMaxArticlesPerProperty = 10
)

// Load reads the YAML configuration file at path, applies defaults, and
// returns a validated [Config]. It is a convenience wrapper around
// [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, rejecting unknown keys,
// applies defaults, and validates the result. Useful in tests where configs
// are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Hybrid.RankConstant <= 0 {
		cfg.Hybrid.RankConstant = defaultRankConstant
	}
	if cfg.Hybrid.RankWindowSize <= 0 {
		cfg.Hybrid.RankWindowSize = defaultRankWindowSize
	}
	if cfg.Hybrid.KNNK <= 0 {
		cfg.Hybrid.KNNK = defaultKNNK
	}
	if cfg.Hybrid.KNNNumCandidates <= 0 {
		cfg.Hybrid.KNNNumCandidates = defaultKNNNumCandidates
	}
	if cfg.Relationships.BatchSize <= 0 {
		cfg.Relationships.BatchSize = defaultRelationshipsBatchSize
	}
	if cfg.Relationships.MaxArticlesPerProperty <= 0 {
		cfg.Relationships.MaxArticlesPerProperty = defaultMaxArticlesPerProperty
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogInfo
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Embedding.Provider == "" {
		errs = append(errs, fmt.Errorf("embedding.provider is required"))
	}
	if cfg.Embedding.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimension must be positive"))
	}
	if cfg.Embedding.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("embedding.batch_size must not be negative"))
	}

	if len(cfg.SearchBackend.Hosts) == 0 {
		errs = append(errs, fmt.Errorf("search_backend.hosts is required"))
	}

	if cfg.Indices.Property == "" {
		errs = append(errs, fmt.Errorf("indices.property is required"))
	}
	if cfg.Indices.Neighborhood == "" {
		errs = append(errs, fmt.Errorf("indices.neighborhood is required"))
	}
	if cfg.Indices.Wikipedia == "" {
		errs = append(errs, fmt.Errorf("indices.wikipedia is required"))
	}
	if cfg.Indices.PropertyRelationships == "" {
		errs = append(errs, fmt.Errorf("indices.property_relationships is required"))
	}

	if cfg.Hybrid.RankConstant < 0 {
		errs = append(errs, fmt.Errorf("hybrid.rank_constant must not be negative"))
	}
	if cfg.Hybrid.RankWindowSize < 0 {
		errs = append(errs, fmt.Errorf("hybrid.rank_window_size must not be negative"))
	}

	if cfg.Relationships.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("relationships.batch_size must be positive"))
	}

	return errors.Join(errs...)
}
