// Package config provides the configuration schema, loader, and embedding
// provider registry for the realsearch retrieval engine.
package config

// Config is the root configuration structure for realsearch.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	SearchBackend SearchBackendConfig `yaml:"search_backend"`
	Indices       IndicesConfig       `yaml:"indices"`
	Hybrid        HybridConfig        `yaml:"hybrid"`
	Relationships RelationshipsConfig `yaml:"relationships"`
	LogLevel      LogLevel            `yaml:"log_level"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	// Provider names the registered embedding provider implementation
	// (e.g., "openai", "ollama").
	Provider string `yaml:"provider"`

	// Model selects a specific model within the provider
	// (e.g., "text-embedding-3-small", "nomic-embed-text").
	Model string `yaml:"model"`

	// Dimension is the expected vector length; it must match the model's
	// actual output and the catalog's declared dense_vector dimension.
	Dimension int `yaml:"dimension"`

	// BatchSize is validated as non-negative. No embedding provider or caller
	// reads it, so it does not bound how many texts go into one provider call.
	BatchSize int `yaml:"batch_size"`

	// MaxRetries is loaded from the config file. No embedding provider or
	// caller reads it, so it does not bound or enable retries of embedding calls.
	MaxRetries int `yaml:"max_retries"`

	// APIKey authenticates against the provider's API. Left empty for
	// providers (like Ollama) that need none.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url"`
}

// SearchBackendConfig configures the connection to the search backend.
type SearchBackendConfig struct {
	Hosts []string `yaml:"hosts"`

	Auth *SearchBackendAuth `yaml:"auth"`

	RequestTimeout Duration `yaml:"request_timeout"`
	MaxRetries     int      `yaml:"max_retries"`
}

// SearchBackendAuth carries basic-auth credentials for the search backend.
type SearchBackendAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// IndicesConfig names the four indices the harness reads and writes.
type IndicesConfig struct {
	Property              string `yaml:"property"`
	Neighborhood          string `yaml:"neighborhood"`
	Wikipedia             string `yaml:"wikipedia"`
	PropertyRelationships string `yaml:"property_relationships"`
}

// HybridConfig tunes the hybrid (lexical + k-NN, RRF-fused) query family.
type HybridConfig struct {
	RankConstant     int `yaml:"rank_constant"`
	RankWindowSize   int `yaml:"rank_window_size"`
	KNNK             int `yaml:"knn_k"`
	KNNNumCandidates int `yaml:"knn_num_candidates"`
}

// RelationshipsConfig tunes the relationship builder.
type RelationshipsConfig struct {
	BatchSize              int  `yaml:"batch_size"`
	MaxArticlesPerProperty int  `yaml:"max_articles_per_property"`
	RefreshOnComplete      bool `yaml:"refresh_on_complete"`
}
