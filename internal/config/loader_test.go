package config_test

import (
	"strings"
	"testing"

	"github.com/danverstone/realsearch/internal/config"
)

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestValidate_RejectsNegativeBatchSize(t *testing.T) {
	t.Parallel()
	yaml := `
embedding:
  provider: openai
  dimension: 1536
  batch_size: -1
search_backend:
  hosts: [http://localhost:9200]
indices:
  property: properties
  neighborhood: neighborhoods
  wikipedia: wikipedia_articles
  property_relationships: property_relationships
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for negative batch_size, got nil")
	}
	if !strings.Contains(err.Error(), "batch_size") {
		t.Errorf("error should mention batch_size, got: %v", err)
	}
}

func TestValidate_RejectsInvalidDuration(t *testing.T) {
	t.Parallel()
	yaml := `
embedding:
  provider: openai
  dimension: 1536
search_backend:
  hosts: [http://localhost:9200]
  request_timeout: not-a-duration
indices:
  property: properties
  neighborhood: neighborhoods
  wikipedia: wikipedia_articles
  property_relationships: property_relationships
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
}

func TestValidate_ZeroBatchSizeUsesProviderDefault(t *testing.T) {
	t.Parallel()
	yaml := `
embedding:
  provider: openai
  dimension: 1536
search_backend:
  hosts: [http://localhost:9200]
indices:
  property: properties
  neighborhood: neighborhoods
  wikipedia: wikipedia_articles
  property_relationships: property_relationships
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.BatchSize != 0 {
		t.Errorf("embedding.batch_size: got %d, want 0 (no loader-level default)", cfg.Embedding.BatchSize)
	}
}
