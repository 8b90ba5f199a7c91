package catalog

import (
	"errors"
	"fmt"
)

// EntityKind identifies one of the entity types owned by a primary index.
type EntityKind string

const (
	EntityProperty             EntityKind = "property"
	EntityNeighborhood         EntityKind = "neighborhood"
	EntityWikipedia            EntityKind = "wikipedia"
	EntityPropertyRelationships EntityKind = "property_relationships"
)

// ErrMappingConflict names an existing index whose mapping is incompatible
// with the authored one. Nothing in this repository returns it; the es
// backend reports that case as a searchbackend error of kind
// KindSchemaConflict.
var ErrMappingConflict = errors.New("catalog: mapping conflict")

// VectorConfig exposes the dense-vector/HNSW tuning knobs for embeddings.
type VectorConfig struct {
	Dimension      int
	Similarity     string // "cosine" (the only similarity this repository uses)
	M              int    // HNSW m, default 16
	EfConstruction int    // default 200
	EfSearch       int    // default 100
}

// DefaultVectorConfig returns the catalog defaults from spec.md §4.A.
func DefaultVectorConfig(dimension int) VectorConfig {
	return VectorConfig{
		Dimension:      dimension,
		Similarity:     "cosine",
		M:              16,
		EfConstruction: 200,
		EfSearch:       100,
	}
}

// IndexSpec bundles a mapping and settings body ready for EnsureIndex.
type IndexSpec struct {
	Name     string
	Mapping  map[string]any
	Settings map[string]any
}

// analyzerSettings returns the custom analyzer definitions shared by
// property, address, feature, and wikipedia text fields (spec.md §4.A):
//
//   - property_analyzer: standard tokenizer, lowercase, stemmer, stopwords.
//   - address_analyzer: lowercase, preserves tokens, no stemming.
//   - feature_analyzer: keyword-like (lowercase, no tokenization changes).
//   - wikipedia_analyzer: shingle filter + stemmer, for phrase-ish recall
//     over long-form article text.
func analyzerSettings() map[string]any {
	return map[string]any{
		"analysis": map[string]any{
			"filter": map[string]any{
				"english_stop": map[string]any{
					"type":      "stop",
					"stopwords": "_english_",
				},
				"english_stemmer": map[string]any{
					"type":     "stemmer",
					"language": "english",
				},
				"shingle_filter": map[string]any{
					"type":             "shingle",
					"min_shingle_size": 2,
					"max_shingle_size": 3,
				},
			},
			"analyzer": map[string]any{
				"property_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "english_stop", "english_stemmer"},
				},
				"address_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase"},
				},
				"feature_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "keyword",
					"filter":    []string{"lowercase"},
				},
				"wikipedia_analyzer": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "english_stop", "shingle_filter", "english_stemmer"},
				},
			},
		},
	}
}

// baseSettings returns the settings shared by every primary index: a single
// shard and zero replicas during bulk load. Callers restore replicas and
// refresh_interval after the load completes via RestoreSettings.
func baseSettings() map[string]any {
	s := analyzerSettings()
	s["number_of_shards"] = 1
	s["number_of_replicas"] = 0
	s["refresh_interval"] = "-1"
	return s
}

// RestoreSettings returns the settings body applied once bulk loading
// completes: normal replica count and refresh interval.
func RestoreSettings(replicas int) map[string]any {
	return map[string]any{
		"index": map[string]any{
			"number_of_replicas": replicas,
			"refresh_interval":   "1s",
		},
	}
}

func textField(analyzer string) map[string]any {
	return map[string]any{
		"type":     "text",
		"analyzer": analyzer,
	}
}

func keywordField() map[string]any {
	return map[string]any{"type": "keyword"}
}

// analyzedWithKeyword returns a multi-field mapping: the field is analyzed
// text with the given analyzer plus a ".keyword" sub-field for aggregations
// (spec.md §4.A's description/description.keyword requirement).
func analyzedWithKeyword(analyzer string) map[string]any {
	return map[string]any{
		"type":     "text",
		"analyzer": analyzer,
		"fields": map[string]any{
			"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
		},
	}
}

func denseVectorField(v VectorConfig) map[string]any {
	return map[string]any{
		"type":       "dense_vector",
		"dims":       v.Dimension,
		"index":      true,
		"similarity": v.Similarity,
		"index_options": map[string]any{
			"type":            "hnsw",
			"m":               v.M,
			"ef_construction": v.EfConstruction,
		},
	}
}

// PropertyIndexSpec returns the mapping and settings for the property index.
func PropertyIndexSpec(indexName string, vec VectorConfig) IndexSpec {
	return IndexSpec{
		Name: indexName,
		Settings: baseSettings(),
		Mapping: map[string]any{
			"properties": map[string]any{
				"listing_id":      keywordField(),
				"neighborhood_id": keywordField(),
				"property_type":   keywordField(),
				"price":           map[string]any{"type": "double"},
				"price_per_sqft":  map[string]any{"type": "double"},
				"bedrooms":        map[string]any{"type": "integer"},
				"bathrooms":       map[string]any{"type": "double"},
				"square_feet":     map[string]any{"type": "double"},
				"year_built":      map[string]any{"type": "integer"},
				"features":        textField("feature_analyzer"),
				"amenities":       textField("feature_analyzer"),
				"description":     analyzedWithKeyword("property_analyzer"),
				"search_tags":     keywordField(),
				"status":          keywordField(),
				"listed_at":       map[string]any{"type": "date"},
				"embedding":       denseVectorField(vec),
				"address": map[string]any{
					"properties": map[string]any{
						"street":   textField("address_analyzer"),
						"city":     keywordField(),
						"state":    keywordField(),
						"zip":      keywordField(),
						"location": map[string]any{"type": "geo_point"},
					},
				},
				"price_history": map[string]any{
					"type": "nested",
					"properties": map[string]any{
						"date":  map[string]any{"type": "date"},
						"price": map[string]any{"type": "double"},
					},
				},
			},
		},
	}
}

// NeighborhoodIndexSpec returns the mapping and settings for the
// neighborhood index.
func NeighborhoodIndexSpec(indexName string, vec VectorConfig) IndexSpec {
	return IndexSpec{
		Name: indexName,
		Settings: baseSettings(),
		Mapping: map[string]any{
			"properties": map[string]any{
				"neighborhood_id": keywordField(),
				"name":            analyzedWithKeyword("property_analyzer"),
				"city":            keywordField(),
				"state":           keywordField(),
				"description":     textField("property_analyzer"),
				"population":      map[string]any{"type": "integer"},
				"median_income":   map[string]any{"type": "double"},
				"lifestyle_tags":  keywordField(),
				"embedding":       denseVectorField(vec),
			},
		},
	}
}

// WikipediaIndexSpec returns the mapping and settings for the Wikipedia
// article index.
func WikipediaIndexSpec(indexName string, vec VectorConfig) IndexSpec {
	return IndexSpec{
		Name: indexName,
		Settings: baseSettings(),
		Mapping: map[string]any{
			"properties": map[string]any{
				"page_id":         keywordField(),
				"title":           analyzedWithKeyword("wikipedia_analyzer"),
				"long_summary":    textField("wikipedia_analyzer"),
				"full_content":    textField("wikipedia_analyzer"),
				"categories":      keywordField(),
				"key_topics":      keywordField(),
				"city":            keywordField(),
				"state":           keywordField(),
				"relevance_score": map[string]any{"type": "float"},
				"confidence":      map[string]any{"type": "float"},
				"embedding":       denseVectorField(vec),
			},
		},
	}
}

// PropertyRelationshipsIndexSpec returns the mapping and settings for the
// derived relationships index built by pkg/relationships.
func PropertyRelationshipsIndexSpec(indexName string) IndexSpec {
	return IndexSpec{
		Name: indexName,
		Settings: baseSettings(),
		Mapping: map[string]any{
			"properties": map[string]any{
				"listing_id": keywordField(),
				"property": map[string]any{
					"properties": map[string]any{
						"listing_id":      keywordField(),
						"neighborhood_id": keywordField(),
						"property_type":   keywordField(),
						"price":           map[string]any{"type": "double"},
						"address": map[string]any{
							"properties": map[string]any{
								"city":     keywordField(),
								"state":    keywordField(),
								"location": map[string]any{"type": "geo_point"},
							},
						},
					},
				},
				"neighborhood": map[string]any{
					"properties": map[string]any{
						"neighborhood_id": keywordField(),
						"name":            analyzedWithKeyword("property_analyzer"),
						"city":            keywordField(),
						"state":           keywordField(),
					},
				},
				"wikipedia_articles": map[string]any{
					"type": "nested",
					"properties": map[string]any{
						"page_id":         keywordField(),
						"title":           textField("wikipedia_analyzer"),
						"relevance_score": map[string]any{"type": "float"},
						"confidence":      map[string]any{"type": "float"},
					},
				},
				"wikipedia_article_count": map[string]any{"type": "integer"},
				"built_at":                map[string]any{"type": "date"},
			},
		},
	}
}

// SpecFor returns the IndexSpec for the named entity kind, using indexName as
// the physical index name and vec for the embedding vector's dimension.
func SpecFor(kind EntityKind, indexName string, vec VectorConfig) (IndexSpec, error) {
	switch kind {
	case EntityProperty:
		return PropertyIndexSpec(indexName, vec), nil
	case EntityNeighborhood:
		return NeighborhoodIndexSpec(indexName, vec), nil
	case EntityWikipedia:
		return WikipediaIndexSpec(indexName, vec), nil
	case EntityPropertyRelationships:
		return PropertyRelationshipsIndexSpec(indexName), nil
	default:
		return IndexSpec{}, fmt.Errorf("catalog: unknown entity kind %q", kind)
	}
}
