package querybuilder

// defaultRankConstant and defaultRankWindowSize are the RRF tuning defaults
// from spec.md §4.E (k=60, window=100).
const (
	defaultRankConstant  = 60
	defaultRankWindowSize = 100
)

// boolFilter wraps clauses in a non-scoring bool-filter context, optionally
// alongside a scoring "must" clause.
func boolFilter(must []map[string]any, clauses []map[string]any) map[string]any {
	b := map[string]any{}
	if len(must) > 0 {
		b["must"] = must
	}
	if len(clauses) > 0 {
		b["filter"] = clauses
	}
	if len(b) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": b}
}

// Lexical builds the "multi_match(best_fields, fuzziness=auto)" property
// search document.
func Lexical(query string, filters SearchFilters, size int) map[string]any {
	must := []map[string]any{{
		"multi_match": map[string]any{
			"query":     query,
			"type":      "best_fields",
			"fuzziness": "AUTO",
			"fields": []string{
				"description^2.0",
				"features^1.5",
				"amenities^1.5",
				"address.street",
				"address.city",
				"neighborhood.name",
			},
		},
	}}
	return map[string]any{
		"size":  size,
		"query": boolFilter(must, filters.clauses()),
	}
}

// Filtered builds a filter-only property search with no scoring clause.
func Filtered(filters SearchFilters, size int) map[string]any {
	return map[string]any{
		"size":  size,
		"query": boolFilter(nil, filters.clauses()),
	}
}

// GeoDistance builds a geo_distance-filtered search, with an optional text
// query in the scoring "must" clause.
func GeoDistance(textQuery string, filters SearchFilters, size int) map[string]any {
	var must []map[string]any
	if textQuery != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  textQuery,
				"fields": []string{"description", "features", "amenities"},
			},
		})
	}
	return map[string]any{
		"size":  size,
		"query": boolFilter(must, filters.clauses()),
	}
}

// AggregationSpec names the combination of aggregations a builder attaches.
type AggregationSpec struct {
	StatsField     string // e.g. "price" — emits a stats aggregation
	TermsField     string // e.g. "property_type" — emits a terms aggregation
	HistogramField string // e.g. "price" — emits a histogram aggregation
	HistogramInterval float64
}

func (a AggregationSpec) build() map[string]any {
	aggs := map[string]any{}
	if a.StatsField != "" {
		aggs[a.StatsField+"_stats"] = map[string]any{"stats": map[string]any{"field": a.StatsField}}
	}
	if a.TermsField != "" {
		aggs[a.TermsField+"_terms"] = map[string]any{"terms": map[string]any{"field": a.TermsField, "size": 20}}
	}
	if a.HistogramField != "" {
		interval := a.HistogramInterval
		if interval <= 0 {
			interval = 50000
		}
		aggs[a.HistogramField+"_histogram"] = map[string]any{
			"histogram": map[string]any{"field": a.HistogramField, "interval": interval},
		}
	}
	return aggs
}

// PriceRangeWithAggregations builds a price-range filtered search that also
// requests stats/terms/histogram aggregations in the same request.
func PriceRangeWithAggregations(filters SearchFilters, agg AggregationSpec, size int) map[string]any {
	doc := map[string]any{
		"size":  size,
		"query": boolFilter(nil, filters.clauses()),
	}
	if aggs := agg.build(); len(aggs) > 0 {
		doc["aggs"] = aggs
	}
	return doc
}

// WikipediaFullText builds the Wikipedia article full-text search: a must
// clause matching full_content, an optional should clause over related
// terms, and optional category/location filters.
func WikipediaFullText(query string, relatedTerms []string, categories, states []string, size int) map[string]any {
	b := map[string]any{
		"must": []map[string]any{{
			"match": map[string]any{"full_content": query},
		}},
	}
	if len(relatedTerms) > 0 {
		var should []map[string]any
		for _, t := range relatedTerms {
			should = append(should, map[string]any{"match": map[string]any{"full_content": t}})
		}
		b["should"] = should
	}
	var clauses []map[string]any
	if len(categories) > 0 {
		clauses = append(clauses, termsClause("categories", categories))
	}
	if len(states) > 0 {
		clauses = append(clauses, termsClause("state", states))
	}
	if len(clauses) > 0 {
		b["filter"] = clauses
	}
	return map[string]any{
		"size":  size,
		"query": map[string]any{"bool": b},
	}
}

// KNN builds a k-NN (semantic) retrieval document: field "embedding",
// num_candidates = max(2k, 100) per spec.md §4.E, with an optional filter
// clause identical in shape to the one hybrid search attaches.
func KNN(vector []float32, k int, filters SearchFilters) map[string]any {
	numCandidates := 2 * k
	if numCandidates < 100 {
		numCandidates = 100
	}
	knn := map[string]any{
		"field":          "embedding",
		"k":              k,
		"num_candidates": numCandidates,
		"query_vector":   vector,
	}
	if clauses := filters.clauses(); len(clauses) > 0 {
		knn["filter"] = map[string]any{"bool": map[string]any{"filter": clauses}}
	}
	return map[string]any{"knn": knn}
}

// HybridConfig tunes the RRF fusion node of a hybrid query.
type HybridConfig struct {
	RankConstant   int // default 60
	RankWindowSize int // default 100

	// KNNK and KNNNumCandidates override the k-NN retriever's k and
	// num_candidates. When zero, they fall back to the window size and
	// KNN's own 2k/100 default, respectively.
	KNNK             int
	KNNNumCandidates int
}

func (c HybridConfig) withDefaults() HybridConfig {
	if c.RankConstant <= 0 {
		c.RankConstant = defaultRankConstant
	}
	if c.RankWindowSize <= 0 {
		c.RankWindowSize = defaultRankWindowSize
	}
	return c
}

// Hybrid builds the lexical and k-NN retriever documents sharing a common
// location+user filter, per the construction steps in spec.md §4.E. The
// actual RRF fusion across the two retrieved result sets happens client-side
// in pkg/retrieval; this function only shapes the two underlying requests so
// pkg/retrieval can execute them with identical filters.
func Hybrid(cleanedQuery string, vector []float32, filters SearchFilters, cfg HybridConfig, size int) (lexical, knn map[string]any) {
	cfg = cfg.withDefaults()
	windowSize := cfg.RankWindowSize
	if windowSize < size {
		windowSize = size
	}

	knnK := cfg.KNNK
	if knnK <= 0 {
		knnK = windowSize
	}
	lexical = Lexical(cleanedQuery, filters, windowSize)
	knn = KNN(vector, knnK, filters)
	if cfg.KNNNumCandidates > 0 {
		knn["knn"].(map[string]any)["num_candidates"] = cfg.KNNNumCandidates
	}
	return lexical, knn
}

// AggregationOnly builds a request with size=0 returning only the requested
// aggregations.
func AggregationOnly(filters SearchFilters, agg AggregationSpec) map[string]any {
	doc := map[string]any{
		"size":  0,
		"query": boolFilter(nil, filters.clauses()),
	}
	if aggs := agg.build(); len(aggs) > 0 {
		doc["aggs"] = aggs
	}
	return doc
}

// RelationshipLookup builds a terms lookup against the property-
// relationships index by listing_id.
func RelationshipLookup(listingIDs []string) map[string]any {
	return map[string]any{
		"size":  len(listingIDs),
		"query": termsClause("listing_id", listingIDs),
	}
}
