// Package catalog defines the typed entity schemas indexed by realsearch and
// the index mapping/settings generators that describe them to the search
// backend.
//
// Three primary entity types are owned by this package: [Property],
// [Neighborhood], and [WikipediaArticle]. A fourth, derived type,
// [PropertyRelationships], denormalizes a property together with its
// neighborhood and linked Wikipedia articles; it is produced by
// pkg/relationships, not ingested directly.
package catalog

import "time"

// GeoPoint is a latitude/longitude pair, serialized to the search backend's
// geo-point field shape.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Address is the nested location block shared by properties. Field names are
// normative: the canonical field is State, never StateCode.
type Address struct {
	Street   string   `json:"street"`
	City     string   `json:"city"`
	State    string   `json:"state"` // 2-letter canonical code
	Zip      string   `json:"zip"`
	Location GeoPoint `json:"location"`
}

// PriceHistoryEntry records a single historical price point for a property.
type PriceHistoryEntry struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// Property is the primary real-estate listing entity.
//
// ListingID is the unique primary key and the document id used on write.
// NeighborhoodID, when non-empty, must reference an existing [Neighborhood]
// by the time pkg/relationships runs; if it does not, the property is still
// indexed but excluded from the property-relationships index.
type Property struct {
	ListingID      string    `json:"listing_id"`
	Address        Address   `json:"address"`
	NeighborhoodID string    `json:"neighborhood_id"`
	PropertyType   string    `json:"property_type"`
	Price          float64   `json:"price"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      float64   `json:"bathrooms"`
	SquareFeet     float64   `json:"square_feet"`
	YearBuilt      int       `json:"year_built"`
	Features       []string  `json:"features"`
	Amenities      []string  `json:"amenities"`
	Description    string    `json:"description"`
	Status         string    `json:"status,omitempty"`
	ListedAt       time.Time `json:"listed_at,omitempty"`

	// PricePerSqFt is derived: Price / SquareFeet when both are present.
	PricePerSqFt float64 `json:"price_per_sqft,omitempty"`

	// SearchTags is derived: the union of PropertyType, Features, and
	// Amenities, used for coarse faceting.
	SearchTags []string `json:"search_tags,omitempty"`

	// Embedding is a fixed-dimension dense vector in cosine space, produced
	// by an external embedding provider from pkg/embedtext's canonical text.
	Embedding []float32 `json:"embedding,omitempty"`

	PriceHistory []PriceHistoryEntry `json:"price_history,omitempty"`
}

// DeriveFields populates PricePerSqFt and SearchTags from the property's own
// fields. It is idempotent and safe to call repeatedly (e.g. before every
// index write).
func (p *Property) DeriveFields() {
	if p.Price > 0 && p.SquareFeet > 0 {
		p.PricePerSqFt = p.Price / p.SquareFeet
	}
	seen := make(map[string]struct{}, len(p.Features)+len(p.Amenities)+1)
	tags := make([]string, 0, len(p.Features)+len(p.Amenities)+1)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		tags = append(tags, v)
	}
	add(p.PropertyType)
	for _, f := range p.Features {
		add(f)
	}
	for _, a := range p.Amenities {
		add(a)
	}
	p.SearchTags = tags
}

// Neighborhood describes a named area a [Property] may belong to.
// At most one Neighborhood exists per NeighborhoodID.
type Neighborhood struct {
	NeighborhoodID string   `json:"neighborhood_id"`
	Name           string   `json:"name"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Description    string   `json:"description,omitempty"`
	Boundaries     []GeoPoint `json:"boundaries,omitempty"`
	Population     int      `json:"population,omitempty"`
	MedianIncome   float64  `json:"median_income,omitempty"`
	LifestyleTags  []string `json:"lifestyle_tags,omitempty"`
}

// WikipediaArticle is an immutable (reindex-by-full-replace) article record
// associated with a city/state and, indirectly, with neighborhoods.
type WikipediaArticle struct {
	PageID         string   `json:"page_id"`
	Title          string   `json:"title"`
	LongSummary    string   `json:"long_summary,omitempty"`
	FullContent    string   `json:"full_content,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	KeyTopics      []string `json:"key_topics,omitempty"`
	City           string   `json:"city,omitempty"`
	State          string   `json:"state,omitempty"`
	RelevanceScore float64  `json:"relevance_score"`
	Confidence     float64  `json:"confidence"`
	Embedding      []float32 `json:"embedding,omitempty"`
}

// PropertyRelationships is the derived, denormalized document keyed by
// ListingID. It is produced exclusively by pkg/relationships and is
// reproducible at any time by re-running the builder.
type PropertyRelationships struct {
	ListingID         string             `json:"listing_id"`
	Property          Property           `json:"property"`
	Neighborhood      *Neighborhood      `json:"neighborhood"`
	WikipediaArticles []WikipediaArticle `json:"wikipedia_articles"`

	// WikipediaArticleCount is a display-only convenience field (never used
	// for ranking) answering spec Open Question (i).
	WikipediaArticleCount int `json:"wikipedia_article_count,omitempty"`

	BuiltAt time.Time `json:"built_at"`
}
