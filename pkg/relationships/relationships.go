// Package relationships builds the denormalized property-relationships
// index by scanning the property index and joining each property with its
// neighborhood and nearby Wikipedia articles (spec.md §4.G). The build is
// idempotent: rerunning it replaces each listing_id's document in place.
package relationships

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

const (
	defaultBatchSize   = 500
	defaultMaxArticles = 10
)

// Config names the primary indices this builder reads and the
// relationships index it writes, plus the tuning knobs from spec.md §6.
type Config struct {
	PropertyIndex      string
	NeighborhoodIndex  string
	WikipediaIndex     string
	RelationshipsIndex string

	// BatchSize is the property-scan page size (B2 in spec.md §4.G).
	// Default: 500.
	BatchSize int

	// MaxArticlesPerProperty caps wikipedia_articles per document.
	// Default: 10.
	MaxArticlesPerProperty int

	// RefreshOnComplete calls Refresh on the relationships index once the
	// run finishes. withDefaults leaves it as given, so an unset value
	// (false) skips the refresh.
	RefreshOnComplete bool
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxArticlesPerProperty <= 0 {
		c.MaxArticlesPerProperty = defaultMaxArticles
	}
	return c
}

// Stats summarizes one Rebuild run (spec.md §4.G step 6).
type Stats struct {
	Scanned               int
	Written               int
	SkippedNoNeighborhood int
	Failed                int
}

// Builder runs the scan/join/write algorithm against a [searchbackend.Backend].
type Builder struct {
	backend searchbackend.Backend
	cfg     Config
}

// New returns a Builder backed by b.
func New(b searchbackend.Backend, cfg Config) *Builder {
	return &Builder{backend: b, cfg: cfg.withDefaults()}
}

// Rebuild runs the full scan/join/write algorithm. If forceRecreate is true
// the relationships index is dropped and recreated before the scan begins;
// otherwise an existing index is reused (EnsureIndex is always called).
//
// Per-property failures, including every document of a failed bulk write,
// are logged and counted in Stats.Failed; Rebuild itself only returns a
// non-nil error when ensuring the index, the property scan, a neighborhood
// or Wikipedia lookup, or the final refresh fails.
func (b *Builder) Rebuild(ctx context.Context, forceRecreate bool) (Stats, error) {
	var stats Stats

	spec, err := catalog.SpecFor(catalog.EntityPropertyRelationships, b.cfg.RelationshipsIndex, catalog.VectorConfig{})
	if err != nil {
		return stats, fmt.Errorf("relationships: ensure index: %w", err)
	}
	if err := b.backend.EnsureIndex(ctx, b.cfg.RelationshipsIndex, spec.Mapping, spec.Settings, forceRecreate); err != nil {
		return stats, fmt.Errorf("relationships: ensure index: %w", err)
	}

	cursor := ""
	for {
		page, next, err := b.fetchPropertyPage(ctx, cursor)
		if err != nil {
			return stats, fmt.Errorf("relationships: scan properties: %w", err)
		}
		if len(page) == 0 {
			break
		}
		stats.Scanned += len(page)

		written, skipped, failed, err := b.processBatch(ctx, page)
		if err != nil {
			return stats, fmt.Errorf("relationships: process batch: %w", err)
		}
		stats.Written += written
		stats.SkippedNoNeighborhood += skipped
		stats.Failed += failed

		if next == "" {
			break
		}
		cursor = next
	}

	if b.cfg.RefreshOnComplete {
		if err := b.backend.Refresh(ctx, b.cfg.RelationshipsIndex); err != nil {
			return stats, fmt.Errorf("relationships: refresh: %w", err)
		}
	}
	return stats, nil
}

// fetchPropertyPage fetches the next page of properties ordered by
// listing_id using a search_after-style cursor (the cursor is simply the
// last listing_id seen, since listing_id is a total order).
func (b *Builder) fetchPropertyPage(ctx context.Context, cursor string) ([]catalog.Property, string, error) {
	query := map[string]any{"match_all": map[string]any{}}
	if cursor != "" {
		query = map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"range": map[string]any{"listing_id": map[string]any{"gt": cursor}}},
				},
			},
		}
	}
	doc := map[string]any{
		"size":  b.cfg.BatchSize,
		"query": query,
		"sort":  []map[string]any{{"listing_id": "asc"}},
	}

	resp, err := b.backend.Search(ctx, []string{b.cfg.PropertyIndex}, doc)
	if err != nil {
		return nil, "", err
	}

	props := make([]catalog.Property, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var p catalog.Property
		if err := json.Unmarshal(hit.Source, &p); err != nil {
			return nil, "", fmt.Errorf("decode property %q: %w", hit.ID, err)
		}
		props = append(props, p)
	}

	next := ""
	if len(props) > 0 {
		next = props[len(props)-1].ListingID
	}
	return props, next, nil
}

// processBatch joins one page of properties with their neighborhoods and
// Wikipedia articles, then writes the resulting documents in a single bulk
// call.
func (b *Builder) processBatch(ctx context.Context, props []catalog.Property) (written, skipped, failed int, err error) {
	neighborhoodIDs := distinctNonEmpty(propertyField(props, func(p catalog.Property) string { return p.NeighborhoodID }))
	cityStates := distinctCityStates(props)

	neighborhoods, err := b.lookupNeighborhoods(ctx, neighborhoodIDs)
	if err != nil {
		return 0, 0, 0, err
	}
	articles, err := b.lookupWikipediaCandidates(ctx, cityStates, neighborhoodNames(neighborhoods))
	if err != nil {
		return 0, 0, 0, err
	}

	var docs []searchbackend.Doc
	for _, p := range props {
		if p.NeighborhoodID == "" {
			skipped++
			continue
		}
		n, ok := neighborhoods[p.NeighborhoodID]
		var neighborhood *catalog.Neighborhood
		if ok {
			neighborhood = &n
		}

		matched := matchArticles(p, neighborhood, articles, b.cfg.MaxArticlesPerProperty)
		rel := catalog.PropertyRelationships{
			ListingID:             p.ListingID,
			Property:              p,
			Neighborhood:          neighborhood,
			WikipediaArticles:     matched,
			WikipediaArticleCount: len(matched),
			BuiltAt:               time.Now().UTC(),
		}
		docs = append(docs, searchbackend.Doc{ID: p.ListingID, Source: rel})
	}

	if len(docs) == 0 {
		return 0, skipped, 0, nil
	}

	result, err := b.backend.BulkWrite(ctx, b.cfg.RelationshipsIndex, docs)
	if err != nil {
		log.Error().Err(err).Int("batch_size", len(docs)).Msg("relationships: bulk write failed")
		return 0, skipped, len(docs), nil
	}
	for _, e := range result.Errors {
		log.Warn().Str("listing_id", e.ID).Str("reason", e.Message).Msg("relationships: document failed to write")
	}
	return result.Indexed, skipped, result.Failed, nil
}

func (b *Builder) lookupNeighborhoods(ctx context.Context, ids []string) (map[string]catalog.Neighborhood, error) {
	out := make(map[string]catalog.Neighborhood, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	doc := map[string]any{
		"size":  len(ids),
		"query": map[string]any{"terms": map[string]any{"neighborhood_id": ids}},
	}
	resp, err := b.backend.Search(ctx, []string{b.cfg.NeighborhoodIndex}, doc)
	if err != nil {
		return nil, err
	}
	for _, hit := range resp.Hits {
		var n catalog.Neighborhood
		if err := json.Unmarshal(hit.Source, &n); err != nil {
			continue
		}
		out[n.NeighborhoodID] = n
	}
	return out, nil
}

func (b *Builder) lookupWikipediaCandidates(ctx context.Context, cityStates [][2]string, neighborhoodNames []string) ([]catalog.WikipediaArticle, error) {
	if len(cityStates) == 0 && len(neighborhoodNames) == 0 {
		return nil, nil
	}

	var should []map[string]any
	for _, cs := range cityStates {
		should = append(should, map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"city": strings.ToLower(cs[0])}},
					{"term": map[string]any{"state": cs[1]}},
				},
			},
		})
	}
	for _, name := range neighborhoodNames {
		should = append(should, map[string]any{
			"multi_match": map[string]any{
				"query":  name,
				"fields": []string{"title", "long_summary", "full_content"},
			},
		})
	}

	doc := map[string]any{
		"size": 500,
		"query": map[string]any{
			"bool": map[string]any{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
	resp, err := b.backend.Search(ctx, []string{b.cfg.WikipediaIndex}, doc)
	if err != nil {
		return nil, err
	}

	articles := make([]catalog.WikipediaArticle, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var a catalog.WikipediaArticle
		if err := json.Unmarshal(hit.Source, &a); err != nil {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// matchArticles selects, dedups, orders, and truncates the Wikipedia
// articles linked to property p per spec.md §4.G/§3: location match on
// (city,state), or neighborhood-name match in title/summary; ordered by
// relevance_score desc, then confidence desc, then page_id asc; truncated
// to max.
func matchArticles(p catalog.Property, n *catalog.Neighborhood, candidates []catalog.WikipediaArticle, max int) []catalog.WikipediaArticle {
	seen := make(map[string]struct{})
	var matched []catalog.WikipediaArticle

	neighborhoodName := ""
	if n != nil {
		neighborhoodName = strings.ToLower(n.Name)
	}

	for _, a := range candidates {
		if _, ok := seen[a.PageID]; ok {
			continue
		}
		locationMatch := strings.EqualFold(a.City, p.Address.City) && strings.EqualFold(a.State, p.Address.State)
		nameMatch := neighborhoodName != "" && (strings.Contains(strings.ToLower(a.Title), neighborhoodName) ||
			strings.Contains(strings.ToLower(a.LongSummary), neighborhoodName))

		if locationMatch || nameMatch {
			seen[a.PageID] = struct{}{}
			matched = append(matched, a)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].RelevanceScore != matched[j].RelevanceScore {
			return matched[i].RelevanceScore > matched[j].RelevanceScore
		}
		if matched[i].Confidence != matched[j].Confidence {
			return matched[i].Confidence > matched[j].Confidence
		}
		return matched[i].PageID < matched[j].PageID
	})

	if len(matched) > max {
		matched = matched[:max]
	}
	return matched
}

func propertyField(props []catalog.Property, f func(catalog.Property) string) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = f(p)
	}
	return out
}

func distinctNonEmpty(values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func distinctCityStates(props []catalog.Property) [][2]string {
	seen := make(map[[2]string]struct{})
	var out [][2]string
	for _, p := range props {
		key := [2]string{p.Address.City, p.Address.State}
		if key[0] == "" && key[1] == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func neighborhoodNames(m map[string]catalog.Neighborhood) []string {
	out := make([]string, 0, len(m))
	for _, n := range m {
		if n.Name != "" {
			out = append(out, n.Name)
		}
	}
	return out
}
