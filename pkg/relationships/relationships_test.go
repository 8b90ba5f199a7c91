package relationships

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

type fakeBackend struct {
	searchbackend.Backend
	propertyPages   [][]catalog.Property
	propertyCall    int
	neighborhoods   []catalog.Neighborhood
	wikipedia       []catalog.WikipediaArticle
	bulkWrites      []searchbackend.Doc
	ensureIndexHits int
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func (f *fakeBackend) EnsureIndex(context.Context, string, map[string]any, map[string]any, bool) error {
	f.ensureIndexHits++
	return nil
}

func (f *fakeBackend) Search(_ context.Context, indices []string, _ map[string]any) (searchbackend.SearchResponse, error) {
	switch indices[0] {
	case "properties":
		if f.propertyCall >= len(f.propertyPages) {
			return searchbackend.SearchResponse{}, nil
		}
		page := f.propertyPages[f.propertyCall]
		f.propertyCall++
		var hits []searchbackend.Hit
		for _, p := range page {
			hits = append(hits, searchbackend.Hit{ID: p.ListingID, Source: mustJSON(p)})
		}
		return searchbackend.SearchResponse{Hits: hits}, nil
	case "neighborhoods":
		var hits []searchbackend.Hit
		for _, n := range f.neighborhoods {
			hits = append(hits, searchbackend.Hit{ID: n.NeighborhoodID, Source: mustJSON(n)})
		}
		return searchbackend.SearchResponse{Hits: hits}, nil
	case "wikipedia":
		var hits []searchbackend.Hit
		for _, a := range f.wikipedia {
			hits = append(hits, searchbackend.Hit{ID: a.PageID, Source: mustJSON(a)})
		}
		return searchbackend.SearchResponse{Hits: hits}, nil
	}
	return searchbackend.SearchResponse{}, nil
}

func (f *fakeBackend) BulkWrite(_ context.Context, _ string, docs []searchbackend.Doc) (searchbackend.BulkResult, error) {
	f.bulkWrites = append(f.bulkWrites, docs...)
	return searchbackend.BulkResult{Indexed: len(docs)}, nil
}

func (f *fakeBackend) Refresh(context.Context, string) error { return nil }

func testProperties() []catalog.Property {
	return []catalog.Property{
		{
			ListingID:      "p1",
			NeighborhoodID: "n1",
			Address:        catalog.Address{City: "Austin", State: "TX"},
		},
		{
			ListingID: "p2",
			Address:   catalog.Address{City: "Dallas", State: "TX"},
		},
	}
}

func newTestBuilder(fb *fakeBackend) *Builder {
	return New(fb, Config{
		PropertyIndex:      "properties",
		NeighborhoodIndex:  "neighborhoods",
		WikipediaIndex:     "wikipedia",
		RelationshipsIndex: "property_relationships",
	})
}

func TestRebuildJoinsAndWritesDocuments(t *testing.T) {
	fb := &fakeBackend{
		propertyPages: [][]catalog.Property{testProperties(), nil},
		neighborhoods: []catalog.Neighborhood{{NeighborhoodID: "n1", Name: "Downtown", City: "Austin", State: "TX"}},
		wikipedia: []catalog.WikipediaArticle{
			{PageID: "w1", Title: "Downtown Austin", City: "Austin", State: "TX", RelevanceScore: 0.9},
		},
	}
	b := newTestBuilder(fb)

	stats, err := b.Rebuild(context.Background(), false)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if stats.Scanned != 2 {
		t.Fatalf("Scanned = %d, want 2", stats.Scanned)
	}
	if stats.Written != 1 {
		t.Fatalf("Written = %d, want 1 (p2 has no neighborhood_id)", stats.Written)
	}
	if stats.SkippedNoNeighborhood != 1 {
		t.Fatalf("SkippedNoNeighborhood = %d, want 1", stats.SkippedNoNeighborhood)
	}
	if len(fb.bulkWrites) != 1 {
		t.Fatalf("len(bulkWrites) = %d, want 1", len(fb.bulkWrites))
	}

	rel := fb.bulkWrites[0].Source.(catalog.PropertyRelationships)
	if rel.ListingID != "p1" {
		t.Fatalf("ListingID = %q, want p1", rel.ListingID)
	}
	if rel.Neighborhood == nil || rel.Neighborhood.NeighborhoodID != "n1" {
		t.Fatal("expected joined neighborhood n1")
	}
	if rel.WikipediaArticleCount != 1 {
		t.Fatalf("WikipediaArticleCount = %d, want 1", rel.WikipediaArticleCount)
	}
}

func TestMatchArticlesOrdersByRelevanceThenConfidenceThenPageID(t *testing.T) {
	p := catalog.Property{Address: catalog.Address{City: "Austin", State: "TX"}}
	candidates := []catalog.WikipediaArticle{
		{PageID: "b", City: "Austin", State: "TX", RelevanceScore: 0.5, Confidence: 0.9},
		{PageID: "a", City: "Austin", State: "TX", RelevanceScore: 0.5, Confidence: 0.9},
		{PageID: "c", City: "Austin", State: "TX", RelevanceScore: 0.9, Confidence: 0.1},
	}
	matched := matchArticles(p, nil, candidates, 10)
	if len(matched) != 3 {
		t.Fatalf("len(matched) = %d, want 3", len(matched))
	}
	if matched[0].PageID != "c" {
		t.Fatalf("matched[0] = %q, want c (highest relevance)", matched[0].PageID)
	}
	if matched[1].PageID != "a" || matched[2].PageID != "b" {
		t.Fatalf("tie-break order wrong: got %q, %q", matched[1].PageID, matched[2].PageID)
	}
}

func TestMatchArticlesTruncatesToMax(t *testing.T) {
	p := catalog.Property{Address: catalog.Address{City: "Austin", State: "TX"}}
	var candidates []catalog.WikipediaArticle
	for i := 0; i < 20; i++ {
		candidates = append(candidates, catalog.WikipediaArticle{PageID: string(rune('a' + i)), City: "Austin", State: "TX"})
	}
	matched := matchArticles(p, nil, candidates, 10)
	if len(matched) != 10 {
		t.Fatalf("len(matched) = %d, want 10", len(matched))
	}
}

func TestEnsureIndexAlwaysCalled(t *testing.T) {
	fb := &fakeBackend{propertyPages: [][]catalog.Property{nil}}
	b := newTestBuilder(fb)
	if _, err := b.Rebuild(context.Background(), true); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if fb.ensureIndexHits != 1 {
		t.Fatalf("ensureIndexHits = %d, want 1", fb.ensureIndexHits)
	}
}
