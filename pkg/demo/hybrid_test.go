package demo

import (
	"context"
	"testing"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/locintent"
	"github.com/danverstone/realsearch/pkg/provider/embeddings/mock"
	"github.com/danverstone/realsearch/pkg/retrieval"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

func testExtractor() *locintent.Extractor {
	gaz := locintent.NewGazetteer(
		nil,
		[]locintent.CityDef{{Name: "Austin", State: "TX"}},
		[]locintent.StateDef{{Name: "Texas", Code: "TX"}},
	)
	return locintent.NewExtractor(gaz)
}

func TestHybridSearchFusesLexicalAndKNN(t *testing.T) {
	backend := &fakeBackend{
		searchHandler: func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
			if _, ok := query["knn"]; ok {
				return searchbackend.SearchResponse{Hits: []searchbackend.Hit{
					{ID: "p2", Score: 0.9},
					{ID: "p1", Score: 0.8},
				}}, nil
			}
			if _, ok := query["query"]; ok {
				// relationship lookup has "size" == number of ids, and property
				// lookups hydrate full documents; distinguish by presence of a
				// bool/multi_match must-clause (lexical) vs a bare terms query.
				if q, ok := query["query"].(map[string]any); ok {
					if _, isBool := q["bool"]; isBool {
						return searchbackend.SearchResponse{Hits: []searchbackend.Hit{
							{ID: "p2", Score: 2.0},
							{ID: "p1", Score: 1.0},
						}}, nil
					}
					// terms lookup (hydration call)
					return searchbackend.SearchResponse{Hits: []searchbackend.Hit{
						hitFor("p1", 0, catalog.Property{ListingID: "p1", Address: catalog.Address{City: "Austin", State: "TX"}}),
						hitFor("p2", 0, catalog.Property{ListingID: "p2", Address: catalog.Address{City: "Austin", State: "TX"}}),
					}}, nil
				}
			}
			t.Fatalf("unexpected query shape: %v", query)
			return searchbackend.SearchResponse{}, nil
		},
	}

	d := &HybridSearch{
		Index:     "properties",
		RawQuery:  "pool house in Austin Texas",
		Extractor: testExtractor(),
		Embedder:  &mock.Provider{EmbedResult: []float32{0.1, 0.2}, DimensionsValue: 2},
		Engine:    retrieval.NewEngine(),
	}

	result, err := Run[PropertyResult](context.Background(), backend, d, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Hits) != 2 {
		t.Fatalf("len(Hits) = %d, want 2", len(result.Hits))
	}
	// p2 should rank first: it leads both the lexical and knn result lists.
	if result.Hits[0].Property.ListingID != "p2" {
		t.Fatalf("Hits[0].ListingID = %q, want p2", result.Hits[0].Property.ListingID)
	}
}

func TestHybridSearchPropagatesEmbedError(t *testing.T) {
	backend := &fakeBackend{
		searchHandler: func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
			t.Fatal("backend should not be called when embedding fails")
			return searchbackend.SearchResponse{}, nil
		},
	}
	d := &HybridSearch{
		Index:     "properties",
		RawQuery:  "pool",
		Extractor: testExtractor(),
		Embedder:  &mock.Provider{EmbedErr: errBoom},
		Engine:    retrieval.NewEngine(),
	}
	_, err := Run[PropertyResult](context.Background(), backend, d, 10)
	if err == nil {
		t.Fatal("expected error")
	}
}
