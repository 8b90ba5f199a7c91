package demo

import (
	"context"
	"testing"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/provider/embeddings/mock"
	"github.com/danverstone/realsearch/pkg/retrieval"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

func TestSemanticBatchRunsEveryQuery(t *testing.T) {
	backend := &fakeBackend{
		searchHandler: func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
			if _, ok := query["knn"]; ok {
				return searchbackend.SearchResponse{Hits: []searchbackend.Hit{{ID: "p1", Score: 0.9}}}, nil
			}
			if q, ok := query["query"].(map[string]any); ok {
				if _, isBool := q["bool"]; isBool {
					return searchbackend.SearchResponse{Hits: []searchbackend.Hit{{ID: "p1", Score: 1.0}}}, nil
				}
				return searchbackend.SearchResponse{Hits: []searchbackend.Hit{
					hitFor("p1", 0, catalog.Property{ListingID: "p1"}),
				}}, nil
			}
			t.Fatalf("unexpected query: %v", query)
			return searchbackend.SearchResponse{}, nil
		},
	}

	d := &SemanticBatch{
		Index:     "properties",
		Queries:   []string{"family home with pool", "downtown loft"},
		Extractor: testExtractor(),
		Embedder:  &mock.Provider{EmbedResult: []float32{0.1}, DimensionsValue: 1},
		Engine:    retrieval.NewEngine(),
		Size:      5,
	}

	result, err := Run[SemanticBatchResult](context.Background(), backend, d, 5)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2", len(result.Entries))
	}
	for i, q := range d.Queries {
		if result.Entries[i].Query != q {
			t.Fatalf("Entries[%d].Query = %q, want %q", i, result.Entries[i].Query, q)
		}
		if len(result.Entries[i].Result.Hits) != 1 {
			t.Fatalf("Entries[%d].Result.Hits = %+v", i, result.Entries[i].Result.Hits)
		}
	}
}

func TestSemanticBatchPropagatesPerQueryError(t *testing.T) {
	backend := &fakeBackend{
		searchHandler: func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
			return searchbackend.SearchResponse{}, errBoom
		},
	}
	d := &SemanticBatch{
		Index:     "properties",
		Queries:   []string{"anything"},
		Extractor: testExtractor(),
		Embedder:  &mock.Provider{EmbedResult: []float32{0.1}, DimensionsValue: 1},
		Engine:    retrieval.NewEngine(),
	}
	_, err := Run[SemanticBatchResult](context.Background(), backend, d, 5)
	if err == nil {
		t.Fatal("expected error")
	}
}
