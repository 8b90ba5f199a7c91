package demo

import (
	"context"
	"testing"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

func TestLexicalSearchEndToEnd(t *testing.T) {
	backend := &fakeBackend{
		searchHandler: func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
			if len(indices) != 1 || indices[0] != "properties" {
				t.Fatalf("indices = %v, want [properties]", indices)
			}
			return searchbackend.SearchResponse{
				Total: 1,
				Hits: []searchbackend.Hit{
					hitFor("p1", 1.5, catalog.Property{ListingID: "p1", Address: catalog.Address{City: "Austin", State: "TX"}, Price: 400000}),
				},
			}, nil
		},
	}

	d := &LexicalSearch{Index: "properties", Query: "pool", Filters: querybuilder.SearchFilters{}}
	result, err := Run[PropertyResult](context.Background(), backend, d, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Hits) != 1 || result.Hits[0].Property.ListingID != "p1" {
		t.Fatalf("result = %+v", result)
	}
	if backend.searchCalls != 1 {
		t.Fatalf("searchCalls = %d, want 1", backend.searchCalls)
	}
}
