package demo

import (
	"context"
	"testing"

	"github.com/danverstone/realsearch/pkg/searchbackend"
)

func TestMixedEntitySearchTagsHitsByIndex(t *testing.T) {
	backend := &fakeBackend{
		searchHandler: func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
			want := []string{"properties", "neighborhoods", "wikipedia"}
			if len(indices) != len(want) {
				t.Fatalf("indices = %v, want %v", indices, want)
			}
			return searchbackend.SearchResponse{Hits: []searchbackend.Hit{
				{Index: "properties", ID: "p1", Score: 2.0},
				{Index: "neighborhoods", ID: "n1", Score: 1.5},
				{Index: "wikipedia", ID: "w1", Score: 1.0},
			}}, nil
		},
	}

	d := &MixedEntitySearch{
		PropertyIndex:     "properties",
		NeighborhoodIndex: "neighborhoods",
		WikipediaIndex:    "wikipedia",
		Query:             "downtown loft",
	}
	result, err := Run[MixedEntityResult](context.Background(), backend, d, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Hits) != 3 {
		t.Fatalf("len(Hits) = %d, want 3", len(result.Hits))
	}
	if result.Hits[0].Tag != EntityTagProperty || result.Hits[1].Tag != EntityTagNeighborhood || result.Hits[2].Tag != EntityTagWikipedia {
		t.Fatalf("tags = %v", []EntityTag{result.Hits[0].Tag, result.Hits[1].Tag, result.Hits[2].Tag})
	}
}
