package demo

import (
	"context"
	"fmt"

	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// MixedEntitySearch implements [Demo] for a single free-text box fanned out
// across the property, neighborhood, and Wikipedia indices in one request,
// tagging each hit by its originating index rather than returning a
// separate result list per entity kind.
type MixedEntitySearch struct {
	PropertyIndex     string
	NeighborhoodIndex string
	WikipediaIndex    string
	Query             string
}

func (d *MixedEntitySearch) ID() string       { return "mixed-entity-search" }
func (d *MixedEntitySearch) Name() string     { return "Mixed-entity free-text search" }
func (d *MixedEntitySearch) Category() string { return "search" }

func (d *MixedEntitySearch) indices() []string {
	return []string{d.PropertyIndex, d.NeighborhoodIndex, d.WikipediaIndex}
}

func (d *MixedEntitySearch) BuildQuery(_ context.Context, size int) (QueryDoc, error) {
	return map[string]any{
		"size": size,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query": d.Query,
				"type":  "best_fields",
				"fields": []string{
					"description^2.0", "features", "amenities",
					"name^2.0", "description",
					"title^2.0", "long_summary", "full_content",
				},
			},
		},
	}, nil
}

func (d *MixedEntitySearch) Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error) {
	doc, ok := query.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("mixed-entity-search: unexpected query type %T", query)
	}
	return backend.Search(ctx, d.indices(), doc)
}

func (d *MixedEntitySearch) ToResult(hits RawHits) (MixedEntityResult, error) {
	resp, ok := hits.(searchbackend.SearchResponse)
	if !ok {
		return MixedEntityResult{}, fmt.Errorf("mixed-entity-search: unexpected hits type %T", hits)
	}
	result := MixedEntityResult{Hits: make([]MixedEntityHit, len(resp.Hits))}
	for i, hit := range resp.Hits {
		result.Hits[i] = MixedEntityHit{
			Tag:     d.tagOf(hit.Index),
			Score:   hit.Score,
			Index:   hit.Index,
			Payload: hit.Source,
		}
	}
	return result, nil
}

func (d *MixedEntitySearch) tagOf(index string) EntityTag {
	switch index {
	case d.NeighborhoodIndex:
		return EntityTagNeighborhood
	case d.WikipediaIndex:
		return EntityTagWikipedia
	default:
		return EntityTagProperty
	}
}
