package demo

import (
	"context"
	"fmt"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/locintent"
	"github.com/danverstone/realsearch/pkg/provider/embeddings"
	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/retrieval"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// hybridQuery carries the two retriever documents and the extracted location
// intent. The intent does not reach ToResult, so the result does not report
// which city/state the query resolved to.
type hybridQuery struct {
	lexical map[string]any
	knn     map[string]any
	intent  locintent.LocationIntent
}

// HybridSearch implements [Demo] for the combined lexical+k-NN, RRF-fused
// property search family (spec.md §4.E "Hybrid query construction").
type HybridSearch struct {
	Index     string
	RawQuery  string
	Filters   querybuilder.SearchFilters
	Extractor *locintent.Extractor
	Embedder  embeddings.Provider
	Engine    *retrieval.Engine
	Hybrid    querybuilder.HybridConfig
}

func (d *HybridSearch) ID() string       { return "hybrid-search" }
func (d *HybridSearch) Name() string     { return "Hybrid lexical + semantic search (RRF)" }
func (d *HybridSearch) Category() string { return "search" }

func (d *HybridSearch) BuildQuery(ctx context.Context, size int) (QueryDoc, error) {
	intent := d.Extractor.Extract(d.RawQuery)

	filters := d.Filters
	if intent.HasLocation {
		if intent.City != "" {
			filters.Cities = append(filters.Cities, intent.City)
		}
		if intent.State != "" {
			filters.States = append(filters.States, intent.State)
		}
	}

	vector, err := d.Embedder.Embed(ctx, intent.CleanedQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	lexical, knn := querybuilder.Hybrid(intent.CleanedQuery, vector, filters, d.Hybrid, size)
	return hybridQuery{lexical: lexical, knn: knn, intent: intent}, nil
}

func (d *HybridSearch) Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error) {
	hq, ok := query.(hybridQuery)
	if !ok {
		return nil, fmt.Errorf("hybrid-search: unexpected query type %T", query)
	}

	retrievers := []retrieval.Retriever{
		{Name: "lexical", Run: func(ctx context.Context) ([]retrieval.RankedDoc, error) {
			resp, err := backend.Search(ctx, []string{d.Index}, hq.lexical)
			if err != nil {
				return nil, err
			}
			return toRankedDocs(resp), nil
		}},
		{Name: "knn", Run: func(ctx context.Context) ([]retrieval.RankedDoc, error) {
			resp, err := backend.Search(ctx, []string{d.Index}, hq.knn)
			if err != nil {
				return nil, err
			}
			return toRankedDocs(resp), nil
		}},
	}

	cfg := retrieval.RRFConfig{RankConstant: d.Hybrid.RankConstant, RankWindowSize: d.Hybrid.RankWindowSize}
	fused, err := d.Engine.Execute(ctx, retrievers, cfg)
	if err != nil {
		return nil, err
	}

	// Hydrate each fused listing_id back to its full property document.
	// A dedicated lookup keeps the retrievers lightweight (id + rank only).
	resp, err := backend.Search(ctx, []string{d.Index}, relationshipLookupQuery(fused))
	if err != nil {
		return nil, err
	}
	return hybridHits{fused: fused, resp: resp}, nil
}

func (d *HybridSearch) ToResult(hits RawHits) (PropertyResult, error) {
	hh, ok := hits.(hybridHits)
	if !ok {
		return PropertyResult{}, fmt.Errorf("hybrid-search: unexpected hits type %T", hits)
	}

	byID := make(map[string]catalog.Property, len(hh.resp.Hits))
	for _, hit := range hh.resp.Hits {
		var p catalog.Property
		if err := unmarshalHit(hit, &p); err != nil {
			return PropertyResult{}, err
		}
		byID[p.ListingID] = p
	}

	result := PropertyResult{Total: int64(len(hh.fused))}
	for _, f := range hh.fused {
		p, ok := byID[f.ListingID]
		if !ok {
			continue
		}
		result.Hits = append(result.Hits, PropertyHit{Score: f.HybridScore, Property: p})
	}
	result.Page = 1
	result.Size = len(result.Hits)
	return result, nil
}

type hybridHits struct {
	fused []retrieval.FusedDoc
	resp  searchbackend.SearchResponse
}

func toRankedDocs(resp searchbackend.SearchResponse) []retrieval.RankedDoc {
	docs := make([]retrieval.RankedDoc, len(resp.Hits))
	for i, hit := range resp.Hits {
		docs[i] = retrieval.RankedDoc{ListingID: hit.ID, Rank: i + 1, RawScore: hit.Score}
	}
	return docs
}

func relationshipLookupQuery(fused []retrieval.FusedDoc) map[string]any {
	ids := make([]string, len(fused))
	for i, f := range fused {
		ids[i] = f.ListingID
	}
	return querybuilder.RelationshipLookup(ids)
}
