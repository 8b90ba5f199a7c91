package demo

import (
	"context"
	"fmt"

	"github.com/danverstone/realsearch/pkg/provider/embeddings"
	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

type comparisonQuery struct {
	lexical map[string]any
	knn     map[string]any
}

// LexicalVsSemantic implements [Demo] for side-by-side comparison of the
// lexical and k-NN retrievers run independently (no fusion), surfacing
// their overlap.
type LexicalVsSemantic struct {
	Index    string
	Query    string
	Filters  querybuilder.SearchFilters
	Embedder embeddings.Provider
	K        int
}

func (d *LexicalVsSemantic) ID() string       { return "lexical-vs-semantic" }
func (d *LexicalVsSemantic) Name() string     { return "Lexical vs semantic comparison" }
func (d *LexicalVsSemantic) Category() string { return "analytics" }

func (d *LexicalVsSemantic) BuildQuery(ctx context.Context, size int) (QueryDoc, error) {
	vector, err := d.Embedder.Embed(ctx, d.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	k := d.K
	if k <= 0 {
		k = size
	}
	return comparisonQuery{
		lexical: querybuilder.Lexical(d.Query, d.Filters, size),
		knn:     querybuilder.KNN(vector, k, d.Filters),
	}, nil
}

func (d *LexicalVsSemantic) Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error) {
	cq, ok := query.(comparisonQuery)
	if !ok {
		return nil, fmt.Errorf("lexical-vs-semantic: unexpected query type %T", query)
	}
	lexicalResp, err := backend.Search(ctx, []string{d.Index}, cq.lexical)
	if err != nil {
		return nil, fmt.Errorf("lexical retriever: %w", err)
	}
	knnResp, err := backend.Search(ctx, []string{d.Index}, cq.knn)
	if err != nil {
		return nil, fmt.Errorf("knn retriever: %w", err)
	}
	return [2]searchbackend.SearchResponse{lexicalResp, knnResp}, nil
}

func (d *LexicalVsSemantic) ToResult(hits RawHits) (ComparisonResult, error) {
	pair, ok := hits.([2]searchbackend.SearchResponse)
	if !ok {
		return ComparisonResult{}, fmt.Errorf("lexical-vs-semantic: unexpected hits type %T", hits)
	}
	return NewComparisonResult("LEXICAL", "SEMANTIC", listingIDs(pair[0]), listingIDs(pair[1])), nil
}

func listingIDs(resp searchbackend.SearchResponse) []string {
	ids := make([]string, len(resp.Hits))
	for i, hit := range resp.Hits {
		ids[i] = hit.ID
	}
	return ids
}
