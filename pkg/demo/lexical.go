package demo

import (
	"context"
	"fmt"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// LexicalSearch implements [Demo] for the lexical (multi_match) property
// search family.
type LexicalSearch struct {
	Index   string
	Query   string
	Filters querybuilder.SearchFilters
}

func (d *LexicalSearch) ID() string       { return "lexical-search" }
func (d *LexicalSearch) Name() string     { return "Lexical property search" }
func (d *LexicalSearch) Category() string { return "search" }

func (d *LexicalSearch) BuildQuery(_ context.Context, size int) (QueryDoc, error) {
	return querybuilder.Lexical(d.Query, d.Filters, size), nil
}

func (d *LexicalSearch) Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error) {
	doc, ok := query.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("lexical-search: unexpected query type %T", query)
	}
	return backend.Search(ctx, []string{d.Index}, doc)
}

func (d *LexicalSearch) ToResult(hits RawHits) (PropertyResult, error) {
	resp, ok := hits.(searchbackend.SearchResponse)
	if !ok {
		return PropertyResult{}, fmt.Errorf("lexical-search: unexpected hits type %T", hits)
	}
	return toPropertyResult(resp, 1, len(resp.Hits))
}

func toPropertyResult(resp searchbackend.SearchResponse, page, size int) (PropertyResult, error) {
	result := PropertyResult{Total: resp.Total, Page: page, Size: size}
	for _, hit := range resp.Hits {
		var p catalog.Property
		if err := unmarshalHit(hit, &p); err != nil {
			return PropertyResult{}, err
		}
		result.Hits = append(result.Hits, PropertyHit{Score: hit.Score, Property: p})
	}
	return result, nil
}
