package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/danverstone/realsearch/pkg/locintent"
	"github.com/danverstone/realsearch/pkg/provider/embeddings"
	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/retrieval"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

type semanticBatchQuery struct {
	queries []string
	size    int
}

// SemanticBatch implements [Demo] for replaying a fixed list of persona
// queries through the hybrid retriever and reporting per-query hit counts
// alongside aggregate timings, useful for eyeballing latency and recall
// across a representative query set in one pass.
type SemanticBatch struct {
	Index     string
	Queries   []string
	Filters   querybuilder.SearchFilters
	Extractor *locintent.Extractor
	Embedder  embeddings.Provider
	Engine    *retrieval.Engine
	Hybrid    querybuilder.HybridConfig
	Size      int
}

func (d *SemanticBatch) ID() string       { return "semantic-batch" }
func (d *SemanticBatch) Name() string     { return "Semantic batch benchmark" }
func (d *SemanticBatch) Category() string { return "analytics" }

func (d *SemanticBatch) BuildQuery(_ context.Context, size int) (QueryDoc, error) {
	return semanticBatchQuery{queries: d.Queries, size: size}, nil
}

func (d *SemanticBatch) Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error) {
	sbq, ok := query.(semanticBatchQuery)
	if !ok {
		return nil, fmt.Errorf("semantic-batch: unexpected query type %T", query)
	}

	size := sbq.size
	if size <= 0 {
		size = d.Size
	}
	if size <= 0 {
		size = 10
	}

	entries := make([]SemanticBatchEntry, 0, len(sbq.queries))
	start := time.Now()
	for _, q := range sbq.queries {
		queryStart := time.Now()
		hs := &HybridSearch{
			Index:     d.Index,
			RawQuery:  q,
			Filters:   d.Filters,
			Extractor: d.Extractor,
			Embedder:  d.Embedder,
			Engine:    d.Engine,
			Hybrid:    d.Hybrid,
		}
		result, err := Run[PropertyResult](ctx, backend, hs, size)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q, err)
		}
		entries = append(entries, SemanticBatchEntry{
			Query:    q,
			Result:   result,
			Duration: time.Since(queryStart),
		})
	}

	return SemanticBatchResult{Entries: entries, TotalElapsed: time.Since(start)}, nil
}

func (d *SemanticBatch) ToResult(hits RawHits) (SemanticBatchResult, error) {
	result, ok := hits.(SemanticBatchResult)
	if !ok {
		return SemanticBatchResult{}, fmt.Errorf("semantic-batch: unexpected hits type %T", hits)
	}
	return result, nil
}
