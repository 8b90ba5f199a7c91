package retrieval

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Retriever is one independently-executable leg of a hybrid query: a named
// function that returns its ranked documents.
type Retriever struct {
	Name   string
	Weight float64 // 0 means unweighted (1.0)
	Run    func(ctx context.Context) ([]RankedDoc, error)
}

// Engine executes a set of Retrievers concurrently and fuses their results
// via Reciprocal Rank Fusion.
//
// The backend this repository targets predates native multi-retriever RRF
// support, so every hybrid query takes the client-side fusion path: each
// retriever issues its own backend call with identical filters attached,
// and Engine joins them here.
type Engine struct{}

// NewEngine returns a ready-to-use Engine. It holds no state; a single
// instance may be shared and called concurrently.
func NewEngine() *Engine { return &Engine{} }

// Execute runs every retriever concurrently (one goroutine each, mirroring
// the hot-path fan-out/join pattern used elsewhere in this repository) and
// fuses their results. If any retriever returns an error — including one
// caused by ctx cancellation — Execute aborts the remaining retrievers and
// returns that error with no fused output; partial results are never
// returned (spec.md §4.F forbids best-effort fusion on cancel).
func (e *Engine) Execute(ctx context.Context, retrievers []Retriever, cfg RRFConfig) ([]FusedDoc, error) {
	results := make([]RetrieverResult, len(retrievers))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, r := range retrievers {
		i, r := i, r
		eg.Go(func() error {
			docs, err := r.Run(egCtx)
			if err != nil {
				return fmt.Errorf("retrieval: retriever %q: %w", r.Name, err)
			}
			results[i] = RetrieverResult{Name: r.Name, Weight: r.Weight, Docs: docs}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return Fuse(results, cfg), nil
}
