// Package indexer implements the bulk indexing pipeline: ensuring an index's
// mapping exists, then streaming documents into it in batches with
// retry/backoff and per-batch accounting (spec.md §4.C).
package indexer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danverstone/realsearch/internal/resilience"
	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// defaultBatchSize is the number of documents per BulkWrite call when the
// caller does not override it.
const defaultBatchSize = 100

// Config tunes an [Indexer].
type Config struct {
	// BatchSize caps the number of documents sent per backend BulkWrite
	// call. Default: 100.
	BatchSize int

	// Retry configures the retry/backoff applied to each batch. Default:
	// 3 attempts, 200ms base delay.
	Retry resilience.RetryConfig
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.Retry.Name == "" {
		c.Retry.Name = "indexer.bulk_write"
	}
	return c
}

// Indexer drives EnsureIndex/IndexDocuments against a [searchbackend.Backend].
type Indexer struct {
	backend searchbackend.Backend
	cfg     Config
}

// New returns an Indexer backed by b.
func New(b searchbackend.Backend, cfg Config) *Indexer {
	return &Indexer{backend: b, cfg: cfg.withDefaults()}
}

// Stats aggregates bulk-write accounting across every batch of one
// IndexDocuments call.
type Stats struct {
	Indexed int
	Failed  int
	Errors  []searchbackend.BulkItemError
}

func (s *Stats) add(r searchbackend.BulkResult) {
	s.Indexed += r.Indexed
	s.Failed += r.Failed
	s.Errors = append(s.Errors, r.Errors...)
}

// EnsureIndex creates indexName for the given entity kind if it doesn't
// already exist, using the catalog's mapping/settings for that kind.
func (idx *Indexer) EnsureIndex(ctx context.Context, kind catalog.EntityKind, indexName string, vec catalog.VectorConfig, forceRecreate bool) error {
	spec, err := catalog.SpecFor(kind, indexName, vec)
	if err != nil {
		return fmt.Errorf("indexer: ensure index: %w", err)
	}
	return idx.backend.EnsureIndex(ctx, indexName, spec.Mapping, spec.Settings, forceRecreate)
}

// IndexDocuments streams docs into index in batches of idx.cfg.BatchSize,
// retrying each batch independently via [resilience.Retry]. A failing batch
// (after all retries) does not abort subsequent batches; its documents are
// counted as failed and its error is attached to each one. IndexDocuments
// returns the aggregated [Stats] and a non-nil error only when ctx is
// cancelled.
func (idx *Indexer) IndexDocuments(ctx context.Context, index string, docs []searchbackend.Doc) (Stats, error) {
	var stats Stats

	for start := 0; start < len(docs); start += idx.cfg.BatchSize {
		end := start + idx.cfg.BatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		var result searchbackend.BulkResult
		err := resilience.Retry(ctx, idx.cfg.Retry, func() error {
			var err error
			result, err = idx.backend.BulkWrite(ctx, index, batch)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed += len(batch)
			for _, d := range batch {
				stats.Errors = append(stats.Errors, searchbackend.BulkItemError{ID: d.ID, Message: err.Error()})
			}
			continue
		}
		stats.add(result)
	}
	return stats, nil
}

// Job pairs a target index with the documents to write into it, for use
// with [IndexAll].
type Job struct {
	Index string
	Docs  []searchbackend.Doc
}

// IndexAll runs [Indexer.IndexDocuments] for every job concurrently, one
// goroutine per job, and returns the per-job stats in job order. If any
// job's context is cancelled the remaining jobs are aborted (errgroup
// fan-out/join, matching the hot-path assembly pattern used elsewhere in
// this repository).
func (idx *Indexer) IndexAll(ctx context.Context, jobs []Job) ([]Stats, error) {
	stats := make([]Stats, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			s, err := idx.IndexDocuments(egCtx, job.Index, job.Docs)
			if err != nil {
				return fmt.Errorf("indexer: index %q: %w", job.Index, err)
			}
			stats[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
