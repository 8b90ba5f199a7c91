package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danverstone/realsearch/internal/resilience"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// fakeBackend is a minimal in-memory stand-in for searchbackend.Backend
// exercising only the methods the indexer calls.
type fakeBackend struct {
	searchbackend.Backend
	bulkCalls   int
	failNCalls  int
	bulkHandler func(docs []searchbackend.Doc) (searchbackend.BulkResult, error)
}

func (f *fakeBackend) BulkWrite(_ context.Context, _ string, docs []searchbackend.Doc) (searchbackend.BulkResult, error) {
	f.bulkCalls++
	if f.failNCalls > 0 {
		f.failNCalls--
		return searchbackend.BulkResult{}, errors.New("transient bulk failure")
	}
	if f.bulkHandler != nil {
		return f.bulkHandler(docs)
	}
	return searchbackend.BulkResult{Indexed: len(docs)}, nil
}

func docs(n int) []searchbackend.Doc {
	out := make([]searchbackend.Doc, n)
	for i := range out {
		out[i] = searchbackend.Doc{ID: string(rune('a' + i)), Source: map[string]any{}}
	}
	return out
}

func TestIndexDocumentsBatches(t *testing.T) {
	fb := &fakeBackend{}
	idx := New(fb, Config{BatchSize: 10, Retry: resilience.RetryConfig{BaseDelay: time.Millisecond}})

	stats, err := idx.IndexDocuments(context.Background(), "properties", docs(25))
	if err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	if stats.Indexed != 25 {
		t.Fatalf("Indexed = %d, want 25", stats.Indexed)
	}
	if fb.bulkCalls != 3 {
		t.Fatalf("bulkCalls = %d, want 3 (10+10+5)", fb.bulkCalls)
	}
}

func TestIndexDocumentsRetriesTransientFailure(t *testing.T) {
	fb := &fakeBackend{failNCalls: 1}
	idx := New(fb, Config{BatchSize: 10, Retry: resilience.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}})

	stats, err := idx.IndexDocuments(context.Background(), "properties", docs(5))
	if err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	if stats.Failed != 0 || stats.Indexed != 5 {
		t.Fatalf("stats = %+v, want all 5 indexed after retry", stats)
	}
}

func TestIndexDocumentsAccountsPermanentFailure(t *testing.T) {
	fb := &fakeBackend{failNCalls: 99}
	idx := New(fb, Config{BatchSize: 10, Retry: resilience.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond}})

	stats, err := idx.IndexDocuments(context.Background(), "properties", docs(5))
	if err != nil {
		t.Fatalf("IndexDocuments: %v", err)
	}
	if stats.Failed != 5 || stats.Indexed != 0 {
		t.Fatalf("stats = %+v, want all 5 failed", stats)
	}
	if len(stats.Errors) != 5 {
		t.Fatalf("len(Errors) = %d, want 5", len(stats.Errors))
	}
}

func TestIndexAllRunsJobsConcurrently(t *testing.T) {
	fb := &fakeBackend{}
	idx := New(fb, Config{BatchSize: 10, Retry: resilience.RetryConfig{BaseDelay: time.Millisecond}})

	jobs := []Job{
		{Index: "properties", Docs: docs(5)},
		{Index: "neighborhoods", Docs: docs(3)},
	}
	stats, err := idx.IndexAll(context.Background(), jobs)
	if err != nil {
		t.Fatalf("IndexAll: %v", err)
	}
	if len(stats) != 2 || stats[0].Indexed != 5 || stats[1].Indexed != 3 {
		t.Fatalf("stats = %+v", stats)
	}
}
