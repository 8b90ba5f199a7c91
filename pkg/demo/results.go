package demo

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/danverstone/realsearch/pkg/catalog"
)

// Outcome carries a failure diagnostic for a result that could not be
// produced. Its zero value means the owning result succeeded and should
// render its hits normally.
type Outcome struct {
	ErrorKind string
	Message   string
}

// Failed reports whether this outcome carries a diagnostic.
func (o Outcome) Failed() bool { return o.ErrorKind != "" }

func (o Outcome) display(w io.Writer) {
	fmt.Fprintf(w, "error [%s]: %s\n", o.ErrorKind, o.Message)
}

// PropertyHit is one scored property hit, with optional lexical match
// highlights.
type PropertyHit struct {
	Score      float64
	Property   catalog.Property
	Highlights []string
}

// PropertyResult is returned by any demo whose hits are uniformly
// properties: lexical, filtered, geo, k-NN, and hybrid searches.
type PropertyResult struct {
	Hits  []PropertyHit
	Total int64

	// Page and Size describe the pagination window this result covers.
	Page int
	Size int

	Outcome Outcome
}

// WithError returns a copy of r carrying a failure diagnostic, so the
// harness can render it via Display in place of hits.
func (r PropertyResult) WithError(kind, message string) Result {
	r.Outcome = Outcome{ErrorKind: kind, Message: message}
	return r
}

func (r PropertyResult) Display(w io.Writer) {
	if r.Outcome.Failed() {
		r.Outcome.display(w)
		return
	}
	fmt.Fprintf(w, "%d hits (showing %d, page %d)\n", r.Total, len(r.Hits), r.Page)
	for i, h := range r.Hits {
		fmt.Fprintf(w, "  %2d. [%.3f] %s — %s, %s  $%.0f\n",
			i+1, h.Score, h.Property.ListingID, h.Property.Address.City, h.Property.Address.State, h.Property.Price)
		for _, hl := range h.Highlights {
			fmt.Fprintf(w, "       %s\n", hl)
		}
	}
}

// EntityTag identifies which entity family a MixedEntityHit carries.
type EntityTag string

const (
	EntityTagProperty     EntityTag = "property"
	EntityTagNeighborhood EntityTag = "neighborhood"
	EntityTagWikipedia    EntityTag = "wikipedia"
)

// MixedEntityHit carries one hit from any of the three primary indices,
// tagged with its entity kind so the caller can type-switch on Tag without
// needing a separate result family per index.
type MixedEntityHit struct {
	Tag     EntityTag
	Score   float64
	Index   string
	Payload json.RawMessage
}

// MixedEntityResult is returned by demos that search across ≥1 index at
// once (e.g. a single free-text box searching properties, neighborhoods,
// and Wikipedia articles together).
type MixedEntityResult struct {
	Hits []MixedEntityHit

	Outcome Outcome
}

// WithError returns a copy of r carrying a failure diagnostic, so the
// harness can render it via Display in place of hits.
func (r MixedEntityResult) WithError(kind, message string) Result {
	r.Outcome = Outcome{ErrorKind: kind, Message: message}
	return r
}

func (r MixedEntityResult) Display(w io.Writer) {
	if r.Outcome.Failed() {
		r.Outcome.display(w)
		return
	}
	fmt.Fprintf(w, "%d mixed-entity hits\n", len(r.Hits))
	for i, h := range r.Hits {
		fmt.Fprintf(w, "  %2d. [%s] [%.3f] index=%s\n", i+1, h.Tag, h.Score, h.Index)
	}
}

// AggregationBucket is one terms/histogram bucket.
type AggregationBucket struct {
	Key   string
	Count int64
}

// AggregationStats mirrors an ES stats aggregation.
type AggregationStats struct {
	Count int64
	Min   float64
	Max   float64
	Avg   float64
	Sum   float64
}

// AggregationResult is returned by aggregation-only and price-range+agg
// demos; it carries no document hits.
type AggregationResult struct {
	Buckets map[string][]AggregationBucket
	Stats   map[string]AggregationStats

	Outcome Outcome
}

// WithError returns a copy of r carrying a failure diagnostic, so the
// harness can render it via Display in place of hits.
func (r AggregationResult) WithError(kind, message string) Result {
	r.Outcome = Outcome{ErrorKind: kind, Message: message}
	return r
}

func (r AggregationResult) Display(w io.Writer) {
	if r.Outcome.Failed() {
		r.Outcome.display(w)
		return
	}
	for name, stats := range r.Stats {
		fmt.Fprintf(w, "%s: count=%d min=%.2f max=%.2f avg=%.2f sum=%.2f\n",
			name, stats.Count, stats.Min, stats.Max, stats.Avg, stats.Sum)
	}
	for name, buckets := range r.Buckets {
		fmt.Fprintf(w, "%s:\n", name)
		for _, b := range buckets {
			fmt.Fprintf(w, "  %s: %d\n", b.Key, b.Count)
		}
	}
}

// ComparisonResult holds two labeled result lists side by side, typically
// [LEXICAL] vs [SEMANTIC], plus their overlap statistics.
type ComparisonResult struct {
	LabelA, LabelB   string
	ListingIDsA      []string
	ListingIDsB      []string
	IntersectionSize int
	UniqueToACount   int
	UniqueToBCount   int

	Outcome Outcome
}

// WithError returns a copy of r carrying a failure diagnostic, so the
// harness can render it via Display in place of hits.
func (r ComparisonResult) WithError(kind, message string) Result {
	r.Outcome = Outcome{ErrorKind: kind, Message: message}
	return r
}

// NewComparisonResult computes overlap statistics between two ranked
// listing-id lists.
func NewComparisonResult(labelA, labelB string, idsA, idsB []string) ComparisonResult {
	inB := make(map[string]struct{}, len(idsB))
	for _, id := range idsB {
		inB[id] = struct{}{}
	}
	intersection := 0
	for _, id := range idsA {
		if _, ok := inB[id]; ok {
			intersection++
		}
	}
	return ComparisonResult{
		LabelA:           labelA,
		LabelB:           labelB,
		ListingIDsA:      idsA,
		ListingIDsB:      idsB,
		IntersectionSize: intersection,
		UniqueToACount:   len(idsA) - intersection,
		UniqueToBCount:   len(idsB) - intersection,
	}
}

func (r ComparisonResult) Display(w io.Writer) {
	if r.Outcome.Failed() {
		r.Outcome.display(w)
		return
	}
	fmt.Fprintf(w, "[%s] %d results vs [%s] %d results\n", r.LabelA, len(r.ListingIDsA), r.LabelB, len(r.ListingIDsB))
	fmt.Fprintf(w, "overlap: %d shared, %d unique to %s, %d unique to %s\n",
		r.IntersectionSize, r.UniqueToACount, r.LabelA, r.UniqueToBCount, r.LabelB)
}

// SemanticBatchEntry pairs one input query with its PropertyResult.
type SemanticBatchEntry struct {
	Query    string
	Result   PropertyResult
	Duration time.Duration
}

// SemanticBatchResult is returned by demos that replay a batch of queries
// (e.g. persona-driven semantic search benchmarking) and report aggregate
// timings alongside each query's result.
type SemanticBatchResult struct {
	Entries      []SemanticBatchEntry
	TotalElapsed time.Duration

	Outcome Outcome
}

// WithError returns a copy of r carrying a failure diagnostic, so the
// harness can render it via Display in place of hits.
func (r SemanticBatchResult) WithError(kind, message string) Result {
	r.Outcome = Outcome{ErrorKind: kind, Message: message}
	return r
}

func (r SemanticBatchResult) Display(w io.Writer) {
	if r.Outcome.Failed() {
		r.Outcome.display(w)
		return
	}
	fmt.Fprintf(w, "%d queries, %s total\n", len(r.Entries), r.TotalElapsed)
	for _, e := range r.Entries {
		fmt.Fprintf(w, "  %q: %d hits in %s\n", e.Query, len(e.Result.Hits), e.Duration)
	}
}
