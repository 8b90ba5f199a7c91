// Package searchbackend defines the narrow contract realsearch uses to talk
// to the search engine: ensure_index, bulk_write, search, delete_index
// (spec.md §6), plus refresh and ping. No other shape is assumed; concrete
// implementations (see pkg/searchbackend/es) map these six operations onto
// a real engine.
package searchbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKind is a closed enum of the error taxonomy from spec.md §7. It is
// attached to errors via [Error] rather than expressed as a type hierarchy.
type ErrKind int

const (
	KindUnknown ErrKind = iota
	KindTransport
	KindValidation
	KindSchemaConflict
	KindNotFound
	KindProviderQuota
	KindCancelled
)

func (k ErrKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindSchemaConflict:
		return "schema_conflict"
	case KindNotFound:
		return "not_found"
	case KindProviderQuota:
		return "provider_quota"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its [ErrKind] classification.
type Error struct {
	Kind ErrKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("searchbackend: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs an [Error] carrying kind and op (the failing
// operation name, e.g. "bulk_write").
func NewError(kind ErrKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the [ErrKind] from err, walking its Unwrap chain. Returns
// KindUnknown when err does not carry a classification.
func KindOf(err error) ErrKind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// Doc is a single document destined for a bulk write: Doc-level ID is the
// deterministic primary key (spec.md §4.C forbids auto-ids), Source is the
// document body.
type Doc struct {
	ID     string
	Source any
}

// BulkResult aggregates the outcome of one BulkWrite call (spec.md §4.C).
type BulkResult struct {
	Indexed int
	Failed  int
	Errors  []BulkItemError
}

// BulkItemError records one failed document within a batch.
type BulkItemError struct {
	ID      string
	Message string
}

// Hit is a single ranked search result.
type Hit struct {
	Index  string
	ID     string
	Score  float64
	Source []byte // raw JSON source, decoded by the caller into its own type
}

// SearchResponse is the backend's answer to a Search call.
type SearchResponse struct {
	Hits         []Hit
	Total        int64
	Aggregations map[string]json.RawMessage
}

// Backend is the opaque interface every component in this repository uses
// to reach the search engine. Implementations must honor ctx cancellation on
// every call (spec.md §5) and must not retain ctx beyond the call.
type Backend interface {
	// EnsureIndex creates the named index with the given mapping/settings if
	// it does not exist. If it exists with an incompatible mapping and
	// forceRecreate is false, returns an *Error with Kind ==
	// KindSchemaConflict. If forceRecreate is true, the index is deleted and
	// recreated unconditionally.
	EnsureIndex(ctx context.Context, name string, mapping, settings map[string]any, forceRecreate bool) error

	// BulkWrite upserts docs into index in a single backend call and
	// returns a per-document accounting. A single bad document never aborts
	// the whole call.
	BulkWrite(ctx context.Context, index string, docs []Doc) (BulkResult, error)

	// Search executes a pre-built query document (produced by
	// pkg/querybuilder) against one or more indices.
	Search(ctx context.Context, indices []string, queryDoc map[string]any) (SearchResponse, error)

	// DeleteIndex removes the named index. Deleting a non-existent index is
	// not an error.
	DeleteIndex(ctx context.Context, name string) error

	// Refresh makes recently written documents visible to search. Callers
	// must not assume read-after-write without calling this explicitly
	// (spec.md §5).
	Refresh(ctx context.Context, index string) error

	// Ping reports whether the backend is reachable, used for the CLI's
	// pre-flight readiness check.
	Ping(ctx context.Context) error
}
