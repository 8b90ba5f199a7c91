// Package demo provides the uniform build/execute/render contract every
// query family implements, plus the typed result models each family
// produces (spec.md §4.H). The harness never branches on result type —
// every result owns its own rendering.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// Result is satisfied by every typed result family in this package. Display
// writes a human-readable rendering of the result to w.
type Result interface {
	Display(w io.Writer)

	// WithError returns a copy of this result carrying a failure diagnostic
	// (spec.md §7: the result object itself carries error_kind/message), so
	// Display can render a short diagnostic in place of hits.
	WithError(kind, message string) Result
}

// QueryDoc is whatever a demo's BuildQuery step produces: a single
// querybuilder document, a pair of documents for hybrid fusion, a list of
// queries for a semantic batch — the harness never inspects it.
type QueryDoc any

// RawHits is whatever a demo's Execute step produces: a single
// [searchbackend.SearchResponse], a pair of them (comparison), fused
// documents plus their hydration response (hybrid), or a
// [SemanticBatchResult] — again opaque to the harness.
type RawHits any

// Demo is a registered query family: it builds a query document, executes
// it (against a backend and whatever else it needs — an embedder, a
// retrieval engine), and converts the raw response into its typed result R.
type Demo[R Result] interface {
	// ID is the stable identifier used on the command line (e.g.
	// "lexical-search").
	ID() string

	// Name and Category are used by `demo list`.
	Name() string
	Category() string

	// BuildQuery constructs this demo's query document, optionally using
	// pkg/querybuilder and pkg/locintent.
	BuildQuery(ctx context.Context, size int) (QueryDoc, error)

	// Execute runs query against backend and returns its raw hits. Demos
	// that need more than one backend call (hybrid, comparison) do so here.
	Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error)

	// ToResult converts raw hits into this demo's typed result.
	ToResult(hits RawHits) (R, error)
}

// Run executes a Demo end to end: build the query, run it, convert to the
// typed result, and return it for display. Run is the only place
// BuildQuery/Execute/ToResult are sequenced together; callers outside this
// package always go through Run rather than calling those steps
// individually. On failure at any step, the returned R is not the zero
// value: it carries an error_kind/message diagnostic (via [Result.WithError])
// so Display renders that diagnostic in place of hits.
func Run[R Result](ctx context.Context, backend searchbackend.Backend, d Demo[R], size int) (R, error) {
	var zero R

	fail := func(err error) (R, error) {
		failed, _ := zero.WithError(searchbackend.KindOf(err).String(), err.Error()).(R)
		return failed, err
	}

	query, err := d.BuildQuery(ctx, size)
	if err != nil {
		return fail(fmt.Errorf("demo %q: build query: %w", d.ID(), err))
	}

	hits, err := d.Execute(ctx, backend, query)
	if err != nil {
		return fail(fmt.Errorf("demo %q: execute: %w", d.ID(), err))
	}

	result, err := d.ToResult(hits)
	if err != nil {
		return fail(fmt.Errorf("demo %q: to result: %w", d.ID(), err))
	}
	return result, nil
}

// Entry describes one demo registered in a [Registry], erasing its result
// type so demos of different R can share one list.
type Entry struct {
	ID       string
	Name     string
	Category string

	// run executes this demo against backend and writes its rendered
	// result to w. Capturing the concrete Demo[R] at registration time is
	// what lets Registry hold heterogeneous demos without reflection.
	run func(ctx context.Context, backend searchbackend.Backend, w io.Writer, size int) error
}

// Registry holds every demo available to the CLI's `demo list`/`demo run`
// commands.
type Registry struct {
	entries []Entry
	byID    map[string]int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Register adds d to the registry under its own ID. Registering a duplicate
// ID replaces the previous entry.
func Register[R Result](r *Registry, d Demo[R]) {
	entry := Entry{
		ID:       d.ID(),
		Name:     d.Name(),
		Category: d.Category(),
		run: func(ctx context.Context, backend searchbackend.Backend, w io.Writer, size int) error {
			result, err := Run(ctx, backend, d, size)
			result.Display(w)
			return err
		},
	}
	if i, ok := r.byID[entry.ID]; ok {
		r.entries[i] = entry
		return
	}
	r.byID[entry.ID] = len(r.entries)
	r.entries = append(r.entries, entry)
}

// List returns every registered demo's metadata, in registration order.
func (r *Registry) List() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Run executes the demo with the given id against backend, writing its
// rendered result to w. Returns an error wrapping [ErrNotFound] if no demo
// with that id is registered.
func (r *Registry) Run(ctx context.Context, id string, backend searchbackend.Backend, w io.Writer, size int) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("demo %q: %w", id, ErrNotFound)
	}
	return r.entries[i].run(ctx, backend, w, size)
}

// ErrNotFound is returned by [Registry.Run] when no demo is registered
// under the requested id.
var ErrNotFound = errors.New("no such demo")
