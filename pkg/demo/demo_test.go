package demo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// fakeBackend is a minimal searchbackend.Backend double used across this
// package's tests. searchHandler lets each test script the response for a
// given index set.
type fakeBackend struct {
	searchbackend.Backend
	searchHandler func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error)
	searchCalls   int
}

func (f *fakeBackend) Search(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
	f.searchCalls++
	return f.searchHandler(ctx, indices, query)
}

func hitFor(id string, score float64, source any) searchbackend.Hit {
	raw, err := json.Marshal(source)
	if err != nil {
		panic(err)
	}
	return searchbackend.Hit{ID: id, Score: score, Source: raw}
}

type stubResult struct {
	rendered string
	errKind  string
	errMsg   string
}

func (r stubResult) Display(w io.Writer) {
	if r.errKind != "" {
		fmt.Fprintf(w, "error [%s]: %s", r.errKind, r.errMsg)
		return
	}
	w.Write([]byte(r.rendered))
}

func (r stubResult) WithError(kind, message string) Result {
	r.errKind, r.errMsg = kind, message
	return r
}

// stubDemo implements Demo[stubResult] for harness-level tests that don't
// need a real query family.
type stubDemo struct {
	id, name, category string
	buildErr, execErr, toResultErr error
	query                          QueryDoc
	hits                           RawHits
}

func (d *stubDemo) ID() string       { return d.id }
func (d *stubDemo) Name() string     { return d.name }
func (d *stubDemo) Category() string { return d.category }

func (d *stubDemo) BuildQuery(ctx context.Context, size int) (QueryDoc, error) {
	if d.buildErr != nil {
		return nil, d.buildErr
	}
	return d.query, nil
}

func (d *stubDemo) Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error) {
	if d.execErr != nil {
		return nil, d.execErr
	}
	return d.hits, nil
}

func (d *stubDemo) ToResult(hits RawHits) (stubResult, error) {
	if d.toResultErr != nil {
		return stubResult{}, d.toResultErr
	}
	return stubResult{rendered: "ok"}, nil
}

func TestRunSequencesBuildExecuteToResult(t *testing.T) {
	d := &stubDemo{id: "stub", query: "q", hits: "h"}
	result, err := Run[stubResult](context.Background(), nil, d, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.rendered != "ok" {
		t.Fatalf("result = %+v, want rendered=ok", result)
	}
}

func TestRunWrapsBuildQueryError(t *testing.T) {
	d := &stubDemo{id: "stub", buildErr: errBoom}
	_, err := Run[stubResult](context.Background(), nil, d, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want it to wrap errBoom", err)
	}
}

func TestRunPopulatesErrorDiagnosticOnFailure(t *testing.T) {
	d := &stubDemo{id: "stub", execErr: errBoom}
	result, err := Run[stubResult](context.Background(), nil, d, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if result.errKind == "" {
		t.Fatal("expected result to carry a non-empty error kind")
	}
	if result.errMsg == "" {
		t.Fatal("expected result to carry a non-empty message")
	}
}

func TestRegistryRunRendersDiagnosticOnFailure(t *testing.T) {
	r := NewRegistry()
	Register[stubResult](r, &stubDemo{id: "a", name: "A", category: "cat", buildErr: errBoom})

	var buf bytes.Buffer
	err := r.Run(context.Background(), "a", nil, &buf, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() == 0 {
		t.Fatal("expected a rendered diagnostic even on failure")
	}
}

func TestRegistryRunDispatchesByID(t *testing.T) {
	r := NewRegistry()
	Register[stubResult](r, &stubDemo{id: "a", name: "A", category: "cat", query: "q", hits: "h"})
	Register[stubResult](r, &stubDemo{id: "b", name: "B", category: "cat", query: "q", hits: "h"})

	var buf bytes.Buffer
	if err := r.Run(context.Background(), "b", nil, &buf, 10); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if buf.String() != "ok" {
		t.Fatalf("buf = %q, want ok", buf.String())
	}
}

func TestRegistryRunUnknownIDWrapsErrNotFound(t *testing.T) {
	r := NewRegistry()
	var buf bytes.Buffer
	err := r.Run(context.Background(), "missing", nil, &buf, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want it to wrap ErrNotFound", err)
	}
}

func TestRegistryRegisterReplacesDuplicateID(t *testing.T) {
	r := NewRegistry()
	Register[stubResult](r, &stubDemo{id: "a", name: "first", category: "cat", query: "q", hits: "h"})
	Register[stubResult](r, &stubDemo{id: "a", name: "second", category: "cat", query: "q", hits: "h"})

	list := r.List()
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Name != "second" {
		t.Fatalf("Name = %q, want second", list[0].Name)
	}
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
