package searchbackend

import (
	"context"

	"github.com/danverstone/realsearch/internal/observe"
	"github.com/danverstone/realsearch/internal/resilience"
)

// Resilient wraps a [Backend] with a circuit breaker, bounded retry, and
// request/error metrics. Each operation is retried with backoff, with every
// attempt gated by the breaker; a tripped breaker returns
// [resilience.ErrCircuitOpen] immediately instead of forwarding to the
// underlying backend or burning a retry attempt on a backend known to be
// down.
type Resilient struct {
	backend Backend
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	metrics *observe.Metrics
}

// NewResilient returns a Backend that guards every call to b with a circuit
// breaker named after cbCfg.Name and a bounded retry per retryCfg, recording
// request/error counts on m.
func NewResilient(b Backend, cbCfg resilience.CircuitBreakerConfig, retryCfg resilience.RetryConfig, m *observe.Metrics) *Resilient {
	return &Resilient{backend: b, breaker: resilience.NewCircuitBreaker(cbCfg), retry: retryCfg, metrics: m}
}

func (r *Resilient) guard(ctx context.Context, op string, fn func() error) error {
	retryCfg := r.retry
	retryCfg.Name = op
	retryCtx, stop := context.WithCancel(ctx)
	defer stop()
	var openErr error
	err := resilience.Retry(retryCtx, retryCfg, func() error {
		err := r.breaker.Execute(fn)
		if err == resilience.ErrCircuitOpen {
			openErr = err
			stop()
		}
		return err
	})
	if openErr != nil {
		err = openErr
	}
	status := "ok"
	if err != nil {
		status = "error"
		r.metrics.RecordBackendError(ctx, KindOf(err).String())
	}
	r.metrics.RecordBackendRequest(ctx, op, status)
	return err
}

func (r *Resilient) EnsureIndex(ctx context.Context, name string, mapping, settings map[string]any, forceRecreate bool) error {
	return r.guard(ctx, "ensure_index", func() error {
		return r.backend.EnsureIndex(ctx, name, mapping, settings, forceRecreate)
	})
}

func (r *Resilient) BulkWrite(ctx context.Context, index string, docs []Doc) (BulkResult, error) {
	var result BulkResult
	err := r.guard(ctx, "bulk_write", func() error {
		var err error
		result, err = r.backend.BulkWrite(ctx, index, docs)
		return err
	})
	return result, err
}

func (r *Resilient) Search(ctx context.Context, indices []string, queryDoc map[string]any) (SearchResponse, error) {
	var resp SearchResponse
	err := r.guard(ctx, "search", func() error {
		var err error
		resp, err = r.backend.Search(ctx, indices, queryDoc)
		return err
	})
	return resp, err
}

func (r *Resilient) DeleteIndex(ctx context.Context, name string) error {
	return r.guard(ctx, "delete_index", func() error {
		return r.backend.DeleteIndex(ctx, name)
	})
}

func (r *Resilient) Refresh(ctx context.Context, index string) error {
	return r.guard(ctx, "refresh", func() error {
		return r.backend.Refresh(ctx, index)
	})
}

func (r *Resilient) Ping(ctx context.Context) error {
	return r.guard(ctx, "ping", func() error {
		return r.backend.Ping(ctx)
	})
}
