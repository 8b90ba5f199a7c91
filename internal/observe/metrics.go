// Package observe provides application-wide observability primitives for
// realsearch: OpenTelemetry metrics and distributed tracing.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all realsearch metrics.
const meterName = "github.com/danverstone/realsearch"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// RetrievalDuration tracks a single query demo's end-to-end latency
	// (BuildQuery + Execute + ToResult). Use with attribute.String("demo", ...).
	RetrievalDuration metric.Float64Histogram

	// RetrieverDuration tracks one retriever's latency within a hybrid
	// query (lexical or knn). Use with attribute.String("retriever", ...).
	RetrieverDuration metric.Float64Histogram

	// IndexingBatchDuration tracks a single bulk-write batch's latency.
	// Use with attribute.String("index", ...).
	IndexingBatchDuration metric.Float64Histogram

	// RelationshipScanDuration tracks one relationship-builder property
	// page's scan-to-write latency.
	RelationshipScanDuration metric.Float64Histogram

	// --- Counters ---

	// BackendRequests counts calls into the search backend. Use with
	// attributes: attribute.String("op", ...), attribute.String("status", ...).
	BackendRequests metric.Int64Counter

	// DocumentsIndexed counts documents successfully bulk-written, by index.
	DocumentsIndexed metric.Int64Counter

	// DocumentsFailed counts documents that failed indexing after retry
	// exhaustion, by index.
	DocumentsFailed metric.Int64Counter

	// EmbeddingRequests counts embedding provider calls. Use with
	// attribute.String("status", ...).
	EmbeddingRequests metric.Int64Counter

	// --- Error counters ---

	// BackendErrors counts search backend errors by [searchbackend.ErrKind].
	BackendErrors metric.Int64Counter

	// --- Gauges ---

	// CircuitBreakerState tracks the current state of a named circuit
	// breaker (0=closed, 1=half-open, 2=open). Use with
	// attribute.String("name", ...).
	CircuitBreakerState metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds), tuned for
// search-backend round trips rather than sub-100ms voice-pipeline stages.
var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RetrievalDuration, err = m.Float64Histogram("realsearch.retrieval.duration",
		metric.WithDescription("Latency of a single demo's build+execute+render cycle."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RetrieverDuration, err = m.Float64Histogram("realsearch.retriever.duration",
		metric.WithDescription("Latency of one retriever leg within a hybrid query."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IndexingBatchDuration, err = m.Float64Histogram("realsearch.indexing.batch_duration",
		metric.WithDescription("Latency of a single bulk-write batch."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RelationshipScanDuration, err = m.Float64Histogram("realsearch.relationships.scan_duration",
		metric.WithDescription("Latency of one relationship-builder property page."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.BackendRequests, err = m.Int64Counter("realsearch.backend.requests",
		metric.WithDescription("Total search backend calls by operation and status."),
	); err != nil {
		return nil, err
	}
	if met.DocumentsIndexed, err = m.Int64Counter("realsearch.documents.indexed",
		metric.WithDescription("Total documents successfully bulk-written, by index."),
	); err != nil {
		return nil, err
	}
	if met.DocumentsFailed, err = m.Int64Counter("realsearch.documents.failed",
		metric.WithDescription("Total documents that failed indexing after retry exhaustion, by index."),
	); err != nil {
		return nil, err
	}
	if met.EmbeddingRequests, err = m.Int64Counter("realsearch.embedding.requests",
		metric.WithDescription("Total embedding provider calls by status."),
	); err != nil {
		return nil, err
	}

	if met.BackendErrors, err = m.Int64Counter("realsearch.backend.errors",
		metric.WithDescription("Total search backend errors by kind."),
	); err != nil {
		return nil, err
	}

	if met.CircuitBreakerState, err = m.Int64UpDownCounter("realsearch.circuit_breaker.state",
		metric.WithDescription("Current state of a named circuit breaker (0=closed, 1=half-open, 2=open)."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordBackendRequest is a convenience method that records a backend-request
// counter increment with the standard attribute set.
func (m *Metrics) RecordBackendRequest(ctx context.Context, op, status string) {
	m.BackendRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("status", status),
		),
	)
}

// RecordBackendError is a convenience method that records a backend-error
// counter increment.
func (m *Metrics) RecordBackendError(ctx context.Context, kind string) {
	m.BackendErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordIndexed is a convenience method that records indexed/failed document
// counts for a single batch against the named index.
func (m *Metrics) RecordIndexed(ctx context.Context, index string, indexed, failed int) {
	if indexed > 0 {
		m.DocumentsIndexed.Add(ctx, int64(indexed), metric.WithAttributes(attribute.String("index", index)))
	}
	if failed > 0 {
		m.DocumentsFailed.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("index", index)))
	}
}
