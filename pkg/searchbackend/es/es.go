// Package es implements [searchbackend.Backend] against an
// Elasticsearch/OpenSearch-compatible cluster using olivere/elastic/v7.
package es

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/rs/zerolog"

	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// Config holds connection parameters for [New].
type Config struct {
	// URLs lists one or more cluster endpoints, e.g. "http://localhost:9200".
	URLs []string

	// Username/Password enable HTTP basic auth; leave empty to disable.
	Username string
	Password string

	// Sniff enables cluster node discovery. Disabled by default since most
	// deployments sit behind a load balancer that masks node addresses.
	Sniff bool

	// HealthcheckTimeout bounds the client's background node healthcheck.
	// Default: 5s.
	HealthcheckTimeout time.Duration
}

// Backend is a [searchbackend.Backend] implementation backed by a pooled
// elastic.Client. A single Backend is safe for concurrent use; the
// underlying client manages its own HTTP connection pool.
type Backend struct {
	client *elastic.Client
	log    zerolog.Logger
}

// New dials the cluster described by cfg and returns a ready-to-use Backend.
// The returned client retains its own connection pool and healthcheck
// goroutine for its lifetime; callers should construct one Backend per
// process and reuse it.
func New(cfg Config, log zerolog.Logger) (*Backend, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("es: at least one URL is required")
	}
	hcTimeout := cfg.HealthcheckTimeout
	if hcTimeout <= 0 {
		hcTimeout = 5 * time.Second
	}

	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(cfg.URLs...),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheckTimeoutStartup(hcTimeout),
		elastic.SetHealthcheckTimeout(hcTimeout),
		elastic.SetErrorLog(stdErrLog{log}),
	}
	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, searchbackend.NewError(searchbackend.KindTransport, "dial", err)
	}
	return &Backend{client: client, log: log}, nil
}

// stdErrLog adapts zerolog.Logger to elastic.Logger.
type stdErrLog struct{ log zerolog.Logger }

func (l stdErrLog) Printf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func (b *Backend) Ping(ctx context.Context) error {
	conns := b.client.Connections()
	if len(conns) == 0 {
		return searchbackend.NewError(searchbackend.KindTransport, "ping", fmt.Errorf("no healthy connections"))
	}
	if _, _, err := b.client.Ping(conns[0].URL).Do(ctx); err != nil {
		return searchbackend.NewError(classify(err), "ping", err)
	}
	return nil
}

func (b *Backend) EnsureIndex(ctx context.Context, name string, mapping, settings map[string]any, forceRecreate bool) error {
	exists, err := b.client.IndexExists(name).Do(ctx)
	if err != nil {
		return searchbackend.NewError(classify(err), "ensure_index.exists", err)
	}

	if exists {
		if !forceRecreate {
			current, err := b.client.GetMapping().Index(name).Do(ctx)
			if err != nil {
				return searchbackend.NewError(classify(err), "ensure_index.get_mapping", err)
			}
			if !mappingCompatible(current, name, mapping) {
				return searchbackend.NewError(searchbackend.KindSchemaConflict, "ensure_index",
					fmt.Errorf("index %q exists with an incompatible mapping", name))
			}
			return nil
		}
		if _, err := b.client.DeleteIndex(name).Do(ctx); err != nil {
			return searchbackend.NewError(classify(err), "ensure_index.delete", err)
		}
	}

	body := map[string]any{"settings": settings, "mappings": mapping}
	if _, err := b.client.CreateIndex(name).BodyJson(body).Do(ctx); err != nil {
		return searchbackend.NewError(classify(err), "ensure_index.create", err)
	}
	return nil
}

// mappingCompatible is a shallow check: it only verifies that every top-level
// field of the authored mapping is present in the current one (extra fields
// are accepted), since olivere's GetMapping response and our authored mapping
// use different envelope shapes and a byte-for-byte compare is brittle.
func mappingCompatible(current map[string]*elastic.IndicesGetMappingResponse, name string, want map[string]any) bool {
	resp, ok := current[name]
	if !ok || resp == nil {
		return false
	}
	wantProps, ok := want["properties"].(map[string]any)
	if !ok {
		return true
	}
	gotRaw, ok := resp.Mappings["properties"]
	if !ok {
		return false
	}
	gotBytes, err := json.Marshal(gotRaw)
	if err != nil {
		return false
	}
	var got map[string]any
	if err := json.Unmarshal(gotBytes, &got); err != nil {
		return false
	}
	for field := range wantProps {
		if _, ok := got[field]; !ok {
			return false
		}
	}
	return true
}

func (b *Backend) BulkWrite(ctx context.Context, index string, docs []searchbackend.Doc) (searchbackend.BulkResult, error) {
	if len(docs) == 0 {
		return searchbackend.BulkResult{}, nil
	}

	svc := b.client.Bulk().Index(index)
	for _, d := range docs {
		svc = svc.Add(elastic.NewBulkIndexRequest().Id(d.ID).Doc(d.Source))
	}

	resp, err := svc.Do(ctx)
	if err != nil {
		return searchbackend.BulkResult{}, searchbackend.NewError(classify(err), "bulk_write", err)
	}

	result := searchbackend.BulkResult{}
	for _, item := range resp.Items {
		for _, bulkResponseItem := range item {
			if bulkResponseItem.Error != nil {
				result.Failed++
				result.Errors = append(result.Errors, searchbackend.BulkItemError{
					ID:      bulkResponseItem.Id,
					Message: bulkResponseItem.Error.Reason,
				})
				continue
			}
			result.Indexed++
		}
	}
	return result, nil
}

func (b *Backend) Search(ctx context.Context, indices []string, queryDoc map[string]any) (searchbackend.SearchResponse, error) {
	raw, err := json.Marshal(queryDoc)
	if err != nil {
		return searchbackend.SearchResponse{}, searchbackend.NewError(searchbackend.KindValidation, "search.marshal", err)
	}

	resp, err := b.client.Search(indices...).Source(json.RawMessage(raw)).Do(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return searchbackend.SearchResponse{}, searchbackend.NewError(searchbackend.KindCancelled, "search", ctx.Err())
		}
		return searchbackend.SearchResponse{}, searchbackend.NewError(classify(err), "search", err)
	}

	out := searchbackend.SearchResponse{
		Total:        resp.TotalHits(),
		Aggregations: map[string]json.RawMessage{},
	}
	for _, hit := range resp.Hits.Hits {
		out.Hits = append(out.Hits, searchbackend.Hit{
			Index:  hit.Index,
			ID:     hit.Id,
			Score:  scoreOf(hit.Score),
			Source: hit.Source,
		})
	}
	for name, agg := range resp.Aggregations {
		out.Aggregations[name] = agg
	}
	return out, nil
}

func scoreOf(s *float64) float64 {
	if s == nil {
		return 0
	}
	return *s
}

func (b *Backend) DeleteIndex(ctx context.Context, name string) error {
	exists, err := b.client.IndexExists(name).Do(ctx)
	if err != nil {
		return searchbackend.NewError(classify(err), "delete_index.exists", err)
	}
	if !exists {
		return nil
	}
	if _, err := b.client.DeleteIndex(name).Do(ctx); err != nil {
		return searchbackend.NewError(classify(err), "delete_index", err)
	}
	return nil
}

func (b *Backend) Refresh(ctx context.Context, index string) error {
	if _, err := b.client.Refresh(index).Do(ctx); err != nil {
		return searchbackend.NewError(classify(err), "refresh", err)
	}
	return nil
}

// classify maps an olivere/elastic error onto the closed [searchbackend.ErrKind]
// taxonomy by inspecting the HTTP status code it carries, when present.
func classify(err error) searchbackend.ErrKind {
	if elastic.IsNotFound(err) {
		return searchbackend.KindNotFound
	}
	if e, ok := err.(*elastic.Error); ok {
		switch e.Status {
		case http.StatusTooManyRequests:
			return searchbackend.KindProviderQuota
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return searchbackend.KindValidation
		case http.StatusConflict:
			return searchbackend.KindSchemaConflict
		}
	}
	return searchbackend.KindTransport
}
