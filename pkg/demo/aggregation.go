package demo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

// AggregationOnly implements [Demo] for a no-hits terms/stats/histogram
// aggregation query.
type AggregationOnly struct {
	Index   string
	Filters querybuilder.SearchFilters
	Spec    querybuilder.AggregationSpec
}

func (d *AggregationOnly) ID() string       { return "price-aggregations" }
func (d *AggregationOnly) Name() string     { return "Price distribution aggregations" }
func (d *AggregationOnly) Category() string { return "analytics" }

func (d *AggregationOnly) BuildQuery(_ context.Context, _ int) (QueryDoc, error) {
	return querybuilder.AggregationOnly(d.Filters, d.Spec), nil
}

func (d *AggregationOnly) Execute(ctx context.Context, backend searchbackend.Backend, query QueryDoc) (RawHits, error) {
	doc, ok := query.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("price-aggregations: unexpected query type %T", query)
	}
	return backend.Search(ctx, []string{d.Index}, doc)
}

func (d *AggregationOnly) ToResult(hits RawHits) (AggregationResult, error) {
	resp, ok := hits.(searchbackend.SearchResponse)
	if !ok {
		return AggregationResult{}, fmt.Errorf("price-aggregations: unexpected hits type %T", hits)
	}

	result := AggregationResult{
		Buckets: map[string][]AggregationBucket{},
		Stats:   map[string]AggregationStats{},
	}
	for name, raw := range resp.Aggregations {
		var stats struct {
			Count int64   `json:"count"`
			Min   float64 `json:"min"`
			Max   float64 `json:"max"`
			Avg   float64 `json:"avg"`
			Sum   float64 `json:"sum"`
		}
		if err := json.Unmarshal(raw, &stats); err == nil && stats.Count > 0 {
			result.Stats[name] = AggregationStats(stats)
			continue
		}

		var terms struct {
			Buckets []struct {
				Key      json.RawMessage `json:"key"`
				DocCount int64           `json:"doc_count"`
			} `json:"buckets"`
		}
		if err := json.Unmarshal(raw, &terms); err == nil && len(terms.Buckets) > 0 {
			for _, b := range terms.Buckets {
				key := string(b.Key)
				var s string
				if json.Unmarshal(b.Key, &s) == nil {
					key = s
				}
				result.Buckets[name] = append(result.Buckets[name], AggregationBucket{Key: key, Count: b.DocCount})
			}
		}
	}
	return result, nil
}
