package demo

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/searchbackend"
)

func TestAggregationOnlyParsesStatsAndTerms(t *testing.T) {
	backend := &fakeBackend{
		searchHandler: func(ctx context.Context, indices []string, query map[string]any) (searchbackend.SearchResponse, error) {
			if size, ok := query["size"].(int); !ok || size != 0 {
				t.Fatalf("size = %v, want 0", query["size"])
			}
			return searchbackend.SearchResponse{
				Aggregations: map[string]json.RawMessage{
					"price_stats":         json.RawMessage(`{"count":3,"min":100000,"max":500000,"avg":300000,"sum":900000}`),
					"property_type_terms": json.RawMessage(`{"buckets":[{"key":"condo","doc_count":2},{"key":"house","doc_count":1}]}`),
				},
			}, nil
		},
	}

	d := &AggregationOnly{
		Index: "properties",
		Spec:  querybuilder.AggregationSpec{StatsField: "price", TermsField: "property_type"},
	}
	result, err := Run[AggregationResult](context.Background(), backend, d, 10)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	stats, ok := result.Stats["price_stats"]
	if !ok || stats.Count != 3 || stats.Avg != 300000 {
		t.Fatalf("Stats[price_stats] = %+v", stats)
	}
	buckets, ok := result.Buckets["property_type_terms"]
	if !ok || len(buckets) != 2 || buckets[0].Key != "condo" {
		t.Fatalf("Buckets[property_type_terms] = %+v", buckets)
	}
}
