package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danverstone/realsearch/pkg/demo"
	"github.com/danverstone/realsearch/pkg/locintent"
	"github.com/danverstone/realsearch/pkg/querybuilder"
	"github.com/danverstone/realsearch/pkg/retrieval"
)

// defaultDemoSize is used by `demo run` when --size is not given.
const defaultDemoSize = 10

// cannedQueries holds the fixed example query text each demo runs against
// the catalog — the CLI surface takes no free-text query flag, only a demo
// id and an optional result size.
var cannedQueries = struct {
	lexical       string
	hybrid        string
	comparison    string
	mixedEntity   string
	semanticBatch []string
}{
	lexical:     "modern 3 bedroom house with updated kitchen",
	hybrid:      "walkable family neighborhood near good schools in Austin TX",
	comparison:  "quiet home near parks and trails",
	mixedEntity: "Zilker neighborhood Austin history",
	semanticBatch: []string{
		"cozy bungalow near downtown",
		"spacious home with a large backyard for kids",
		"luxury condo with skyline views",
		"affordable starter home for first-time buyers",
	},
}

func newDemoCmd(configPath, metricsAddr *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "List and run retrieval demos",
	}
	cmd.AddCommand(newDemoListCmd(configPath))
	cmd.AddCommand(newDemoRunCmd(configPath, metricsAddr))
	return cmd
}

func newDemoListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			reg, err := buildDemoRegistry(a)
			if err != nil {
				return newCLIError(exitUsageError, err)
			}
			for i, e := range reg.List() {
				fmt.Printf("%2d. %-22s %-40s [%s]\n", i+1, e.ID, e.Name, e.Category)
			}
			return nil
		},
	}
}

func newDemoRunCmd(configPath, metricsAddr *string) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a demo and render its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			stop := a.serveHealth(*metricsAddr)
			defer func() { _ = stop(context.Background()) }()
			reg, err := buildDemoRegistry(a)
			if err != nil {
				return newCLIError(exitUsageError, err)
			}
			if err := reg.Run(cmd.Context(), args[0], a.backend, os.Stdout, size); err != nil {
				return newCLIError(exitPartialFailure, err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", defaultDemoSize, "number of hits to return")
	return cmd
}

// buildDemoRegistry wires an embedding provider, location extractor, and
// retrieval engine, then registers every demo query family against them.
func buildDemoRegistry(a *app) (*demo.Registry, error) {
	embedder, err := newEmbeddingRegistry().Create(a.cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("create embedding provider: %w", err)
	}

	extractor := locintent.NewExtractor(defaultGazetteer())
	engine := retrieval.NewEngine()
	hybridCfg := querybuilder.HybridConfig{
		RankConstant:     a.cfg.Hybrid.RankConstant,
		RankWindowSize:   a.cfg.Hybrid.RankWindowSize,
		KNNK:             a.cfg.Hybrid.KNNK,
		KNNNumCandidates: a.cfg.Hybrid.KNNNumCandidates,
	}

	reg := demo.NewRegistry()

	demo.Register[demo.PropertyResult](reg, &demo.LexicalSearch{
		Index: a.cfg.Indices.Property,
		Query: cannedQueries.lexical,
	})

	demo.Register[demo.PropertyResult](reg, &demo.HybridSearch{
		Index:     a.cfg.Indices.Property,
		RawQuery:  cannedQueries.hybrid,
		Extractor: extractor,
		Embedder:  embedder,
		Engine:    engine,
		Hybrid:    hybridCfg,
	})

	demo.Register[demo.AggregationResult](reg, &demo.AggregationOnly{
		Index: a.cfg.Indices.Property,
		Spec: querybuilder.AggregationSpec{
			StatsField: "price",
			TermsField: "property_type",
		},
	})

	demo.Register[demo.ComparisonResult](reg, &demo.LexicalVsSemantic{
		Index:    a.cfg.Indices.Property,
		Query:    cannedQueries.comparison,
		Embedder: embedder,
	})

	demo.Register[demo.MixedEntityResult](reg, &demo.MixedEntitySearch{
		PropertyIndex:     a.cfg.Indices.Property,
		NeighborhoodIndex: a.cfg.Indices.Neighborhood,
		WikipediaIndex:    a.cfg.Indices.Wikipedia,
		Query:             cannedQueries.mixedEntity,
	})

	demo.Register[demo.SemanticBatchResult](reg, &demo.SemanticBatch{
		Index:     a.cfg.Indices.Property,
		Queries:   cannedQueries.semanticBatch,
		Extractor: extractor,
		Embedder:  embedder,
		Engine:    engine,
		Hybrid:    hybridCfg,
	})

	return reg, nil
}

// defaultGazetteer seeds location-intent extraction with a small set of
// Texas metros; a production deployment would build this from the
// neighborhood index instead of a static list.
func defaultGazetteer() *locintent.Gazetteer {
	return locintent.NewGazetteer(
		nil,
		[]locintent.CityDef{
			{Name: "Austin", State: "TX"},
			{Name: "Houston", State: "TX"},
			{Name: "Dallas", State: "TX"},
			{Name: "San Antonio", State: "TX"},
		},
		[]locintent.StateDef{
			{Name: "Texas", Code: "TX"},
		},
	)
}
