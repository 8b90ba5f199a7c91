package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danverstone/realsearch/pkg/catalog"
	"github.com/danverstone/realsearch/pkg/relationships"
)

func newIndicesCmd(configPath, metricsAddr *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indices",
		Short: "Manage search indices",
	}
	cmd.AddCommand(newIndicesSetupCmd(configPath, metricsAddr))
	return cmd
}

func newIndicesSetupCmd(configPath, metricsAddr *string) *cobra.Command {
	var clear bool
	var rebuildRelationships bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the primary indices, optionally rebuilding the relationships index",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			stop := a.serveHealth(*metricsAddr)
			defer func() { _ = stop(context.Background()) }()
			return runIndicesSetup(cmd.Context(), a, clear, rebuildRelationships)
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "drop and recreate indices that already exist")
	cmd.Flags().BoolVar(&rebuildRelationships, "rebuild-relationships", false, "scan properties and rebuild the property_relationships index")
	return cmd
}

func runIndicesSetup(ctx context.Context, a *app, clear, rebuildRelationships bool) error {
	vec := catalog.DefaultVectorConfig(a.cfg.Embedding.Dimension)

	primary := []struct {
		kind  catalog.EntityKind
		index string
	}{
		{catalog.EntityProperty, a.cfg.Indices.Property},
		{catalog.EntityNeighborhood, a.cfg.Indices.Neighborhood},
		{catalog.EntityWikipedia, a.cfg.Indices.Wikipedia},
	}

	for _, p := range primary {
		spec, err := catalog.SpecFor(p.kind, p.index, vec)
		if err != nil {
			return newCLIError(exitUsageError, fmt.Errorf("build spec for %q: %w", p.index, err))
		}
		if err := a.backend.EnsureIndex(ctx, p.index, spec.Mapping, spec.Settings, clear); err != nil {
			return newCLIError(exitPartialFailure, fmt.Errorf("ensure index %q: %w", p.index, err))
		}
		log.Info().Str("index", p.index).Msg("index ready")
	}

	if !rebuildRelationships {
		return nil
	}

	builder := relationships.New(a.backend, relationships.Config{
		PropertyIndex:          a.cfg.Indices.Property,
		NeighborhoodIndex:      a.cfg.Indices.Neighborhood,
		WikipediaIndex:         a.cfg.Indices.Wikipedia,
		RelationshipsIndex:     a.cfg.Indices.PropertyRelationships,
		BatchSize:              a.cfg.Relationships.BatchSize,
		MaxArticlesPerProperty: a.cfg.Relationships.MaxArticlesPerProperty,
		RefreshOnComplete:      a.cfg.Relationships.RefreshOnComplete,
	})

	stats, err := builder.Rebuild(ctx, clear)
	if err != nil {
		return newCLIError(exitPartialFailure, fmt.Errorf("rebuild relationships: %w", err))
	}
	log.Info().
		Int("scanned", stats.Scanned).
		Int("written", stats.Written).
		Int("skipped_no_neighborhood", stats.SkippedNoNeighborhood).
		Int("failed", stats.Failed).
		Msg("relationships rebuilt")

	if stats.Failed > 0 {
		return newCLIError(exitPartialFailure, fmt.Errorf("%d properties failed during relationship build", stats.Failed))
	}
	return nil
}
