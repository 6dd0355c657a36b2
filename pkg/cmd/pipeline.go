package cmd

import (
	"context"
	"fmt"

	"github.com/stagehandhq/stagehand/pkg/config"
	"github.com/stagehandhq/stagehand/pkg/queries"
	"github.com/urfave/cli/v3"
)

// pipelineCmd creates a CLI command for running the full ETL pipeline against
// a provisioned warehouse.
//
// The pipeline runs four batches in a fixed order: DROP (reset any prior
// state), CREATE (staging and star schema tables), COPY (bulk-load the S3
// sources into staging), INSERT (transform staging rows into the star
// schema). Ordering between batches matters; ordering within a batch is
// whatever the batch defines.
//
// The warehouse is probed before the first batch so an unreachable cluster
// fails fast with a clear error instead of partway through.
//
// Example usage:
//
//	stagehand pipeline
func pipelineCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "pipeline",
		Aliases: []string{"etl"},
		Usage:   "Load source data from S3 and transform it into the star schema",
		Before:  requireConfig(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			state, err := loadSession(cfg)
			if err != nil {
				return err
			}

			if err := probeWarehouse(ctx, cfg, state); err != nil {
				return err
			}

			err = runBatches(ctx, cmd.Writer, cfg, state,
				queries.DropTables(),
				queries.CreateTables(),
				queries.CopyStaging(queries.CopySources{
					SongData:    cfg.Storage.SongData,
					LogData:     cfg.Storage.LogData,
					LogJSONPath: cfg.Storage.LogJSONPath,
					RoleARN:     state.RoleARN,
					Region:      state.Region,
				}),
				queries.InsertTransforms(),
			)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Writer, "Pipeline complete")

			return nil
		},
	}
}
