package cmd

import (
	"context"
	"fmt"

	"github.com/stagehandhq/stagehand/pkg/config"
	"github.com/stagehandhq/stagehand/pkg/queries"
	"github.com/urfave/cli/v3"
)

// analyticsCmd creates a CLI command for running the sample analytics queries
// against the populated star schema. Result rows are emitted through the
// structured log, the same way the executor reports every query result.
//
// Example usage:
//
//	stagehand analytics
func analyticsCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "analytics",
		Aliases: []string{"sample"},
		Usage:   "Run the sample analytics queries against the star schema",
		Before:  requireConfig(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			state, err := loadSession(cfg)
			if err != nil {
				return err
			}

			if err := probeWarehouse(ctx, cfg, state); err != nil {
				return err
			}

			if err := runBatches(ctx, cmd.Writer, cfg, state, queries.SampleAnalytics()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.Writer, "Analytics complete")

			return nil
		},
	}
}
