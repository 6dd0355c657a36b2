package cmd

import (
	"context"
	"fmt"

	"github.com/stagehandhq/stagehand/pkg/config"
	"github.com/stagehandhq/stagehand/pkg/provision"
	"github.com/stagehandhq/stagehand/pkg/session"
	"github.com/urfave/cli/v3"
)

// decommissionCmd creates a CLI command for tearing the warehouse and its
// supporting resources back down.
//
// Teardown is best-effort: every step runs exactly once regardless of earlier
// failures, and the per-step outcomes are printed at the end. The command
// only exits non-zero when a step failed, so a rerun can pick up whatever was
// left behind.
//
// The session file is removed afterwards; its absence is reported but is not
// an error, since decommission must work even when provisioning never
// completed.
//
// Example usage:
//
//	stagehand decommission
func decommissionCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "decommission",
		Aliases: []string{"teardown"},
		Usage:   "Delete the warehouse cluster and its supporting AWS resources",
		Before:  requireConfig(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			clients, err := newClients(ctx, cfg.AWS.Region)
			if err != nil {
				return err
			}

			d := provision.NewDecommissioner(provision.DecommissionerConfig{
				Clients: clients,
				Project: cfg,
			})

			summary := d.Run(ctx)

			for _, step := range summary.Steps {
				if step.OK() {
					fmt.Fprintf(cmd.Writer, "✓ %s\n", step.Name)
				} else {
					fmt.Fprintf(cmd.Writer, "✗ %s: %v\n", step.Name, step.Err)
				}
			}

			if !session.Exists(cfg.SessionFile) {
				fmt.Fprintf(cmd.Writer, "No session file at %s\n", cfg.SessionFile)
			} else if err := session.Remove(cfg.SessionFile); err != nil {
				return err
			} else {
				fmt.Fprintf(cmd.Writer, "Removed session file %s\n", cfg.SessionFile)
			}

			if failed := summary.Failed(); len(failed) > 0 {
				return cli.Exit(fmt.Sprintf("%d teardown step(s) failed", len(failed)), 1)
			}

			fmt.Fprintln(cmd.Writer, "Decommission complete")

			return nil
		},
	}
}
