package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/config"
	"github.com/stagehandhq/stagehand/pkg/provision"
	"github.com/stagehandhq/stagehand/pkg/session"
	"github.com/urfave/cli/v3"
)

// provisionCmd creates a CLI command for bringing the warehouse up.
//
// The command runs the full creation sequence (IAM access role, ingress rule
// group, cluster subnet group, cluster launch), blocks until the cluster is
// available, and persists the resulting connection details to the session
// file for the pipeline and analytics commands to consume.
//
// Provisioning fails fast: the first error aborts the sequence and nothing
// already created is rolled back. Rerunning after a partial failure requires
// a decommission first.
//
// Example usage:
//
//	stagehand provision
func provisionCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "provision",
		Aliases: []string{"up"},
		Usage:   "Create the warehouse cluster and its supporting AWS resources",
		Before:  requireConfig(cfg),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			clients, err := newClients(ctx, cfg.AWS.Region)
			if err != nil {
				return err
			}

			p := newProvisioner(provision.ProvisionerConfig{
				Clients:     clients,
				Project:     cfg,
				SettleDelay: cfg.SettleDelay(),
			})

			state, err := p.Provision(ctx)
			if err != nil {
				return err
			}

			if err := session.Save(cfg.SessionFile, state); err != nil {
				return errors.Wrap(err, "cluster is up but session could not be saved")
			}

			fmt.Fprintf(cmd.Writer, "Warehouse is available at %s:%d\n", state.Warehouse.Endpoint, state.Warehouse.Port)
			fmt.Fprintf(cmd.Writer, "Session saved to %s\n", cfg.SessionFile)

			return nil
		},
	}
}
