package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/config"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run creates and executes the main stagehand CLI application with the given
// version and command-line arguments. This function serves as the main entry
// point for all CLI operations.
//
// The application expects a stagehand.yaml in the working directory; commands
// that need it gate on its presence via requireConfig, so help and version
// output work without one.
//
// Example usage:
//
//	# Bring the warehouse up
//	stagehand provision
//
//	# Load and transform the source data
//	stagehand pipeline
//
//	# Run the sample analytics queries
//	stagehand analytics
//
//	# Tear everything back down
//	stagehand decommission
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "stagehand",
		Usage: "A tool for provisioning a cloud warehouse and running its ETL pipeline",
		Description: `stagehand is a CLI tool that provisions a managed warehouse cluster with
its supporting AWS resources, bulk-loads source data from S3 into staging
tables, transforms it into a star schema, and tears everything back down
when you're done.`,
		Version:  p.Version.Version,
		Commands: p.Commands,
	}

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func requireConfig(cfg *config.Config) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cfg == nil {
			return ctx, errors.New("stagehand.yaml not found")
		}

		return ctx, nil
	}
}
