package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/config"
	"github.com/stagehandhq/stagehand/pkg/consts"
	"github.com/stagehandhq/stagehand/pkg/executor"
	"github.com/stagehandhq/stagehand/pkg/provision"
	"github.com/stagehandhq/stagehand/pkg/session"
	"github.com/stagehandhq/stagehand/pkg/warehouse"
)

// Test seams. Commands reach AWS and the warehouse only through these, so
// tests can substitute fakes without touching the network.
var (
	newClients = provision.NewClients

	newProvisioner = provision.NewProvisioner

	connector warehouse.Connector = warehouse.Connect
)

// loadSession reads the persisted provisioning output. A missing session file
// is a user-facing error: the warehouse has not been provisioned (or was
// already torn down).
func loadSession(cfg *config.Config) (*session.State, error) {
	state, err := session.Load(cfg.SessionFile)
	if err != nil {
		if session.IsNotExist(err) {
			return nil, errors.Errorf("no session found at %s (run `stagehand provision` first)", cfg.SessionFile)
		}

		return nil, err
	}

	return state, nil
}

// probeWarehouse verifies the warehouse accepts connections before any batch
// work is attempted.
func probeWarehouse(ctx context.Context, cfg *config.Config, state *session.State) error {
	prober := warehouse.NewProber(warehouse.ProberConfig{
		Connector: connector,
		Policy:    cfg.ConnectPolicy(),
		Timeout:   consts.DefaultProbeTimeout,
	})

	return prober.Probe(ctx, state.Warehouse)
}

// runBatches executes the batches in order, printing a per-batch summary.
// Skipped statements are reported but do not fail the run; a connection-level
// failure does.
func runBatches(ctx context.Context, w io.Writer, cfg *config.Config, state *session.State, batches ...executor.Batch) error {
	exec := executor.New(executor.Config{
		Connector: connector,
		Policy:    cfg.StatementPolicy(),
	})

	for _, batch := range batches {
		result, err := exec.Execute(ctx, state.Warehouse, batch)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s: %d applied, %d skipped\n", result.Label, result.AppliedCount(), result.SkippedCount())
		for _, stmt := range result.Skipped() {
			fmt.Fprintf(w, "  skipped statement %d after %d attempts: %v\n", stmt.Index+1, stmt.Attempts, stmt.Error)
		}
	}

	return nil
}
