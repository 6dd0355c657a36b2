package warehouse

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/consts"
	"github.com/stagehandhq/stagehand/pkg/retry"
)

type (
	// Prober verifies the warehouse is reachable before any batch runs.
	//
	// Attempts are strictly sequential: open a short-timeout connection, close
	// it, report success. On failure the prober waits the fixed policy delay
	// and tries again. Exhausting the policy is fatal for the calling phase;
	// the terminal connection error propagates to the caller.
	Prober struct {
		connect Connector
		policy  retry.Policy
		timeout time.Duration
	}

	// ProberConfig contains configuration options for creating a new Prober.
	ProberConfig struct {
		// Connector opens candidate connections; defaults to warehouse.Connect
		Connector Connector

		// Policy bounds the number of attempts and the wait between them
		Policy retry.Policy

		// Timeout is the per-attempt connection deadline, independent of the
		// policy delay; defaults to consts.DefaultProbeTimeout
		Timeout time.Duration
	}
)

// NewProber creates a connection prober with the provided configuration.
//
// Example:
//
//	prober := warehouse.NewProber(warehouse.ProberConfig{
//		Policy: retry.Policy{MaxAttempts: 10, Delay: 5 * time.Second},
//	})
//
//	if err := prober.Probe(ctx, cfg); err != nil {
//		return errors.Wrap(err, "warehouse unreachable")
//	}
func NewProber(config ProberConfig) *Prober {
	p := &Prober{
		connect: config.Connector,
		policy:  config.Policy,
		timeout: config.Timeout,
	}
	if p.connect == nil {
		p.connect = Connect
	}
	if p.timeout <= 0 {
		p.timeout = consts.DefaultProbeTimeout
	}
	return p
}

// Probe attempts a connection open/close cycle until one succeeds or the
// retry policy is exhausted. The last connection error is returned once all
// attempts fail.
func (p *Prober) Probe(ctx context.Context, cfg Config) error {
	attempts := p.policy.Attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		slog.Info("Probing warehouse connection",
			"endpoint", cfg.Endpoint,
			"attempt", attempt,
			"max_attempts", attempts,
		)

		if err := p.tryConnect(ctx, cfg); err == nil {
			slog.Info("Warehouse connection successful", "attempt", attempt)
			return nil
		} else {
			lastErr = err
		}

		slog.Warn("Connection attempt failed", "attempt", attempt, "error", lastErr)

		if attempt < attempts {
			slog.Info("Waiting before retrying connection", "delay", p.policy.Delay)
			if err := p.policy.Wait(ctx); err != nil {
				return errors.Wrap(err, "connection probe interrupted")
			}
		}
	}

	return errors.Wrapf(lastErr, "warehouse unreachable after %d attempts", attempts)
}

func (p *Prober) tryConnect(ctx context.Context, cfg Config) error {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.connect(probeCtx, cfg)
	if err != nil {
		return err
	}

	return conn.Close(ctx)
}
