package executor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/retry"
	"github.com/stagehandhq/stagehand/pkg/warehouse"
)

type (
	// Batch is an ordered sequence of opaque SQL statements sharing one label
	// and one connection lifetime. The label is used only for observability.
	//
	// The executor enforces no dependency graph between statements or between
	// batches; callers must sequence batches correctly (CREATE before COPY
	// before INSERT).
	Batch struct {
		// Label tags the batch in log output (e.g. "DROP", "COPY")
		Label string

		// Statements are executed in order, each committed independently
		Statements []string
	}

	// Executor runs batches against the warehouse with per-statement retry.
	//
	// One connection is opened per batch, not per statement. Each statement is
	// retried up to the policy's attempt count; exhausting the retries for one
	// statement skips that statement only and the batch continues. A batch is
	// therefore potentially partially applied, and a skipped statement can
	// leave later statements failing against missing tables. That permissive
	// policy is deliberate; nothing here rolls back or reconciles.
	//
	// Rows returned by a statement are logged, not collected. The executor is
	// fire-and-forget; a caller needing query results wants a separate read
	// path, not this type.
	Executor struct {
		connect warehouse.Connector
		policy  retry.Policy
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// Connector opens the per-batch connection; defaults to warehouse.Connect
		Connector warehouse.Connector

		// Policy bounds per-statement attempts and the wait between them
		Policy retry.Policy
	}

	// StatementResult records the outcome of a single statement for
	// observability and testing.
	StatementResult struct {
		// Index is the statement's position within the batch
		Index int

		// SQL is the statement text as submitted
		SQL string

		// Status indicates whether the statement was applied or skipped
		Status StatementStatus

		// Attempts is how many executions were tried
		Attempts int

		// Error holds the last execution error for skipped statements
		Error error
	}

	// BatchResult summarizes a batch run.
	BatchResult struct {
		// Label is the batch label the run was tagged with
		Label string

		// Statements holds one result per statement, in batch order
		Statements []*StatementResult
	}

	// StatementStatus represents the outcome of executing a single statement.
	StatementStatus string
)

const (
	// StatusApplied indicates the statement executed and committed
	StatusApplied StatementStatus = "applied"

	// StatusSkipped indicates every attempt failed and the batch moved on
	StatusSkipped StatementStatus = "skipped"
)

// New creates a statement executor with the provided configuration.
//
// Example:
//
//	exec := executor.New(executor.Config{
//		Policy: retry.Policy{MaxAttempts: 3, Delay: 5 * time.Second},
//	})
//
//	result, err := exec.Execute(ctx, cfg, queries.CreateTables())
//	if err != nil {
//		return errors.Wrap(err, "create batch abandoned")
//	}
//
//	for _, stmt := range result.Skipped() {
//		slog.Warn("statement skipped", "sql", stmt.SQL, "error", stmt.Error)
//	}
func New(config Config) *Executor {
	e := &Executor{
		connect: config.Connector,
		policy:  config.Policy,
	}
	if e.connect == nil {
		e.connect = warehouse.Connect
	}
	return e
}

// Execute runs every statement in the batch, in order, over one connection.
//
// A connection-level failure is reported once and abandons the whole batch;
// there is no connection retry here (that is the prober's job, before any
// batch runs). Statement failures are retried per the policy and then
// skipped. The connection is closed on every exit path.
func (e *Executor) Execute(ctx context.Context, cfg warehouse.Config, batch Batch) (*BatchResult, error) {
	conn, err := e.connect(ctx, cfg)
	if err != nil {
		slog.Error("Could not connect to warehouse", "batch", batch.Label, "error", err)
		return nil, errors.Wrapf(err, "failed to connect for %s batch", batch.Label)
	}
	defer func() { _ = conn.Close(ctx) }()

	slog.Info("Connected to warehouse", "batch", batch.Label, "statements", len(batch.Statements))

	result := &BatchResult{
		Label:      batch.Label,
		Statements: make([]*StatementResult, 0, len(batch.Statements)),
	}

	for i, stmt := range batch.Statements {
		result.Statements = append(result.Statements, e.executeStatement(ctx, conn, batch.Label, i, stmt))
	}

	slog.Info("Batch complete",
		"batch", batch.Label,
		"applied", result.AppliedCount(),
		"skipped", result.SkippedCount(),
	)

	return result, nil
}

// executeStatement retries one statement until it commits or the policy is
// exhausted. Exhaustion skips the statement; it never aborts the batch.
func (e *Executor) executeStatement(ctx context.Context, conn warehouse.Conn, label string, index int, stmt string) *StatementResult {
	attempts := e.policy.Attempts()

	result := &StatementResult{
		Index:  index,
		SQL:    stmt,
		Status: StatusSkipped,
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		result.Attempts = attempt

		slog.Info("Running statement",
			"batch", label,
			"statement", index+1,
			"attempt", attempt,
			"max_attempts", attempts,
			"sql", strings.TrimSpace(stmt),
		)

		err := e.runOnce(ctx, conn, label, stmt)
		if err == nil {
			result.Status = StatusApplied
			result.Error = nil
			slog.Info("Statement executed successfully", "batch", label, "statement", index+1)
			return result
		}

		result.Error = err
		slog.Warn("Error executing statement",
			"batch", label,
			"statement", index+1,
			"attempt", attempt,
			"error", err,
		)

		if attempt < attempts {
			slog.Info("Retrying statement", "delay", e.policy.Delay)
			if waitErr := e.policy.Wait(ctx); waitErr != nil {
				result.Error = waitErr
				return result
			}
		}
	}

	slog.Error("All attempts failed, moving to next statement",
		"batch", label,
		"statement", index+1,
		"error", result.Error,
	)

	return result
}

// runOnce submits the statement and drains any returned rows. A statement
// with no result set and one with rows are both success once committed;
// commits happen per statement (autocommit), so a later failure cannot undo
// this one.
func (e *Executor) runOnce(ctx context.Context, conn warehouse.Conn, label, stmt string) error {
	rows, err := conn.Query(ctx, stmt)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return err
		}
		slog.Info("Query result", "batch", label, "row", values)
	}

	return rows.Err()
}

// AppliedCount returns how many statements in the batch committed.
func (r *BatchResult) AppliedCount() int {
	return r.count(StatusApplied)
}

// SkippedCount returns how many statements exhausted their retries.
func (r *BatchResult) SkippedCount() int {
	return r.count(StatusSkipped)
}

// Skipped returns the statements that exhausted their retries, in batch order.
func (r *BatchResult) Skipped() []*StatementResult {
	var skipped []*StatementResult
	for _, stmt := range r.Statements {
		if stmt.Status == StatusSkipped {
			skipped = append(skipped, stmt)
		}
	}
	return skipped
}

func (r *BatchResult) count(status StatementStatus) int {
	n := 0
	for _, stmt := range r.Statements {
		if stmt.Status == status {
			n++
		}
	}
	return n
}
