// Package executor runs ordered SQL statement batches against the warehouse.
//
// The executor opens one connection per batch, retries each statement a
// bounded number of times with a fixed delay, and skips statements whose
// retries are exhausted rather than aborting the batch. Callers must treat a
// batch as potentially partially applied: skipping a CREATE and then failing
// the dependent INSERTs is possible by design, and no rollback is attempted.
//
// All four pipeline phases (drop, create, copy, transform) and the read-only
// analytics phase use this same executor; only the batch contents differ.
package executor
