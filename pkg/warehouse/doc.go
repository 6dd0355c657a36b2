// Package warehouse provides the SQL boundary to the managed warehouse
// cluster.
//
// The package exposes a narrow Conn interface backed by pgx (Redshift speaks
// the postgres wire protocol) and a Prober that retries connection
// establishment with a fixed delay before any statements are executed.
//
// Connection establishment is the only place connection-level retry happens;
// the statement executor reports a connect failure once and abandons its
// batch.
package warehouse
