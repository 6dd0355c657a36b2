// Package queries holds the SQL surface of the pipeline as opaque statement
// batches.
//
// Two wide staging tables receive the raw S3 loads; a star schema of one fact
// table (songplays) and four dimensions (users, songs, artists, time) is
// populated from them by fixed transform statements. The executor treats
// every statement as an opaque string; ordering within and across batches is
// this package's contract with its callers.
package queries
