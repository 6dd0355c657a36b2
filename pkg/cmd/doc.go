// Package cmd provides the CLI commands for the stagehand tool.
//
// This package implements the command-line interface for stagehand, covering
// the full lifecycle of the warehouse: provisioning the cluster and its AWS
// resources, running the ETL pipeline that builds the star schema, sampling
// the loaded data with analytics queries, and decommissioning everything.
//
// # Available Commands
//
//   - provision (up): create the access role, security group, subnet group,
//     and cluster; persist the session file
//   - pipeline (etl): load S3 source data into staging and transform it into
//     the star schema
//   - analytics (sample): run the sample analytics queries
//   - decommission (teardown): delete every provisioned resource best-effort
//     and remove the session file
//
// # Command Structure
//
// Each command is implemented as a separate function that returns a
// *cli.Command, following the urfave/cli/v3 pattern. Commands are provided
// into an fx command group and routed by Run.
//
// Commands that operate on the project gate on stagehand.yaml being present;
// pipeline and analytics additionally require the session file written by
// provision.
package cmd
