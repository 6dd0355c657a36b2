// Package provision manages the warehouse's cloud resources.
//
// The Provisioner brings everything up in a fixed order (IAM access role,
// ingress rule group, cluster subnet group, then the cluster) and fails fast:
// the first error aborts the sequence, because the creation calls are not
// idempotent. The Decommissioner tears everything down best-effort: each step
// runs exactly once and failures are collected into a Summary rather than
// aborting the rest of the cleanup.
package provision
