// Package session persists the provisioning output consumed by every later
// phase.
//
// Provision writes the record once; pipeline and analytics read it; the
// decommission command deletes it. The record is a small YAML document of
// three fields (warehouse connection descriptor, role ARN, region) so it can
// be inspected and, if needed, written by hand.
package session
