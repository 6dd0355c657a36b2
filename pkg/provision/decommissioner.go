package provision

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/config"
)

type (
	// Decommissioner tears the provisioned resources back down in reverse
	// order: cluster, placement group, access role, ingress rule group.
	//
	// Teardown is best-effort. Every step is attempted exactly once whatever
	// happened before it; a resource that was already gone or never existed
	// must not abandon the cleanup of the rest. Run collects an explicit
	// result per step and never returns an error.
	//
	// Identifiers are re-derived from static configuration rather than a
	// stored handle set, so decommission works without a live session state.
	Decommissioner struct {
		clients     *Clients
		project     *config.Config
		clusterWait time.Duration
	}

	// DecommissionerConfig contains configuration options for creating a new
	// Decommissioner.
	DecommissionerConfig struct {
		// Clients are the control-plane clients to tear down through
		Clients *Clients

		// Project is the loaded project configuration
		Project *config.Config

		// ClusterWait caps the block-until-deleted wait; defaults to 30m
		ClusterWait time.Duration
	}

	// StepResult records the outcome of one teardown step.
	StepResult struct {
		// Name identifies the step (e.g. "delete cluster")
		Name string

		// Err is the failure for this step, nil on success
		Err error
	}

	// Summary is the full teardown outcome, one entry per step in execution
	// order.
	Summary struct {
		Steps []StepResult
	}
)

// NewDecommissioner creates a decommissioner with the provided configuration.
func NewDecommissioner(cfg DecommissionerConfig) *Decommissioner {
	d := &Decommissioner{
		clients:     cfg.Clients,
		project:     cfg.Project,
		clusterWait: cfg.ClusterWait,
	}
	if d.clusterWait <= 0 {
		d.clusterWait = defaultClusterWait
	}
	return d
}

// Run executes every teardown step exactly once and returns the collected
// results. It never returns an error: a failed step is recorded, logged as a
// warning, and the sequence continues.
func (d *Decommissioner) Run(ctx context.Context) Summary {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"delete cluster", d.deleteCluster},
		{"delete placement group", d.deletePlacementGroup},
		{"delete access role", d.deleteAccessRole},
		{"delete ingress rules", d.deleteIngressRules},
	}

	summary := Summary{Steps: make([]StepResult, 0, len(steps))}

	for _, step := range steps {
		err := step.fn(ctx)
		summary.Steps = append(summary.Steps, StepResult{Name: step.name, Err: err})

		if err != nil {
			slog.Warn("Teardown step failed, continuing", "step", step.name, "error", err)
		} else {
			slog.Info("Teardown step complete", "step", step.name)
		}
	}

	return summary
}

func (d *Decommissioner) deleteCluster(ctx context.Context) error {
	slog.Info("Deleting warehouse cluster", "identifier", d.project.Cluster.Identifier)

	if _, err := d.clients.Redshift.DeleteCluster(ctx, &redshift.DeleteClusterInput{
		ClusterIdentifier:        aws.String(d.project.Cluster.Identifier),
		SkipFinalClusterSnapshot: aws.Bool(true),
	}); err != nil {
		return errors.Wrapf(err, "failed to delete cluster %s", d.project.Cluster.Identifier)
	}

	slog.Info("Waiting for cluster to be deleted")
	if err := d.clients.Waiter.WaitForDeleted(ctx, d.project.Cluster.Identifier, d.clusterWait); err != nil {
		return errors.Wrapf(err, "cluster %s was not confirmed deleted", d.project.Cluster.Identifier)
	}

	return nil
}

func (d *Decommissioner) deletePlacementGroup(ctx context.Context) error {
	slog.Info("Deleting cluster subnet group", "group", d.project.Network.SubnetGroup)

	if _, err := d.clients.Redshift.DeleteClusterSubnetGroup(ctx, &redshift.DeleteClusterSubnetGroupInput{
		ClusterSubnetGroupName: aws.String(d.project.Network.SubnetGroup),
	}); err != nil {
		return errors.Wrapf(err, "failed to delete subnet group %s", d.project.Network.SubnetGroup)
	}

	return nil
}

func (d *Decommissioner) deleteAccessRole(ctx context.Context) error {
	slog.Info("Detaching policies and deleting IAM role", "role", d.project.IAM.RoleName)

	if _, err := d.clients.IAM.DetachRolePolicy(ctx, &iam.DetachRolePolicyInput{
		RoleName:  aws.String(d.project.IAM.RoleName),
		PolicyArn: aws.String(s3ReadOnlyPolicyARN),
	}); err != nil {
		return errors.Wrapf(err, "failed to detach policy from %s", d.project.IAM.RoleName)
	}

	if _, err := d.clients.IAM.DeleteRole(ctx, &iam.DeleteRoleInput{
		RoleName: aws.String(d.project.IAM.RoleName),
	}); err != nil {
		return errors.Wrapf(err, "failed to delete role %s", d.project.IAM.RoleName)
	}

	return nil
}

// deleteIngressRules looks the security group up by name and deletes every
// match; the group id from provisioning is not persisted anywhere.
func (d *Decommissioner) deleteIngressRules(ctx context.Context) error {
	slog.Info("Deleting security group", "group", d.project.Network.SecurityGroup)

	groups, err := d.clients.EC2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("group-name"), Values: []string{d.project.Network.SecurityGroup}},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to look up security group %s", d.project.Network.SecurityGroup)
	}

	for _, group := range groups.SecurityGroups {
		if _, err := d.clients.EC2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
			GroupId: group.GroupId,
		}); err != nil {
			return errors.Wrapf(err, "failed to delete security group %s", aws.ToString(group.GroupId))
		}
	}

	return nil
}

// OK reports whether the step completed without error.
func (r StepResult) OK() bool {
	return r.Err == nil
}

// Failed returns the steps that reported an error, in execution order.
func (s Summary) Failed() []StepResult {
	var failed []StepResult
	for _, step := range s.Steps {
		if !step.OK() {
			failed = append(failed, step)
		}
	}
	return failed
}

// Clean reports whether every step completed without error.
func (s Summary) Clean() bool {
	return len(s.Failed()) == 0
}
