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
	"github.com/stagehandhq/stagehand/pkg/session"
	"github.com/stagehandhq/stagehand/pkg/warehouse"
)

type (
	// Provisioner creates the warehouse and everything it needs to run, in a
	// fixed order: access role, ingress rule group, placement (subnet) group,
	// then the cluster itself.
	//
	// Every step is fatal on first error and nothing here retries: cluster
	// creation is not idempotent, and blindly resubmitting risks duplicate or
	// conflicting resources. All resilience lives in the connection and
	// statement layers used after provisioning.
	Provisioner struct {
		clients     *Clients
		project     *config.Config
		settleDelay time.Duration
		clusterWait time.Duration
	}

	// ProvisionerConfig contains configuration options for creating a new
	// Provisioner.
	ProvisionerConfig struct {
		// Clients are the control-plane clients to provision through
		Clients *Clients

		// Project is the loaded project configuration
		Project *config.Config

		// SettleDelay is the wait between subnet group creation and cluster
		// launch; zero skips the wait (tests)
		SettleDelay time.Duration

		// ClusterWait caps the block-until-available wait; defaults to 30m
		ClusterWait time.Duration
	}
)

// NewProvisioner creates a provisioner with the provided configuration.
func NewProvisioner(cfg ProvisionerConfig) *Provisioner {
	p := &Provisioner{
		clients:     cfg.Clients,
		project:     cfg.Project,
		settleDelay: cfg.SettleDelay,
		clusterWait: cfg.ClusterWait,
	}
	if p.clusterWait <= 0 {
		p.clusterWait = defaultClusterWait
	}
	return p
}

// Provision runs the creation sequence and returns the session state every
// later phase consumes. The returned state has already observed the cluster
// in its available state; its endpoint is the one the control plane reported.
func (p *Provisioner) Provision(ctx context.Context) (*session.State, error) {
	roleARN, err := p.createAccessRole(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create access role")
	}

	vpcID, groupID, err := p.createIngressRule(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ingress rule")
	}

	if err := p.createPlacementGroup(ctx, vpcID); err != nil {
		return nil, errors.Wrap(err, "failed to create placement group")
	}

	if p.settleDelay > 0 {
		// The control plane is eventually consistent; launching immediately
		// after subnet group creation intermittently fails with not-found.
		slog.Info("Waiting for subnet group to settle", "delay", p.settleDelay)
		time.Sleep(p.settleDelay)
	}

	endpoint, err := p.launchCluster(ctx, roleARN, groupID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to launch cluster")
	}

	slog.Info("Provisioning complete", "endpoint", endpoint)

	return &session.State{
		Warehouse: warehouse.Config{
			User:     p.project.Cluster.MasterUsername,
			Password: p.project.Cluster.MasterPassword,
			Endpoint: endpoint,
			Port:     p.project.Cluster.Port,
			Database: p.project.Cluster.Database,
		},
		RoleARN: roleARN,
		Region:  p.project.AWS.Region,
	}, nil
}

// createAccessRole creates the IAM role the warehouse assumes to read from S3
// and attaches the managed read-only policy. Returns the role ARN.
func (p *Provisioner) createAccessRole(ctx context.Context) (string, error) {
	slog.Info("Creating IAM role", "role", p.project.IAM.RoleName)

	role, err := p.clients.IAM.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(p.project.IAM.RoleName),
		AssumeRolePolicyDocument: aws.String(assumeRolePolicy),
		Description:              aws.String("Role for the warehouse to read source data from S3"),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to create role %s", p.project.IAM.RoleName)
	}

	if _, err := p.clients.IAM.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(p.project.IAM.RoleName),
		PolicyArn: aws.String(s3ReadOnlyPolicyARN),
	}); err != nil {
		return "", errors.Wrapf(err, "failed to attach read policy to %s", p.project.IAM.RoleName)
	}

	return aws.ToString(role.Role.Arn), nil
}

// createIngressRule discovers the account's first VPC, creates the security
// group there, and opens the warehouse port to the world. Returns the VPC id
// and the new group id.
func (p *Provisioner) createIngressRule(ctx context.Context) (string, string, error) {
	slog.Info("Creating security group", "group", p.project.Network.SecurityGroup)

	vpcs, err := p.clients.EC2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return "", "", errors.Wrap(err, "failed to describe VPCs")
	}
	if len(vpcs.Vpcs) == 0 {
		return "", "", errors.New("no VPCs found in account")
	}

	vpcID := aws.ToString(vpcs.Vpcs[0].VpcId)

	group, err := p.clients.EC2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(p.project.Network.SecurityGroup),
		Description: aws.String("Security group for warehouse public access"),
		VpcId:       aws.String(vpcID),
	})
	if err != nil {
		return "", "", errors.Wrapf(err, "failed to create security group %s", p.project.Network.SecurityGroup)
	}

	groupID := aws.ToString(group.GroupId)
	port := int32(p.project.Cluster.Port)

	if _, err := p.clients.EC2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: aws.String("tcp"),
				FromPort:   aws.Int32(port),
				ToPort:     aws.Int32(port),
				IpRanges: []ec2types.IpRange{
					{CidrIp: aws.String("0.0.0.0/0")},
				},
			},
		},
	}); err != nil {
		return "", "", errors.Wrapf(err, "failed to authorize ingress on %s", groupID)
	}

	return vpcID, groupID, nil
}

// createPlacementGroup enumerates the VPC's subnets and registers them as the
// cluster subnet group.
func (p *Provisioner) createPlacementGroup(ctx context.Context, vpcID string) error {
	slog.Info("Creating cluster subnet group", "group", p.project.Network.SubnetGroup, "vpc", vpcID)

	subnets, err := p.clients.EC2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to describe subnets for %s", vpcID)
	}

	subnetIDs := make([]string, 0, len(subnets.Subnets))
	for _, subnet := range subnets.Subnets {
		subnetIDs = append(subnetIDs, aws.ToString(subnet.SubnetId))
	}

	if _, err := p.clients.Redshift.CreateClusterSubnetGroup(ctx, &redshift.CreateClusterSubnetGroupInput{
		ClusterSubnetGroupName: aws.String(p.project.Network.SubnetGroup),
		Description:            aws.String("Subnet group for the warehouse cluster"),
		SubnetIds:              subnetIDs,
	}); err != nil {
		return errors.Wrapf(err, "failed to create subnet group %s", p.project.Network.SubnetGroup)
	}

	groups, err := p.clients.Redshift.DescribeClusterSubnetGroups(ctx, &redshift.DescribeClusterSubnetGroupsInput{})
	if err != nil {
		return errors.Wrap(err, "failed to describe subnet groups")
	}

	names := make([]string, 0, len(groups.ClusterSubnetGroups))
	for _, g := range groups.ClusterSubnetGroups {
		names = append(names, aws.ToString(g.ClusterSubnetGroupName))
	}
	slog.Info("Current subnet groups", "groups", names)

	return nil
}

// launchCluster looks up the platform's default security group, submits the
// cluster creation request with both group ids, and blocks until the control
// plane reports the cluster available. Returns the cluster endpoint address.
//
// A missing default security group is fatal here, before anything is
// submitted.
func (p *Provisioner) launchCluster(ctx context.Context, roleARN, groupID string) (string, error) {
	slog.Info("Launching warehouse cluster", "identifier", p.project.Cluster.Identifier)

	defaults, err := p.clients.EC2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{p.project.AWS.DefaultVPC}},
			{Name: aws.String("group-name"), Values: []string{"default"}},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to describe default security group")
	}
	if len(defaults.SecurityGroups) == 0 {
		return "", errors.Errorf("default security group not found in VPC %s", p.project.AWS.DefaultVPC)
	}

	defaultGroupID := aws.ToString(defaults.SecurityGroups[0].GroupId)
	slog.Info("Found default security group", "group_id", defaultGroupID)

	if _, err := p.clients.Redshift.CreateCluster(ctx, &redshift.CreateClusterInput{
		ClusterIdentifier:      aws.String(p.project.Cluster.Identifier),
		NodeType:               aws.String(p.project.Cluster.NodeType),
		MasterUsername:         aws.String(p.project.Cluster.MasterUsername),
		MasterUserPassword:     aws.String(p.project.Cluster.MasterPassword),
		DBName:                 aws.String(p.project.Cluster.Database),
		ClusterType:            aws.String(p.project.Cluster.ClusterType),
		VpcSecurityGroupIds:    []string{groupID, defaultGroupID},
		ClusterSubnetGroupName: aws.String(p.project.Network.SubnetGroup),
		IamRoles:               []string{roleARN},
		Port:                   aws.Int32(int32(p.project.Cluster.Port)),
		PubliclyAccessible:     aws.Bool(true),
	}); err != nil {
		return "", errors.Wrapf(err, "failed to create cluster %s", p.project.Cluster.Identifier)
	}

	slog.Info("Waiting for cluster to become available (this may take a few minutes)")

	if err := p.clients.Waiter.WaitForAvailable(ctx, p.project.Cluster.Identifier, p.clusterWait); err != nil {
		return "", errors.Wrapf(err, "cluster %s did not become available", p.project.Cluster.Identifier)
	}

	info, err := p.clients.Redshift.DescribeClusters(ctx, &redshift.DescribeClustersInput{
		ClusterIdentifier: aws.String(p.project.Cluster.Identifier),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to describe cluster %s", p.project.Cluster.Identifier)
	}
	if len(info.Clusters) == 0 || info.Clusters[0].Endpoint == nil {
		return "", errors.Errorf("cluster %s has no endpoint", p.project.Cluster.Identifier)
	}

	return aws.ToString(info.Clusters[0].Endpoint.Address), nil
}
