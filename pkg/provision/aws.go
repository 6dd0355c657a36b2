package provision

import (
	"context"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/pkg/errors"
)

type (
	// IAMClient is the subset of the IAM API used for the warehouse access
	// role. Satisfied by *iam.Client; fakes implement it in tests.
	IAMClient interface {
		CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
		AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error)
		DetachRolePolicy(ctx context.Context, params *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error)
		DeleteRole(ctx context.Context, params *iam.DeleteRoleInput, optFns ...func(*iam.Options)) (*iam.DeleteRoleOutput, error)
	}

	// EC2Client is the subset of the EC2 API used for network discovery and
	// the ingress rule group.
	EC2Client interface {
		DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
		CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
		AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
		DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
		DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
		DeleteSecurityGroup(ctx context.Context, params *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)
	}

	// RedshiftClient is the subset of the Redshift API used for the subnet
	// group and the cluster itself.
	RedshiftClient interface {
		CreateClusterSubnetGroup(ctx context.Context, params *redshift.CreateClusterSubnetGroupInput, optFns ...func(*redshift.Options)) (*redshift.CreateClusterSubnetGroupOutput, error)
		DescribeClusterSubnetGroups(ctx context.Context, params *redshift.DescribeClusterSubnetGroupsInput, optFns ...func(*redshift.Options)) (*redshift.DescribeClusterSubnetGroupsOutput, error)
		DeleteClusterSubnetGroup(ctx context.Context, params *redshift.DeleteClusterSubnetGroupInput, optFns ...func(*redshift.Options)) (*redshift.DeleteClusterSubnetGroupOutput, error)
		CreateCluster(ctx context.Context, params *redshift.CreateClusterInput, optFns ...func(*redshift.Options)) (*redshift.CreateClusterOutput, error)
		DescribeClusters(ctx context.Context, params *redshift.DescribeClustersInput, optFns ...func(*redshift.Options)) (*redshift.DescribeClustersOutput, error)
		DeleteCluster(ctx context.Context, params *redshift.DeleteClusterInput, optFns ...func(*redshift.Options)) (*redshift.DeleteClusterOutput, error)
	}

	// ClusterWaiter wraps the control plane's block-until-state primitives.
	// The waits are cooperative (the SDK polls internally); once begun the
	// only way out is the wait completing or the context ending.
	ClusterWaiter interface {
		WaitForAvailable(ctx context.Context, clusterID string, maxWait time.Duration) error
		WaitForDeleted(ctx context.Context, clusterID string, maxWait time.Duration) error
	}

	// Clients bundles the control-plane clients both the Provisioner and the
	// Decommissioner are constructed with.
	Clients struct {
		IAM      IAMClient
		EC2      EC2Client
		Redshift RedshiftClient
		Waiter   ClusterWaiter
	}
)

const (
	// s3ReadOnlyPolicyARN is the managed policy attached to the access role so
	// COPY statements can read the source buckets.
	s3ReadOnlyPolicyARN = "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess"

	// assumeRolePolicy lets the warehouse service assume the access role.
	assumeRolePolicy = `{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"Service": "redshift.amazonaws.com"},
				"Action": "sts:AssumeRole"
			}
		]
	}`

	// defaultClusterWait caps the block-until-available / block-until-deleted
	// waits; cluster lifecycle usually completes well inside this.
	defaultClusterWait = 30 * time.Minute
)

// NewClients constructs real SDK clients for the given region.
//
// Example:
//
//	clients, err := provision.NewClients(ctx, cfg.AWS.Region)
//	if err != nil {
//		return errors.Wrap(err, "failed to build AWS clients")
//	}
//
//	p := provision.NewProvisioner(provision.ProvisionerConfig{
//		Clients: clients,
//		Project: cfg,
//	})
func NewClients(ctx context.Context, region string) (*Clients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}

	rs := redshift.NewFromConfig(awsCfg)

	return &Clients{
		IAM:      iam.NewFromConfig(awsCfg),
		EC2:      ec2.NewFromConfig(awsCfg),
		Redshift: rs,
		Waiter: &sdkClusterWaiter{
			available: redshift.NewClusterAvailableWaiter(rs),
			deleted:   redshift.NewClusterDeletedWaiter(rs),
		},
	}, nil
}

type sdkClusterWaiter struct {
	available *redshift.ClusterAvailableWaiter
	deleted   *redshift.ClusterDeletedWaiter
}

func (w *sdkClusterWaiter) WaitForAvailable(ctx context.Context, clusterID string, maxWait time.Duration) error {
	return w.available.Wait(ctx, &redshift.DescribeClustersInput{
		ClusterIdentifier: &clusterID,
	}, maxWait)
}

func (w *sdkClusterWaiter) WaitForDeleted(ctx context.Context, clusterID string, maxWait time.Duration) error {
	return w.deleted.Wait(ctx, &redshift.DescribeClustersInput{
		ClusterIdentifier: &clusterID,
	}, maxWait)
}
