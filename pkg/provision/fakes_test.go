package provision

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	redshifttypes "github.com/aws/aws-sdk-go-v2/service/redshift/types"
	"github.com/stagehandhq/stagehand/pkg/config"
)

type fakeIAM struct {
	calls []string

	roleARN       string
	createRoleErr error
	attachErr     error
	detachErr     error
	deleteRoleErr error
}

func (f *fakeIAM) CreateRole(_ context.Context, params *iam.CreateRoleInput, _ ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	f.calls = append(f.calls, "CreateRole")
	if f.createRoleErr != nil {
		return nil, f.createRoleErr
	}

	return &iam.CreateRoleOutput{
		Role: &iamtypes.Role{
			Arn:      aws.String(f.roleARN),
			RoleName: params.RoleName,
		},
	}, nil
}

func (f *fakeIAM) AttachRolePolicy(_ context.Context, _ *iam.AttachRolePolicyInput, _ ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	f.calls = append(f.calls, "AttachRolePolicy")
	if f.attachErr != nil {
		return nil, f.attachErr
	}
	return &iam.AttachRolePolicyOutput{}, nil
}

func (f *fakeIAM) DetachRolePolicy(_ context.Context, _ *iam.DetachRolePolicyInput, _ ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error) {
	f.calls = append(f.calls, "DetachRolePolicy")
	if f.detachErr != nil {
		return nil, f.detachErr
	}
	return &iam.DetachRolePolicyOutput{}, nil
}

func (f *fakeIAM) DeleteRole(_ context.Context, _ *iam.DeleteRoleInput, _ ...func(*iam.Options)) (*iam.DeleteRoleOutput, error) {
	f.calls = append(f.calls, "DeleteRole")
	if f.deleteRoleErr != nil {
		return nil, f.deleteRoleErr
	}
	return &iam.DeleteRoleOutput{}, nil
}

type fakeEC2 struct {
	calls []string

	vpcID          string
	groupID        string
	defaultGroupID string
	subnetIDs      []string

	describeVpcsErr    error
	createGroupErr     error
	authorizeErr       error
	describeSubnetsErr error
	describeGroupsErr  error
	deleteGroupErr     error

	deletedGroupIDs []string
}

func (f *fakeEC2) DescribeVpcs(_ context.Context, _ *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	f.calls = append(f.calls, "DescribeVpcs")
	if f.describeVpcsErr != nil {
		return nil, f.describeVpcsErr
	}
	if f.vpcID == "" {
		return &ec2.DescribeVpcsOutput{}, nil
	}

	return &ec2.DescribeVpcsOutput{
		Vpcs: []ec2types.Vpc{{VpcId: aws.String(f.vpcID)}},
	}, nil
}

func (f *fakeEC2) CreateSecurityGroup(_ context.Context, _ *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	f.calls = append(f.calls, "CreateSecurityGroup")
	if f.createGroupErr != nil {
		return nil, f.createGroupErr
	}

	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String(f.groupID)}, nil
}

func (f *fakeEC2) AuthorizeSecurityGroupIngress(_ context.Context, _ *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	f.calls = append(f.calls, "AuthorizeSecurityGroupIngress")
	if f.authorizeErr != nil {
		return nil, f.authorizeErr
	}
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (f *fakeEC2) DescribeSubnets(_ context.Context, _ *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	f.calls = append(f.calls, "DescribeSubnets")
	if f.describeSubnetsErr != nil {
		return nil, f.describeSubnetsErr
	}

	subnets := make([]ec2types.Subnet, 0, len(f.subnetIDs))
	for _, id := range f.subnetIDs {
		subnets = append(subnets, ec2types.Subnet{SubnetId: aws.String(id)})
	}
	return &ec2.DescribeSubnetsOutput{Subnets: subnets}, nil
}

func (f *fakeEC2) DescribeSecurityGroups(_ context.Context, _ *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	f.calls = append(f.calls, "DescribeSecurityGroups")
	if f.describeGroupsErr != nil {
		return nil, f.describeGroupsErr
	}
	if f.defaultGroupID == "" {
		return &ec2.DescribeSecurityGroupsOutput{}, nil
	}

	return &ec2.DescribeSecurityGroupsOutput{
		SecurityGroups: []ec2types.SecurityGroup{{GroupId: aws.String(f.defaultGroupID)}},
	}, nil
}

func (f *fakeEC2) DeleteSecurityGroup(_ context.Context, params *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	f.calls = append(f.calls, "DeleteSecurityGroup")
	if f.deleteGroupErr != nil {
		return nil, f.deleteGroupErr
	}

	f.deletedGroupIDs = append(f.deletedGroupIDs, aws.ToString(params.GroupId))
	return &ec2.DeleteSecurityGroupOutput{}, nil
}

type fakeRedshift struct {
	calls []string

	endpoint string

	createSubnetGroupErr   error
	describeSubnetGroupErr error
	deleteSubnetGroupErr   error
	createClusterErr       error
	describeClustersErr    error
	deleteClusterErr       error

	lastCreateCluster *redshift.CreateClusterInput
	lastDeleteCluster *redshift.DeleteClusterInput
	lastSubnetGroup   *redshift.CreateClusterSubnetGroupInput
}

func (f *fakeRedshift) CreateClusterSubnetGroup(_ context.Context, params *redshift.CreateClusterSubnetGroupInput, _ ...func(*redshift.Options)) (*redshift.CreateClusterSubnetGroupOutput, error) {
	f.calls = append(f.calls, "CreateClusterSubnetGroup")
	if f.createSubnetGroupErr != nil {
		return nil, f.createSubnetGroupErr
	}

	f.lastSubnetGroup = params
	return &redshift.CreateClusterSubnetGroupOutput{}, nil
}

func (f *fakeRedshift) DescribeClusterSubnetGroups(_ context.Context, _ *redshift.DescribeClusterSubnetGroupsInput, _ ...func(*redshift.Options)) (*redshift.DescribeClusterSubnetGroupsOutput, error) {
	f.calls = append(f.calls, "DescribeClusterSubnetGroups")
	if f.describeSubnetGroupErr != nil {
		return nil, f.describeSubnetGroupErr
	}
	return &redshift.DescribeClusterSubnetGroupsOutput{}, nil
}

func (f *fakeRedshift) DeleteClusterSubnetGroup(_ context.Context, _ *redshift.DeleteClusterSubnetGroupInput, _ ...func(*redshift.Options)) (*redshift.DeleteClusterSubnetGroupOutput, error) {
	f.calls = append(f.calls, "DeleteClusterSubnetGroup")
	if f.deleteSubnetGroupErr != nil {
		return nil, f.deleteSubnetGroupErr
	}
	return &redshift.DeleteClusterSubnetGroupOutput{}, nil
}

func (f *fakeRedshift) CreateCluster(_ context.Context, params *redshift.CreateClusterInput, _ ...func(*redshift.Options)) (*redshift.CreateClusterOutput, error) {
	f.calls = append(f.calls, "CreateCluster")
	if f.createClusterErr != nil {
		return nil, f.createClusterErr
	}

	f.lastCreateCluster = params
	return &redshift.CreateClusterOutput{}, nil
}

func (f *fakeRedshift) DescribeClusters(_ context.Context, _ *redshift.DescribeClustersInput, _ ...func(*redshift.Options)) (*redshift.DescribeClustersOutput, error) {
	f.calls = append(f.calls, "DescribeClusters")
	if f.describeClustersErr != nil {
		return nil, f.describeClustersErr
	}

	return &redshift.DescribeClustersOutput{
		Clusters: []redshifttypes.Cluster{
			{Endpoint: &redshifttypes.Endpoint{Address: aws.String(f.endpoint)}},
		},
	}, nil
}

func (f *fakeRedshift) DeleteCluster(_ context.Context, params *redshift.DeleteClusterInput, _ ...func(*redshift.Options)) (*redshift.DeleteClusterOutput, error) {
	f.calls = append(f.calls, "DeleteCluster")
	if f.deleteClusterErr != nil {
		return nil, f.deleteClusterErr
	}

	f.lastDeleteCluster = params
	return &redshift.DeleteClusterOutput{}, nil
}

type fakeWaiter struct {
	calls []string

	availableErr error
	deletedErr   error
}

func (f *fakeWaiter) WaitForAvailable(_ context.Context, clusterID string, _ time.Duration) error {
	f.calls = append(f.calls, "WaitForAvailable:"+clusterID)
	return f.availableErr
}

func (f *fakeWaiter) WaitForDeleted(_ context.Context, clusterID string, _ time.Duration) error {
	f.calls = append(f.calls, "WaitForDeleted:"+clusterID)
	return f.deletedErr
}

func testProject() *config.Config {
	return &config.Config{
		AWS: config.AWS{
			Region:     "us-west-2",
			DefaultVPC: "vpc-default",
		},
		IAM: config.IAM{
			RoleName: "sparkify-role",
		},
		Network: config.Network{
			SecurityGroup: "sparkify-sg",
			SubnetGroup:   "sparkify-subnets",
		},
		Cluster: config.Cluster{
			Identifier:     "sparkify-cluster",
			Database:       "sparkify",
			MasterUsername: "admin",
			MasterPassword: "hunter22",
			NodeType:       "dc2.large",
			ClusterType:    "single-node",
			Port:           5439,
		},
	}
}
