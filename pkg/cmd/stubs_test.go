package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	redshifttypes "github.com/aws/aws-sdk-go-v2/service/redshift/types"
	"github.com/stagehandhq/stagehand/pkg/config"
	"github.com/stagehandhq/stagehand/pkg/provision"
	"github.com/stagehandhq/stagehand/pkg/warehouse"
)

// stubClients satisfies every control-plane interface with canned happy-path
// responses. Commands under test only see what the real AWS clients would
// report on success.
type stubClients struct {
	clusterDeleted bool
}

func (s *stubClients) CreateRole(_ context.Context, params *iam.CreateRoleInput, _ ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	return &iam.CreateRoleOutput{
		Role: &iamtypes.Role{
			Arn:      aws.String("arn:aws:iam::123456789012:role/stub-role"),
			RoleName: params.RoleName,
		},
	}, nil
}

func (s *stubClients) AttachRolePolicy(_ context.Context, _ *iam.AttachRolePolicyInput, _ ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	return &iam.AttachRolePolicyOutput{}, nil
}

func (s *stubClients) DetachRolePolicy(_ context.Context, _ *iam.DetachRolePolicyInput, _ ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error) {
	return &iam.DetachRolePolicyOutput{}, nil
}

func (s *stubClients) DeleteRole(_ context.Context, _ *iam.DeleteRoleInput, _ ...func(*iam.Options)) (*iam.DeleteRoleOutput, error) {
	return &iam.DeleteRoleOutput{}, nil
}

func (s *stubClients) DescribeVpcs(_ context.Context, _ *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return &ec2.DescribeVpcsOutput{
		Vpcs: []ec2types.Vpc{{VpcId: aws.String("vpc-stub")}},
	}, nil
}

func (s *stubClients) CreateSecurityGroup(_ context.Context, _ *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String("sg-stub")}, nil
}

func (s *stubClients) AuthorizeSecurityGroupIngress(_ context.Context, _ *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (s *stubClients) DescribeSubnets(_ context.Context, _ *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	return &ec2.DescribeSubnetsOutput{
		Subnets: []ec2types.Subnet{{SubnetId: aws.String("subnet-stub")}},
	}, nil
}

func (s *stubClients) DescribeSecurityGroups(_ context.Context, _ *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return &ec2.DescribeSecurityGroupsOutput{
		SecurityGroups: []ec2types.SecurityGroup{{GroupId: aws.String("sg-default")}},
	}, nil
}

func (s *stubClients) DeleteSecurityGroup(_ context.Context, _ *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	return &ec2.DeleteSecurityGroupOutput{}, nil
}

func (s *stubClients) CreateClusterSubnetGroup(_ context.Context, _ *redshift.CreateClusterSubnetGroupInput, _ ...func(*redshift.Options)) (*redshift.CreateClusterSubnetGroupOutput, error) {
	return &redshift.CreateClusterSubnetGroupOutput{}, nil
}

func (s *stubClients) DescribeClusterSubnetGroups(_ context.Context, _ *redshift.DescribeClusterSubnetGroupsInput, _ ...func(*redshift.Options)) (*redshift.DescribeClusterSubnetGroupsOutput, error) {
	return &redshift.DescribeClusterSubnetGroupsOutput{}, nil
}

func (s *stubClients) DeleteClusterSubnetGroup(_ context.Context, _ *redshift.DeleteClusterSubnetGroupInput, _ ...func(*redshift.Options)) (*redshift.DeleteClusterSubnetGroupOutput, error) {
	return &redshift.DeleteClusterSubnetGroupOutput{}, nil
}

func (s *stubClients) CreateCluster(_ context.Context, _ *redshift.CreateClusterInput, _ ...func(*redshift.Options)) (*redshift.CreateClusterOutput, error) {
	return &redshift.CreateClusterOutput{}, nil
}

func (s *stubClients) DescribeClusters(_ context.Context, _ *redshift.DescribeClustersInput, _ ...func(*redshift.Options)) (*redshift.DescribeClustersOutput, error) {
	return &redshift.DescribeClustersOutput{
		Clusters: []redshifttypes.Cluster{
			{Endpoint: &redshifttypes.Endpoint{Address: aws.String("stub.redshift.example.com")}},
		},
	}, nil
}

func (s *stubClients) DeleteCluster(_ context.Context, _ *redshift.DeleteClusterInput, _ ...func(*redshift.Options)) (*redshift.DeleteClusterOutput, error) {
	s.clusterDeleted = true
	return &redshift.DeleteClusterOutput{}, nil
}

func (s *stubClients) WaitForAvailable(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (s *stubClients) WaitForDeleted(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

// useStubClients points the commands at the stub control plane for the
// duration of a test.
func useStubClients(t *testing.T) *stubClients {
	t.Helper()

	stub := &stubClients{}
	prevClients := newClients
	newClients = func(_ context.Context, _ string) (*provision.Clients, error) {
		return &provision.Clients{IAM: stub, EC2: stub, Redshift: stub, Waiter: stub}, nil
	}

	// the stub control plane has no eventual consistency to wait out
	prevProvisioner := newProvisioner
	newProvisioner = func(cfg provision.ProvisionerConfig) *provision.Provisioner {
		cfg.SettleDelay = 0
		return provision.NewProvisioner(cfg)
	}

	t.Cleanup(func() {
		newClients = prevClients
		newProvisioner = prevProvisioner
	})

	return stub
}

type stubRows struct{}

func (stubRows) Next() bool             { return false }
func (stubRows) Values() ([]any, error) { return nil, nil }
func (stubRows) Err() error             { return nil }
func (stubRows) Close()                 {}

// stubConn records every statement it is asked to run.
type stubConn struct {
	queries []string
	closed  bool
}

func (c *stubConn) Query(_ context.Context, sql string) (warehouse.Rows, error) {
	c.queries = append(c.queries, sql)
	return stubRows{}, nil
}

func (c *stubConn) Close(_ context.Context) error {
	c.closed = true
	return nil
}

// useStubConnector points the commands at an in-memory warehouse connection
// for the duration of a test.
func useStubConnector(t *testing.T) *stubConn {
	t.Helper()

	conn := &stubConn{}
	prev := connector
	connector = func(_ context.Context, _ warehouse.Config) (warehouse.Conn, error) {
		return conn, nil
	}
	t.Cleanup(func() { connector = prev })

	return conn
}

// testConfig returns a complete project configuration whose session file
// lives under a per-test temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		AWS: config.AWS{
			Region:     "us-west-2",
			DefaultVPC: "vpc-default",
		},
		IAM: config.IAM{RoleName: "sparkify-role"},
		Network: config.Network{
			SecurityGroup: "sparkify-sg",
			SubnetGroup:   "sparkify-subnets",
		},
		Cluster: config.Cluster{
			Identifier:     "sparkify-cluster",
			Database:       "sparkify",
			MasterUsername: "admin",
			MasterPassword: "hunter22",
			Port:           5439,
		},
		Storage: config.Storage{
			SongData:    "s3://udacity-dend/song_data",
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
		},
		SessionFile: filepath.Join(t.TempDir(), "stagehand-session.yaml"),
	}
}
