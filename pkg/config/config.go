package config

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/consts"
	"github.com/stagehandhq/stagehand/pkg/retry"
	"gopkg.in/yaml.v3"
)

type (
	// AWS holds the control-plane settings shared by provisioning and teardown.
	AWS struct {
		// Region is the AWS region every client is constructed for
		Region string `yaml:"region"`

		// DefaultVPC is the id of the VPC whose default security group is
		// attached to the cluster alongside the ingress group
		DefaultVPC string `yaml:"default_vpc_id"`
	}

	// IAM names the access role the warehouse assumes to read from S3.
	IAM struct {
		RoleName string `yaml:"role_name"`
	}

	// Network names the ingress and placement resources created around the cluster.
	Network struct {
		// SecurityGroup is the name of the ingress rule group opened on the
		// warehouse port
		SecurityGroup string `yaml:"security_group"`

		// SubnetGroup is the name of the cluster subnet group registered over
		// the default VPC's subnets
		SubnetGroup string `yaml:"subnet_group"`
	}

	// Cluster describes the managed warehouse cluster to launch.
	Cluster struct {
		Identifier     string `yaml:"identifier"`
		Database       string `yaml:"database"`
		MasterUsername string `yaml:"master_username"`
		MasterPassword string `yaml:"master_password"`
		NodeType       string `yaml:"node_type,omitempty"`
		ClusterType    string `yaml:"cluster_type,omitempty"`
		Port           int    `yaml:"port,omitempty"`
	}

	// Storage points at the S3 sources bulk-loaded into the staging tables.
	Storage struct {
		SongData    string `yaml:"song_data"`
		LogData     string `yaml:"log_data"`
		LogJSONPath string `yaml:"log_json_path"`
	}

	// Retry carries the fixed-delay retry knobs for connection probing and
	// statement execution. Delays are in seconds so the file stays plain YAML.
	Retry struct {
		ConnectAttempts   int `yaml:"connect_attempts,omitempty"`
		ConnectDelay      int `yaml:"connect_delay,omitempty"`
		StatementAttempts int `yaml:"statement_attempts,omitempty"`
		StatementDelay    int `yaml:"statement_delay,omitempty"`

		// SettleDelay is the wait after subnet group creation before the
		// cluster launch is submitted
		SettleDelay int `yaml:"settle_delay,omitempty"`
	}

	// Config represents the project configuration for warehouse lifecycle and
	// pipeline runs. It is constructed once at process start and passed into
	// every component constructor; nothing reads it ambiently.
	Config struct {
		AWS     AWS     `yaml:"aws"`
		IAM     IAM     `yaml:"iam"`
		Network Network `yaml:"network"`
		Cluster Cluster `yaml:"cluster"`
		Storage Storage `yaml:"storage"`
		Retry   Retry   `yaml:"retry,omitempty"`

		// SessionFile is where provisioning output is persisted between phases
		SessionFile string `yaml:"session_file,omitempty"`
	}
)

// LoadConfig parses a project configuration from the provided io.Reader.
//
// The function expects YAML-formatted configuration data describing the AWS
// control plane, the cluster to launch, and the S3 sources to load. Missing
// optional values are filled with defaults from pkg/consts.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Cluster: %s\n", cfg.Cluster.Identifier)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal stagehand config")
	}

	if cfg.Cluster.NodeType == "" {
		cfg.Cluster.NodeType = consts.DefaultNodeType
	}
	if cfg.Cluster.ClusterType == "" {
		cfg.Cluster.ClusterType = consts.DefaultClusterType
	}
	if cfg.Cluster.Port == 0 {
		cfg.Cluster.Port = consts.DefaultWarehousePort
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = consts.DefaultSessionFile
	}

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
//
// Example:
//
//	cfg, err := config.LoadConfigFile("stagehand.yaml")
//	if err != nil {
//		log.Fatal("Failed to load config:", err)
//	}
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// ConnectPolicy returns the retry policy the connection prober runs with.
func (c *Config) ConnectPolicy() retry.Policy {
	p := retry.Policy{
		MaxAttempts: consts.DefaultConnectAttempts,
		Delay:       consts.DefaultConnectDelay,
	}
	if c.Retry.ConnectAttempts > 0 {
		p.MaxAttempts = c.Retry.ConnectAttempts
	}
	if c.Retry.ConnectDelay > 0 {
		p.Delay = time.Duration(c.Retry.ConnectDelay) * time.Second
	}
	return p
}

// StatementPolicy returns the per-statement retry policy for batch execution.
func (c *Config) StatementPolicy() retry.Policy {
	p := retry.Policy{
		MaxAttempts: consts.DefaultStatementAttempts,
		Delay:       consts.DefaultStatementDelay,
	}
	if c.Retry.StatementAttempts > 0 {
		p.MaxAttempts = c.Retry.StatementAttempts
	}
	if c.Retry.StatementDelay > 0 {
		p.Delay = time.Duration(c.Retry.StatementDelay) * time.Second
	}
	return p
}

// SettleDelay returns the eventual-consistency wait applied between subnet
// group creation and cluster launch.
func (c *Config) SettleDelay() time.Duration {
	if c.Retry.SettleDelay > 0 {
		return time.Duration(c.Retry.SettleDelay) * time.Second
	}
	return consts.DefaultSettleDelay
}
