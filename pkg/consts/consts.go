package consts

import (
	"os"
	"time"
)

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// DefaultConfigFile is the project configuration file stagehand looks for
	DefaultConfigFile = "stagehand.yaml"

	// DefaultSessionFile is where provisioning output is persisted between phases
	DefaultSessionFile = "stagehand-session.yaml"

	// DefaultWarehousePort is the default port Redshift listens on
	DefaultWarehousePort = 5439

	// DefaultNodeType is the default Redshift node type for new clusters
	DefaultNodeType = "dc2.large"

	// DefaultClusterType is the default Redshift cluster layout
	DefaultClusterType = "single-node"

	// DefaultConnectAttempts is how many times the prober tries to reach the warehouse
	DefaultConnectAttempts = 10

	// DefaultConnectDelay is the fixed wait between connection attempts
	DefaultConnectDelay = 5 * time.Second

	// DefaultStatementAttempts is how many times a single statement is retried
	DefaultStatementAttempts = 3

	// DefaultStatementDelay is the fixed wait between statement attempts
	DefaultStatementDelay = 5 * time.Second

	// DefaultSettleDelay is the wait after subnet group creation before launching
	// the cluster. The control plane is eventually consistent and a cluster
	// created immediately after its subnet group can fail with a not-found error.
	DefaultSettleDelay = 15 * time.Second

	// DefaultProbeTimeout is the per-attempt connection timeout used by the prober
	DefaultProbeTimeout = 5 * time.Second
)
