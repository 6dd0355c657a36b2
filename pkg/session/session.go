package session

import (
	"os"

	"github.com/pkg/errors"
	"github.com/stagehandhq/stagehand/pkg/consts"
	"github.com/stagehandhq/stagehand/pkg/warehouse"
	"gopkg.in/yaml.v3"
)

type (
	// State is the minimal record bridging provisioning and every later
	// phase: how to reach the warehouse, which role the COPY statements
	// assume, and which region the source buckets live in.
	//
	// The on-disk layout is a plain YAML document with exactly these fields,
	// so the record round-trips without any language-specific serialization.
	State struct {
		// Warehouse is the connection descriptor for the provisioned cluster
		Warehouse warehouse.Config `yaml:"warehouse"`

		// RoleARN is the access role the warehouse assumes to read from S3
		RoleARN string `yaml:"role_arn"`

		// Region is the AWS region the cluster and source buckets live in
		Region string `yaml:"region"`
	}
)

// Save writes the session state to path, creating or truncating the file.
func Save(path string, state *State) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session state")
	}

	if err := os.WriteFile(path, data, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write session state: %s", path)
	}

	return nil
}

// Load reads the session state from path. A missing file is reported through
// IsNotExist so the front door can distinguish "run provision first" from a
// corrupt record.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read session state: %s", path)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session state: %s", path)
	}

	return &state, nil
}

// Remove deletes the session state file. Removing a file that does not exist
// is not an error; decommission must stay best-effort.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove session state: %s", path)
	}
	return nil
}

// Exists reports whether a session state file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsNotExist reports whether err from Load means the session file is missing.
func IsNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}
