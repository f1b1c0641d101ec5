package types

import (
	"errors"
	"path/filepath"
)

// Config holds backend selection and parameters for attaching a PlanStore.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DatabaseFile is the SQLite file name inside DataDir.
const DatabaseFile = "plans.db"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. An empty DataDir is valid
// and means the current directory.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// Dir returns DataDir, or "." when unset.
func (c Config) Dir() string {
	if c.DataDir == "" {
		return "."
	}
	return c.DataDir
}

// DatabasePath returns the location of the SQLite file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.Dir(), DatabaseFile)
}
