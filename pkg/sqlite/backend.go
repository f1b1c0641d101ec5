// Package sqlite provides the public API for the SQLite plan store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/planbook/internal/sqlite"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

// Store is a plan store that can also export and import JSONL.
type Store interface {
	types.Store
	types.Archiver
}

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithLogger sets the logger for lifecycle and transaction events.
func WithLogger(l *zap.Logger) Option {
	return sqlite.WithLogger(l)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".planbook-db",
//	})
//	defer backend.Detach()
func NewBackend(opts ...Option) Store {
	return sqlite.NewBackend(opts...)
}
