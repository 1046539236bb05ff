// Package sqlite provides the public API for the SQLite Archive backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
//
// Implements: prd004-archive-core R2, R4 (backend factory).
package sqlite

import (
	"github.com/mesh-intelligence/knapsack/internal/sqlite"
	"github.com/mesh-intelligence/knapsack/pkg/archive"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(archive.Config{
//	    Backend: archive.BackendSQLite,
//	    DataDir: ".knapsack-db",
//	})
//	defer backend.Detach()
func NewBackend() archive.Archive {
	return sqlite.NewBackend()
}
