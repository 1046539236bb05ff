// Package archive defines the Archive interface, record type, and standard
// errors for durable envelope storage.
// Implements: prd004-archive-core (Config, Archive, Record, errors).
package archive

import (
	"errors"

	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

// Config holds backend selection and parameters for Archive.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors (prd004-archive-core R1.4).
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// Archive lifecycle and lookup errors (prd004-archive-core R7.1).
var (
	ErrArchiveDetached = errors.New("archive is detached")
	ErrAlreadyAttached = errors.New("archive is already attached")
	ErrNotFound        = errors.New("record not found")
)

// Record is a stored envelope with its archive bookkeeping. Payload holds
// the envelope's JSON text exactly as written.
type Record struct {
	ArchiveID string `json:"archive_id"`
	Name      string `json:"name"`
	Payload   string `json:"payload"`
	CreatedAt string `json:"created_at"`
}

// Envelope decodes the record's payload.
func (r *Record) Envelope() (*pack.Envelope, error) {
	return pack.FromJSON(r.Payload)
}

// Archive defines the interface for backend-agnostic envelope storage.
// Callers attach to a backend, store and retrieve records, and detach when
// done. Implements prd004-archive-core R2.
type Archive interface {
	// Attach connects the Archive to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, operations return ErrArchiveDetached.
	Detach() error

	// Put stores env under name and returns the new record. Names are not
	// unique; each Put creates a fresh record.
	Put(name string, env *pack.Envelope) (*Record, error)

	// Get returns the record with the given archive ID.
	// Returns ErrNotFound if no record has that ID.
	Get(id string) (*Record, error)

	// GetByName returns the most recently stored record with the given
	// name. Returns ErrNotFound if no record has that name.
	GetByName(name string) (*Record, error)

	// List returns all records ordered newest first, payloads included.
	List() ([]*Record, error)

	// Delete removes the record with the given archive ID.
	// Returns ErrNotFound if no record has that ID.
	Delete(id string) error
}
