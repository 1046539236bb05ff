// Package sqlite implements the SQLite storage backend for Knapsack
// archives.
// Implements: prd004-archive-core R2, R4, R5;
//
//	prd006-configuration-directories R3, R4.
package sqlite

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/knapsack/pkg/archive"
	"github.com/mesh-intelligence/knapsack/pkg/pack"
)

//go:embed schema.sql
var schemaSQL string

// dbFileName is the database file created under DataDir.
const dbFileName = "knapsack.db"

// Backend implements the Archive interface using a SQLite database as both
// query engine and source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   archive.Config
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist and applies the schema. Existing
// records survive across attach cycles.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config archive.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return archive.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true

	return nil
}

// Detach releases all resources held by the backend.
// Closes the SQLite connection. After Detach, all operations return
// ErrArchiveDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false

	return nil
}

// Put stores env under name and returns the new record.
func (b *Backend) Put(name string, env *pack.Envelope) (*archive.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, archive.ErrArchiveDetached
	}

	payload, err := pack.ToJSON(env)
	if err != nil {
		return nil, err
	}

	rec := &archive.Record{
		ArchiveID: generateUUID(),
		Name:      name,
		Payload:   payload,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	_, err = b.db.Exec(
		`INSERT INTO envelopes (envelope_id, name, payload, created_at) VALUES (?, ?, ?, ?)`,
		rec.ArchiveID, rec.Name, rec.Payload, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", name, err)
	}

	return rec, nil
}

// Get returns the record with the given archive ID.
func (b *Backend) Get(id string) (*archive.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, archive.ErrArchiveDetached
	}

	row := b.db.QueryRow(
		`SELECT envelope_id, name, payload, created_at FROM envelopes WHERE envelope_id = ?`, id,
	)
	return scanRecord(row)
}

// GetByName returns the most recently stored record with the given name.
func (b *Backend) GetByName(name string) (*archive.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, archive.ErrArchiveDetached
	}

	row := b.db.QueryRow(
		`SELECT envelope_id, name, payload, created_at FROM envelopes
		 WHERE name = ? ORDER BY created_at DESC, envelope_id DESC LIMIT 1`, name,
	)
	return scanRecord(row)
}

// List returns all records ordered newest first.
func (b *Backend) List() ([]*archive.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, archive.ErrArchiveDetached
	}

	rows, err := b.db.Query(
		`SELECT envelope_id, name, payload, created_at FROM envelopes ORDER BY created_at DESC, envelope_id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*archive.Record
	for rows.Next() {
		rec := &archive.Record{}
		if err := rows.Scan(&rec.ArchiveID, &rec.Name, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes the record with the given archive ID.
func (b *Backend) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return archive.ErrArchiveDetached
	}

	res, err := b.db.Exec(`DELETE FROM envelopes WHERE envelope_id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return archive.ErrNotFound
	}
	return nil
}

func scanRecord(row *sql.Row) (*archive.Record, error) {
	rec := &archive.Record{}
	err := row.Scan(&rec.ArchiveID, &rec.Name, &rec.Payload, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, archive.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// generateUUID generates a new UUID v7 for record IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
