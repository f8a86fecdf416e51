package vectorstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// SQLiteStore is a persistent embedding cache using SQLite.
// Vectors from one embedding model only; opening it with another model clears it.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	model  string
	dims   int
	reset  string
	mu     sync.RWMutex
}

// OpenSQLiteStore opens (or creates) the cache at dbPath for the given model
func OpenSQLiteStore(dbPath, model string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		model:  model,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.validate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates the database schema
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS embeddings (
		key TEXT PRIMARY KEY,
		vector BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// validate drops cached vectors written by a different model or schema
func (s *SQLiteStore) validate() error {
	storedVersion, _ := s.getMetadata("version")
	storedModel, _ := s.getMetadata("model")

	switch {
	case storedModel == "":
		// new database
	case storedVersion != schemaVersion:
		s.reset = fmt.Sprintf("schema changed: %s → %s", storedVersion, schemaVersion)
	case storedModel != s.model:
		s.reset = fmt.Sprintf("model changed: %s → %s", storedModel, s.model)
	}

	if s.reset != "" {
		if _, err := s.db.Exec(`DELETE FROM embeddings`); err != nil {
			return fmt.Errorf("failed to clear stale cache: %w", err)
		}
		if _, err := s.db.Exec(`DELETE FROM metadata WHERE key = 'dimensions'`); err != nil {
			return fmt.Errorf("failed to clear stale cache: %w", err)
		}
	}

	if err := s.setMetadata("version", schemaVersion); err != nil {
		return err
	}
	if err := s.setMetadata("model", s.model); err != nil {
		return err
	}

	if dimsStr, err := s.getMetadata("dimensions"); err == nil {
		dims, err := strconv.Atoi(dimsStr)
		if err != nil {
			return fmt.Errorf("invalid dimensions: %w", err)
		}
		s.dims = dims
	}

	return nil
}

// Get returns the vector stored under key
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var vectorBlob []byte
	err := s.db.QueryRowContext(ctx, `SELECT vector FROM embeddings WHERE key = ?`, key).Scan(&vectorBlob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	vector := decodeVector(vectorBlob)
	if s.dims != 0 && len(vector) != s.dims {
		return nil, false, nil
	}
	return vector, true, nil
}

// Put stores a vector; all vectors must share one size
func (s *SQLiteStore) Put(ctx context.Context, key string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims == 0 {
		if err := s.setMetadata("dimensions", strconv.Itoa(len(vector))); err != nil {
			return err
		}
		s.dims = len(vector)
	} else if len(vector) != s.dims {
		return fmt.Errorf("vector has %d dimensions, cache holds %d", len(vector), s.dims)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO embeddings (key, vector, created_at)
		VALUES (?, ?, ?)
	`, key, encodeVector(vector), time.Now().Unix())

	return err
}

// Clear removes all vectors
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = 'dimensions'`); err != nil {
		return err
	}
	s.dims = 0
	return nil
}

// Count returns the number of stored vectors
func (s *SQLiteStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&count)
	if err != nil {
		return 0
	}

	return count
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file location
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// ResetReason explains why cached vectors were dropped on open, or "" if they were kept
func (s *SQLiteStore) ResetReason() string {
	return s.reset
}

// UpdateIndexTime records that the catalog was (re)indexed now
func (s *SQLiteStore) UpdateIndexTime() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadata("indexed_at", time.Now().Format(time.RFC3339))
}

// IndexTime returns when the catalog was last indexed, zero if never
func (s *SQLiteStore) IndexTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := s.getMetadata("indexed_at")
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// getMetadata retrieves a metadata value
func (s *SQLiteStore) getMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("metadata key not found: %s", key)
	}
	return value, err
}

// setMetadata stores a metadata value
func (s *SQLiteStore) setMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO metadata (key, value)
		VALUES (?, ?)
	`, key, value)
	return err
}

// encodeVector encodes a float32 slice to binary
func encodeVector(v []float32) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// decodeVector decodes binary data to a float32 slice
func decodeVector(b []byte) []float32 {
	buf := bytes.NewReader(b)
	v := make([]float32, len(b)/4)
	binary.Read(buf, binary.LittleEndian, &v)
	return v
}
