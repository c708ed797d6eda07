package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/chris-regnier/murmur/internal/entry"
	"github.com/chris-regnier/murmur/internal/storage"
)

// Store implements storage.Store using SQLite via Turso/libSQL. Each
// identity's journal is one JSON document row.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite storage backend.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", storage.ErrStorage, err)
	}

	dbPath := filepath.Join(dataDir, "murmur.db")
	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", storage.ErrStorage, err)
	}

	// Enable WAL mode
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL mode: %v", storage.ErrStorage, err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS journals (
			identity   TEXT PRIMARY KEY,
			document   TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("%w: creating schema: %v", storage.ErrStorage, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the identity's journal.
func (s *Store) Load(identity string) (entry.Collection, error) {
	var doc string
	err := s.db.QueryRow(
		"SELECT document FROM journals WHERE identity = ?", storage.Key(identity),
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return entry.Collection{}, nil
	}
	if err != nil {
		return entry.Collection{}, fmt.Errorf("%w: querying journal: %v", storage.ErrStorage, err)
	}
	return storage.Decode([]byte(doc))
}

// Save replaces the identity's journal.
func (s *Store) Save(identity string, c entry.Collection) error {
	data, err := storage.Encode(c)
	if err != nil {
		return err
	}
	return s.upsert(storage.Key(identity), string(data))
}

func (s *Store) upsert(key, document string) error {
	_, err := s.db.Exec(
		`INSERT INTO journals (identity, document, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(identity) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		key, document, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("%w: writing journal: %v", storage.ErrStorage, err)
	}
	return nil
}
