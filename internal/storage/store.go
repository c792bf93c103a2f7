package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/lidayx/lumina-engine/pkg/types"
)

// Store is the durable backing for the catalog and alias tables. It has an
// explicit lifecycle: New -> Init -> Ready -> Close. Until Init has completed
// successfully every operation returns types.ErrNotReady; callers decide how
// to degrade.
type Store struct {
	path string
	log  *zap.Logger

	mu    sync.RWMutex
	db    *sql.DB
	ready atomic.Bool
	initG singleflight.Group
}

// New creates a Store for the database at path (":memory:" for tests). The
// database is not opened until Init.
func New(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log}
}

// Init opens the database and applies migrations. It is idempotent and safe
// to call concurrently: simultaneous first-callers converge on a single
// in-flight initialization. On failure the store stays non-ready and the next
// call retries from scratch.
func (s *Store) Init(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	_, err, _ := s.initG.Do("init", func() (interface{}, error) {
		if s.ready.Load() {
			return nil, nil
		}
		db, err := openDatabase(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := ApplyMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		s.mu.Lock()
		s.db = db
		s.mu.Unlock()
		s.ready.Store(true)
		s.log.Debug("store initialized", zap.String("path", s.path), zap.String("driver", DriverName))
		return nil, nil
	})
	return err
}

// Ready reports whether Init has completed successfully.
func (s *Store) Ready() bool {
	return s.ready.Load()
}

// Close tears the store down. A closed store can be re-initialized.
func (s *Store) Close() error {
	s.ready.Store(false)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// conn returns the live database handle, or ErrNotReady before Init.
func (s *Store) conn() (*sql.DB, error) {
	if !s.ready.Load() {
		return nil, types.ErrNotReady
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, types.ErrNotReady
	}
	return s.db, nil
}
