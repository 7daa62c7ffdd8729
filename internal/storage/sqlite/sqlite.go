// Package sqlite provides a SQLite-backed implementation of storage.Store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store.
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	hub *storage.ExpenseHub
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, hub: storage.NewExpenseHub()}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SubscribeExpenses delivers the current snapshot immediately, then one
// snapshot per expense write to the group.
func (s *SQLiteStore) SubscribeExpenses(ctx context.Context, groupID string) (<-chan []*models.GroupExpense, storage.CancelFunc, error) {
	snapshot, err := s.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	ch, cancel := s.hub.Subscribe(groupID)
	s.hub.Push(ch, groupID, snapshot)

	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, nil
}

// publishExpenses pushes a fresh snapshot to the group's subscribers after
// an expense write. Failures to rebuild the snapshot are not surfaced to
// the writer; the write itself already committed.
func (s *SQLiteStore) publishExpenses(ctx context.Context, groupID string) {
	snapshot, err := s.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return
	}
	s.hub.Publish(groupID, snapshot)
}
