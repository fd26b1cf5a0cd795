// Package repo contains all persistence logic for the gig board service.
// The event collection is stored as one serialized value in a named
// key-value slot; Slot abstracts where that slot lives (Postgres, a file
// on disk, or memory) and EventStore maps it to domain types.
// No business logic lives here.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qalakaar/gigboard/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Slot is a named key-value persistence location.
// Put always replaces the whole value; a reader sees either the previous
// value or the new one, never a mix.
type Slot interface {
	// Get returns the raw value stored under key.
	// Returns domain.ErrNotFound if nothing has been stored under key yet.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error
}

// pgSlot is the Postgres implementation of Slot.
// Each key is one row of the slots table; value is a jsonb column.
type pgSlot struct {
	db db
}

// NewPgSlot constructs a Slot backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPgSlot(db db) Slot {
	return &pgSlot{db: db}
}

// Get reads the value column for key.
func (s *pgSlot) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM slots WHERE key = @key`

	var value []byte
	err := s.db.QueryRow(ctx, q, pgx.NamedArgs{"key": key}).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repo.pgSlot.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.pgSlot.Get: %w", err)
	}
	return value, nil
}

// Put upserts the row for key. A single statement keeps the write atomic.
func (s *pgSlot) Put(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO slots (key, value)
		VALUES (@key, @value)
		ON CONFLICT (key) DO UPDATE
		SET value      = EXCLUDED.value,
		    updated_at = now()`

	_, err := s.db.Exec(ctx, q, pgx.NamedArgs{"key": key, "value": string(value)})
	if err != nil {
		return fmt.Errorf("repo.pgSlot.Put: %w", err)
	}
	return nil
}
