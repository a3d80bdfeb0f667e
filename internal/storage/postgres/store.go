// Package postgres stores proxy records in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/R3E-Network/nft_layer/internal/storage"
)

// Store implements storage.Store on the nft_proxies table.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// New wraps an existing database handle. driverName is the name the handle
// was opened with, normally "postgres".
func New(db *sql.DB, driverName string) *Store {
	return &Store{db: sqlx.NewDb(db, driverName)}
}

// Open connects using lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for migrations.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, address string) (storage.Record, error) {
	var rec storage.Record
	err := s.db.GetContext(ctx, &rec, `
		SELECT address, implementation, state, created_at, updated_at
		FROM nft_proxies
		WHERE address = $1
	`, address)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Record{}, fmt.Errorf("load proxy %s: %w", address, err)
	}
	return rec, nil
}

// Save upserts the record and, when the implementation pointer changes,
// appends to the upgrade history in the same transaction.
func (s *Store) Save(ctx context.Context, rec storage.Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previous sql.NullString
	err = tx.GetContext(ctx, &previous, `
		SELECT implementation FROM nft_proxies WHERE address = $1 FOR UPDATE
	`, rec.Address)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lock proxy %s: %w", rec.Address, err)
	}

	// jsonb parameters must be sent as text; lib/pq encodes []byte as bytea.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO nft_proxies (address, implementation, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE
		SET implementation = EXCLUDED.implementation,
		    state = EXCLUDED.state,
		    updated_at = EXCLUDED.updated_at
	`, rec.Address, rec.Implementation, string(rec.State), rec.CreatedAt, now); err != nil {
		return fmt.Errorf("save proxy %s: %w", rec.Address, err)
	}

	if previous.String != rec.Implementation {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO nft_proxy_upgrades (address, implementation, upgraded_at)
			VALUES ($1, $2, $3)
		`, rec.Address, rec.Implementation, now); err != nil {
			return fmt.Errorf("record implementation %s: %w", rec.Address, err)
		}
	}

	return tx.Commit()
}

func (s *Store) List(ctx context.Context) ([]storage.Record, error) {
	var out []storage.Record
	if err := s.db.SelectContext(ctx, &out, `
		SELECT address, implementation, state, created_at, updated_at
		FROM nft_proxies
		ORDER BY created_at, address
	`); err != nil {
		return nil, fmt.Errorf("list proxies: %w", err)
	}
	return out, nil
}

// Implementations returns the implementation history of a proxy, oldest first.
func (s *Store) Implementations(ctx context.Context, address string) ([]string, error) {
	var out []string
	if err := s.db.SelectContext(ctx, &out, `
		SELECT implementation FROM nft_proxy_upgrades
		WHERE address = $1
		ORDER BY id
	`, address); err != nil {
		return nil, fmt.Errorf("list implementations %s: %w", address, err)
	}
	return out, nil
}
