// Package repository implements the PostgreSQL-backed stores for
// accounts, payments and subscriptions. Every method takes a context,
// wraps failures with its operation name and maps "no rows" onto the
// package sentinel errors so the service layer never sees sql
// internals.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Registers the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Sentinel errors surfaced to the service layer.
var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already in use")
)

// Storage encapsulates the PostgreSQL connection and implements the
// account, payment and subscription repositories.
type Storage struct {
	DB *sql.DB
}

// New opens the PostgreSQL connection and verifies it with a ping.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}
