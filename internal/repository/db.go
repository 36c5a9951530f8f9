// Package repository implements data access over PostgreSQL. Ownership is
// enforced in SQL: every read or write is scoped by the owning user, either
// directly or through a join on the parent trip.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// it as well.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrNotFound is returned when a query scoped to the requesting user matches
// no rows. Absent and unowned rows are indistinguishable on purpose.
var ErrNotFound = errors.New("not found")

// ErrEmptyUpdate is returned when an update carries no fields.
var ErrEmptyUpdate = errors.New("no fields to update")
