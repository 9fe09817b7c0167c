package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of *sql.DB and *sql.Tx used by repositories.
// Repositories resolve it per call via QuerierFrom so the same repository
// value works inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Transactor runs functions inside a database transaction carried on the
// context. Every role transition and every account-deletion cascade runs as
// one transaction: either all of its mutations commit, or none do.
type Transactor struct {
	db *sql.DB
}

// NewTransactor returns a Transactor over the given database handle.
func NewTransactor(conn *sql.DB) *Transactor {
	return &Transactor{db: conn}
}

// InTx runs fn within a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise. If the context already carries a
// transaction, fn joins it and commit/rollback is left to the outer call.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// QuerierFrom returns the transaction carried on ctx, or fallback when the
// context has none.
func QuerierFrom(ctx context.Context, fallback Querier) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return fallback
}
