package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"writersuite/internal/domain/repositories"
)

// Transactor runs workspace mutations in pool transactions
type Transactor struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactor creates a transactor over pool
func NewTransactor(pool *pgxpool.Pool, logger *slog.Logger) *Transactor {
	return &Transactor{pool: pool, logger: logger}
}

// InTx runs fn in a new transaction, or in a savepoint of the transaction
// already carried by ctx. fn's error rolls back only its own level.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	var (
		tx  pgx.Tx
		err error
	)
	if outer, ok := repositories.TxFromContext(ctx); ok {
		tx, err = outer.Begin(ctx)
	} else {
		tx, err = t.pool.Begin(ctx)
	}
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			t.logger.Warn("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.ContextWithTx(ctx, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// querier returns the transaction carried by ctx, or pool outside one
func querier(ctx context.Context, pool *pgxpool.Pool) repositories.Querier {
	if tx, ok := repositories.TxFromContext(ctx); ok {
		return tx
	}
	return pool
}
