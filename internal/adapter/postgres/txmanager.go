package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxManager opens transactions and hands them to callbacks through the
// context, so repositories pick them up via QuerierFromCtx without any
// Tx plumbing in their signatures. Nesting is not supported: a RunInTx
// inside a RunInTx callback opens a second, unrelated transaction.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager wraps pool for transactional use.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// RunInTx runs fn inside a transaction at the PostgreSQL default
// isolation level (Read Committed). The transaction commits when fn
// returns nil, rolls back when fn returns an error, and rolls back
// before re-panicking when fn panics.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
