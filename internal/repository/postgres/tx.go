package postgres

import (
	"context"
	"database/sql"

	"pos/internal/repository"
)

// TxManager is the PostgreSQL implementation of repository.TxRunner.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx begins a transaction, binds transaction-scoped repositories,
// and commits if fn returns nil. Any error rolls the transaction back.
func (m *TxManager) RunInTx(ctx context.Context, fn func(orders repository.OrderRepository, payments repository.PaymentRepository) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(NewOrderRepositoryWithTx(tx), NewPaymentRepositoryWithTx(tx)); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// Ensure interface is satisfied.
var _ repository.TxRunner = (*TxManager)(nil)
