package repository

import "context"

// TxRunner runs a function with order and payment repositories bound
// to a single transaction. Order and payment state must transition
// atomically, so every multi-write flow goes through this.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(orders OrderRepository, payments PaymentRepository) error) error
}
