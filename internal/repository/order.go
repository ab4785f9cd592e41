package repository

import (
	"context"

	"pos/internal/domain"
)

// OrderRepository defines the persistence operations for orders.
type OrderRepository interface {
	// Create persists a new order together with its line items.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order (with items) by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetAll retrieves all orders, most recent first, without items.
	GetAll(ctx context.Context) ([]*domain.Order, error)

	// UpdateStatus updates the order's status column.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error

	// UpdatePaymentStatus updates the order's payment_status column,
	// optionally together with a new status.
	UpdatePaymentStatus(ctx context.Context, id string, paymentStatus domain.OrderPaymentStatus, status domain.OrderStatus) error
}
