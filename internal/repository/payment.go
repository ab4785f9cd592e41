package repository

import (
	"context"

	"pos/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment attempt.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByTrackingID retrieves a payment by its gateway tracking ID.
	// Returns nil if no payment carries the given tracking ID.
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.Payment, error)

	// GetByOrderID retrieves all payment attempts for an order,
	// most recent first.
	GetByOrderID(ctx context.Context, orderID string) ([]*domain.Payment, error)

	// UpdateStatus updates the status of a payment, optionally setting
	// a confirmation code when the payment completes.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, confirmationCode string) error

	// SetTrackingID stores the gateway tracking ID on a payment.
	SetTrackingID(ctx context.Context, id string, trackingID string) error

	// ListStalePending returns pending mobile-money payments (those
	// with a tracking ID) older than the given age, capped at limit.
	ListStalePending(ctx context.Context, olderThanSeconds int, limit int) ([]*domain.Payment, error)
}
