package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pos/internal/domain"
	"pos/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, order_id, amount, currency, method, status, COALESCE(phone_number, ''), COALESCE(tracking_id, ''), COALESCE(confirmation_code, ''), COALESCE(reference_number, ''), processed_by, location_id, created_at, updated_at`

// Create persists a new payment attempt.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, amount, currency, method, status, phone_number, tracking_id, confirmation_code, reference_number, processed_by, location_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.Status,
		payment.PhoneNumber,
		payment.TrackingID,
		payment.ConfirmationCode,
		payment.ReferenceNumber,
		payment.ProcessedBy,
		payment.LocationID,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := r.scanRow(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return payment, nil
}

// GetByTrackingID retrieves a payment by gateway tracking ID.
// Returns nil if no payment carries the given tracking ID.
func (r *PaymentRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE tracking_id = $1`

	payment, err := r.scanRow(r.q.QueryRowContext(ctx, query, trackingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return payment, nil
}

// GetByOrderID retrieves all payment attempts for an order, most recent first.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// UpdateStatus updates the status of a payment, setting the
// confirmation code when one is given.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, confirmationCode string) error {
	var (
		result sql.Result
		err    error
	)

	if confirmationCode != "" {
		query := `UPDATE payments SET status = $1, confirmation_code = $2, updated_at = $3 WHERE id = $4`
		result, err = r.q.ExecContext(ctx, query, status, confirmationCode, time.Now(), id)
	} else {
		query := `UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3`
		result, err = r.q.ExecContext(ctx, query, status, time.Now(), id)
	}
	if err != nil {
		return err
	}

	return checkAffected(result)
}

// SetTrackingID stores the gateway tracking ID on a payment.
func (r *PaymentRepository) SetTrackingID(ctx context.Context, id string, trackingID string) error {
	query := `UPDATE payments SET tracking_id = $1, updated_at = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, trackingID, time.Now(), id)
	if err != nil {
		return err
	}

	return checkAffected(result)
}

// ListStalePending returns pending mobile-money payments older than
// the given age. Only gateway-routed payments (those with a tracking
// id) are swept; pending card payments resolve out-of-band.
func (r *PaymentRepository) ListStalePending(ctx context.Context, olderThanSeconds int, limit int) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = $1
		  AND tracking_id IS NOT NULL
		  AND created_at < NOW() - make_interval(secs => $2)
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.q.QueryContext(ctx, query, domain.PaymentStatusPending, olderThanSeconds, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

func (r *PaymentRepository) scanRow(row *sql.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.Amount,
		&p.Currency,
		&p.Method,
		&p.Status,
		&p.PhoneNumber,
		&p.TrackingID,
		&p.ConfirmationCode,
		&p.ReferenceNumber,
		&p.ProcessedBy,
		&p.LocationID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) scanRows(rows *sql.Rows) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(
			&p.ID,
			&p.OrderID,
			&p.Amount,
			&p.Currency,
			&p.Method,
			&p.Status,
			&p.PhoneNumber,
			&p.TrackingID,
			&p.ConfirmationCode,
			&p.ReferenceNumber,
			&p.ProcessedBy,
			&p.LocationID,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}
