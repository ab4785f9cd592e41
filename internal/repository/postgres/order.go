package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pos/internal/domain"
	"pos/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

// Create persists a new order together with its line items.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, location_id, table_id, subtotal, tax_amount, total_amount, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.LocationID,
		order.TableID,
		order.Subtotal,
		order.TaxAmount,
		order.TotalAmount,
		order.Status,
		order.PaymentStatus,
		order.CreatedAt,
	)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range order.Items {
		_, err := r.q.ExecContext(ctx, itemQuery,
			item.ID,
			order.ID,
			item.ProductID,
			item.Name,
			item.Quantity,
			item.UnitPrice,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, location_id, COALESCE(table_id, ''), subtotal, tax_amount, total_amount, status, payment_status, created_at, updated_at
		FROM orders WHERE id = $1
	`

	var order domain.Order
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.LocationID,
		&order.TableID,
		&order.Subtotal,
		&order.TaxAmount,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	itemQuery := `
		SELECT id, order_id, product_id, name, quantity, unit_price
		FROM order_items WHERE order_id = $1
	`

	rows, err := r.q.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &order, nil
}

// GetAll retrieves all orders, most recent first, without items.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT id, location_id, COALESCE(table_id, ''), subtotal, tax_amount, total_amount, status, payment_status, created_at, updated_at
		FROM orders ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID,
			&order.LocationID,
			&order.TableID,
			&order.Subtotal,
			&order.TaxAmount,
			&order.TotalAmount,
			&order.Status,
			&order.PaymentStatus,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	return orders, rows.Err()
}

// UpdateStatus updates the order's status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}

	return checkAffected(result)
}

// UpdatePaymentStatus updates the order's payment_status, and its
// status as well when one is given.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus domain.OrderPaymentStatus, status domain.OrderStatus) error {
	var (
		result sql.Result
		err    error
	)

	if status != "" {
		query := `UPDATE orders SET payment_status = $1, status = $2, updated_at = $3 WHERE id = $4`
		result, err = r.q.ExecContext(ctx, query, paymentStatus, status, time.Now(), id)
	} else {
		query := `UPDATE orders SET payment_status = $1, updated_at = $2 WHERE id = $3`
		result, err = r.q.ExecContext(ctx, query, paymentStatus, time.Now(), id)
	}
	if err != nil {
		return err
	}

	return checkAffected(result)
}

// checkAffected converts a zero-row update into ErrNotFound.
func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
