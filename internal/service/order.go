package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"pos/internal/domain"
	"pos/internal/repository"
)

// VATRate is the Ugandan standard VAT rate applied to the subtotal.
const VATRate = 0.18

// OrderService handles the order ledger: cart submission and reads.
type OrderService struct {
	tx        repository.TxRunner
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(tx repository.TxRunner, orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{
		tx:        tx,
		orderRepo: orderRepo,
	}
}

// CartItem is one line of a submitted cart.
type CartItem struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
}

// SubmitOrderRequest contains the parameters for submitting a cart.
type SubmitOrderRequest struct {
	LocationID string
	TableID    string
	Items      []CartItem
}

// SubmitOrder creates an order with its line items from a cart. The
// order and its items are written in one transaction.
func (s *OrderService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.LocationID) == "" {
		return nil, fmt.Errorf("%w: location_id", ErrMissingField)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	orderID := uuid.New().String()

	var subtotal float64
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: item %s", ErrInvalidAmount, item.ProductID)
		}
		subtotal += float64(item.Quantity) * item.UnitPrice
		items = append(items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	tax := roundMoney(subtotal * VATRate)

	order := &domain.Order{
		ID:            orderID,
		LocationID:    req.LocationID,
		TableID:       req.TableID,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   subtotal + tax,
		Status:        domain.OrderStatusSubmitted,
		PaymentStatus: domain.OrderPaymentStatusUnpaid,
		Items:         items,
		CreatedAt:     time.Now(),
	}

	err := s.tx.RunInTx(ctx, func(orders repository.OrderRepository, _ repository.PaymentRepository) error {
		return orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrder retrieves an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// roundMoney rounds to two decimal places.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
