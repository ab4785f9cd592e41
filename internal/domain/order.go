package domain

import "time"

// OrderStatus represents the current status of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderPaymentStatus represents the payment state of an order.
type OrderPaymentStatus string

const (
	OrderPaymentStatusUnpaid  OrderPaymentStatus = "unpaid"
	OrderPaymentStatusPending OrderPaymentStatus = "pending"
	OrderPaymentStatusPaid    OrderPaymentStatus = "paid"
)

// OrderItem represents one line item on an order.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
}

// Order represents a customer order. Orders are never deleted,
// only status-transitioned.
type Order struct {
	ID            string
	LocationID    string
	TableID       string // empty for takeaway / counter orders
	Subtotal      float64
	TaxAmount     float64
	TotalAmount   float64
	Status        OrderStatus
	PaymentStatus OrderPaymentStatus
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
