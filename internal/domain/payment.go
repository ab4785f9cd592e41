package domain

import "time"

// PaymentStatus represents the current status of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentMethod represents how an order is paid.
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodCardPOS     PaymentMethod = "card_pos"
	PaymentMethodAirtelMoney PaymentMethod = "airtel_money"
	PaymentMethodMTNMomo     PaymentMethod = "mtn_momo"
)

// IsMobileMoney reports whether the method is routed through the
// mobile-money gateway.
func (m PaymentMethod) IsMobileMoney() bool {
	return m == PaymentMethodAirtelMoney || m == PaymentMethodMTNMomo
}

// Valid reports whether the method is one of the supported methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCardPOS, PaymentMethodAirtelMoney, PaymentMethodMTNMomo:
		return true
	}
	return false
}

// Payment is the append-only record of one payment attempt against an
// order. A failed payment is never reused; a fresh attempt creates a
// new record. At most one payment per order may reach completed.
type Payment struct {
	ID               string
	OrderID          string
	Amount           float64
	Currency         string
	Method           PaymentMethod
	Status           PaymentStatus
	PhoneNumber      string // canonical +256 form, mobile money only
	TrackingID       string // gateway transaction reference, mobile money only
	ConfirmationCode string
	ReferenceNumber  string
	ProcessedBy      string // staff identifier
	LocationID       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Terminal reports whether the payment has reached a terminal state.
func (p *Payment) Terminal() bool {
	return p.Status == PaymentStatusCompleted ||
		p.Status == PaymentStatusFailed ||
		p.Status == PaymentStatusRefunded
}

// Receipt represents a printable receipt for a paid order.
type Receipt struct {
	ID               string
	OrderID          string
	PaymentID        string
	LocationID       string
	TableID          string
	Items            []OrderItem
	Subtotal         float64
	TaxAmount        float64
	TotalAmount      float64
	Method           PaymentMethod
	ConfirmationCode string
	ProcessedBy      string
	PaidAt           time.Time
	CreatedAt        time.Time
}
