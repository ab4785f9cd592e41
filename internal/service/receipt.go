package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pos/internal/domain"
)

// ReceiptService handles receipt generation for paid orders.
type ReceiptService struct {
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{
		notificationService: notificationService,
	}
}

// GenerateReceiptRequest contains the parameters for generating a receipt.
type GenerateReceiptRequest struct {
	Order   *domain.Order
	Payment *domain.Payment
}

// GenerateReceipt builds a receipt for a paid order.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, req GenerateReceiptRequest) (*domain.Receipt, error) {
	if req.Order == nil {
		return nil, ErrInvalidOrderID
	}
	if req.Payment == nil || req.Payment.Status != domain.PaymentStatusCompleted {
		return nil, ErrReceiptUnavailable
	}

	receipt := &domain.Receipt{
		ID:               uuid.New().String(),
		OrderID:          req.Order.ID,
		PaymentID:        req.Payment.ID,
		LocationID:       req.Order.LocationID,
		TableID:          req.Order.TableID,
		Items:            req.Order.Items,
		Subtotal:         req.Order.Subtotal,
		TaxAmount:        req.Order.TaxAmount,
		TotalAmount:      req.Order.TotalAmount,
		Method:           req.Payment.Method,
		ConfirmationCode: req.Payment.ConfirmationCode,
		ProcessedBy:      req.Payment.ProcessedBy,
		PaidAt:           req.Payment.UpdatedAt,
		CreatedAt:        time.Now(),
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}

	return receipt, nil
}

// FormatReceipt formats the receipt as a string (for print).
func (s *ReceiptService) FormatReceipt(receipt *domain.Receipt) string {
	lines := `
=====================================
           ORDER RECEIPT
=====================================
Receipt:  ` + receipt.ID + `
Order:    ` + receipt.OrderID + `
Date:     ` + receipt.CreatedAt.Format("Jan 02, 2006 3:04 PM") + `

ITEMS
-------------------------------------
`
	for _, item := range receipt.Items {
		lines += fmt.Sprintf("%-20s x%-3d %10.0f\n", item.Name, item.Quantity, float64(item.Quantity)*item.UnitPrice)
	}

	lines += `-------------------------------------
Subtotal:      ` + fmt.Sprintf("%10.0f", receipt.Subtotal) + `
VAT (18%):     ` + fmt.Sprintf("%10.0f", receipt.TaxAmount) + `
TOTAL:         ` + fmt.Sprintf("%10.0f", receipt.TotalAmount) + `

PAYMENT
-------------------------------------
Method:       ` + string(receipt.Method) + `
Confirmation: ` + receipt.ConfirmationCode + `
Served by:    ` + receipt.ProcessedBy + `

=====================================
      Thank you for dining with us!
=====================================
`
	return lines
}
