package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"pos/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationPaymentCompleted NotificationType = "PAYMENT_COMPLETED"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationOrderPaid        NotificationType = "ORDER_PAID"
	NotificationReceiptReady     NotificationType = "RECEIPT_READY"
)

// Notification represents a notification to be delivered to a POS
// terminal or kitchen display.
type Notification struct {
	Type        NotificationType
	RecipientID string // location or staff identifier
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery.
type NotificationService struct {
	// In a real system, this would push over the POS websocket
	// channel and to the kitchen display. Log-backed here.
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyPaymentCompleted notifies the terminal that a payment succeeded.
func (s *NotificationService) NotifyPaymentCompleted(ctx context.Context, payment *domain.Payment) error {
	notification := Notification{
		Type:        NotificationPaymentCompleted,
		RecipientID: payment.LocationID,
		Title:       "Payment Successful",
		Message:     fmt.Sprintf("Payment of %.0f %s received via %s", payment.Amount, payment.Currency, payment.Method),
		Data: map[string]interface{}{
			"payment_id":        payment.ID,
			"order_id":          payment.OrderID,
			"amount":            payment.Amount,
			"confirmation_code": payment.ConfirmationCode,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyPaymentFailed notifies the terminal that a payment failed.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, payment *domain.Payment, reason string) error {
	notification := Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: payment.LocationID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of %.0f %s via %s failed: %s", payment.Amount, payment.Currency, payment.Method, reason),
		Data: map[string]interface{}{
			"payment_id": payment.ID,
			"order_id":   payment.OrderID,
			"amount":     payment.Amount,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// NotifyReceiptReady notifies the terminal that a receipt can be printed.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *domain.Receipt) error {
	notification := Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.LocationID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Receipt for order %s is ready (%.0f total)", receipt.OrderID, receipt.TotalAmount),
		Data: map[string]interface{}{
			"receipt_id": receipt.ID,
			"order_id":   receipt.OrderID,
			"total":      receipt.TotalAmount,
		},
		CreatedAt: time.Now(),
	}
	return s.send(ctx, notification)
}

// send delivers a notification (log-backed implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)
	return nil
}
