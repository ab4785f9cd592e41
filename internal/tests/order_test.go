package tests

import (
	"context"
	"errors"
	"math"
	"testing"

	"pos/internal/domain"
	"pos/internal/service"
)

// ──────────────────────────────────────────────
// ORDER LEDGER
// ──────────────────────────────────────────────

func newOrderService() (*service.OrderService, *MockOrderRepository) {
	orders := NewMockOrderRepository()
	payments := NewMockPaymentRepository()
	tx := NewMockTxRunner(orders, payments)
	return service.NewOrderService(tx, orders), orders
}

func TestSubmitOrder_ComputesTotalsWithVAT(t *testing.T) {
	t.Parallel()

	svc, orders := newOrderService()

	order, err := svc.SubmitOrder(context.Background(), service.SubmitOrderRequest{
		LocationID: "loc-1",
		TableID:    "table-4",
		Items: []service.CartItem{
			{ProductID: "prod-1", Name: "Chicken Pilau", Quantity: 2, UnitPrice: 15000},
			{ProductID: "prod-2", Name: "Passion Juice", Quantity: 1, UnitPrice: 5000},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.Subtotal != 35000 {
		t.Errorf("expected subtotal 35000, got %.2f", order.Subtotal)
	}
	wantTax := 35000 * service.VATRate
	if math.Abs(order.TaxAmount-wantTax) > 0.01 {
		t.Errorf("expected tax %.2f, got %.2f", wantTax, order.TaxAmount)
	}
	if math.Abs(order.TotalAmount-(35000+wantTax)) > 0.01 {
		t.Errorf("expected total %.2f, got %.2f", 35000+wantTax, order.TotalAmount)
	}

	if order.Status != domain.OrderStatusSubmitted {
		t.Errorf("expected status submitted, got %s", order.Status)
	}
	if order.PaymentStatus != domain.OrderPaymentStatusUnpaid {
		t.Errorf("expected payment_status unpaid, got %s", order.PaymentStatus)
	}
	if len(order.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(order.Items))
	}

	if orders.GetOrder(order.ID) == nil {
		t.Error("order not persisted")
	}
}

func TestSubmitOrder_EmptyCartRejected(t *testing.T) {
	t.Parallel()

	svc, _ := newOrderService()

	_, err := svc.SubmitOrder(context.Background(), service.SubmitOrderRequest{
		LocationID: "loc-1",
	})
	if !errors.Is(err, service.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestSubmitOrder_MissingLocationRejected(t *testing.T) {
	t.Parallel()

	svc, _ := newOrderService()

	_, err := svc.SubmitOrder(context.Background(), service.SubmitOrderRequest{
		Items: []service.CartItem{{ProductID: "prod-1", Name: "Chips", Quantity: 1, UnitPrice: 8000}},
	})
	if !errors.Is(err, service.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}

func TestSubmitOrder_InvalidQuantityRejected(t *testing.T) {
	t.Parallel()

	svc, _ := newOrderService()

	_, err := svc.SubmitOrder(context.Background(), service.SubmitOrderRequest{
		LocationID: "loc-1",
		Items:      []service.CartItem{{ProductID: "prod-1", Name: "Chips", Quantity: 0, UnitPrice: 8000}},
	})
	if !errors.Is(err, service.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newOrderService()

	if _, err := svc.GetOrder(context.Background(), "missing"); !errors.Is(err, service.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────
// RECEIPTS
// ──────────────────────────────────────────────

func TestGenerateReceipt_ForPaidOrder(t *testing.T) {
	t.Parallel()

	receipts := service.NewReceiptService(service.NewNotificationService())

	order := &domain.Order{
		ID:          "order-1",
		LocationID:  "loc-1",
		Subtotal:    35000,
		TaxAmount:   6300,
		TotalAmount: 41300,
		Items: []domain.OrderItem{
			{ProductID: "prod-1", Name: "Chicken Pilau", Quantity: 2, UnitPrice: 15000},
		},
	}
	payment := &domain.Payment{
		ID:               "pay-1",
		OrderID:          "order-1",
		Amount:           41300,
		Method:           domain.PaymentMethodCash,
		Status:           domain.PaymentStatusCompleted,
		ConfirmationCode: "POS-ABC12345",
		ProcessedBy:      "staff-1",
	}

	receipt, err := receipts.GenerateReceipt(context.Background(), service.GenerateReceiptRequest{
		Order:   order,
		Payment: payment,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.TotalAmount != 41300 {
		t.Errorf("expected total 41300, got %.2f", receipt.TotalAmount)
	}
	if receipt.ConfirmationCode != "POS-ABC12345" {
		t.Errorf("unexpected confirmation code %s", receipt.ConfirmationCode)
	}

	printable := receipts.FormatReceipt(receipt)
	if printable == "" {
		t.Error("expected printable receipt")
	}
}

func TestGenerateReceipt_RequiresCompletedPayment(t *testing.T) {
	t.Parallel()

	receipts := service.NewReceiptService(nil)

	_, err := receipts.GenerateReceipt(context.Background(), service.GenerateReceiptRequest{
		Order:   &domain.Order{ID: "order-1"},
		Payment: &domain.Payment{ID: "pay-1", Status: domain.PaymentStatusPending},
	})
	if !errors.Is(err, service.ErrReceiptUnavailable) {
		t.Fatalf("expected ErrReceiptUnavailable, got %v", err)
	}
}
