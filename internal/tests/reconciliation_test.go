package tests

import (
	"context"
	"testing"
	"time"

	"pos/internal/domain"
	"pos/internal/gateway"
	"pos/internal/service"
)

// ──────────────────────────────────────────────
// STATUS RECONCILIATION
// ──────────────────────────────────────────────

// reconcilerFixture bundles the reconciler with its mocks. Poll
// intervals are shrunk so bounded loops finish in milliseconds.
type reconcilerFixture struct {
	orders   *MockOrderRepository
	payments *MockPaymentRepository
	gw       *MockGateway
	svc      *service.ReconcilerService
}

func newReconcilerFixture(maxAttempts int) *reconcilerFixture {
	orders := NewMockOrderRepository()
	payments := NewMockPaymentRepository()
	tx := NewMockTxRunner(orders, payments)
	gw := NewMockGateway()

	svc := service.NewReconcilerService(
		tx, orders, payments, gw, nil,
		service.NewNotificationService(),
		service.ReconcilerConfig{
			PollInterval:    time.Millisecond,
			MaxPollAttempts: maxAttempts,
			SweepInterval:   time.Millisecond,
			StaleAfter:      0,
			SweepBatchSize:  10,
		},
	)

	return &reconcilerFixture{
		orders:   orders,
		payments: payments,
		gw:       gw,
		svc:      svc,
	}
}

func (f *reconcilerFixture) addPendingPayment(paymentID, orderID, trackingID string) {
	f.orders.AddOrder(&domain.Order{
		ID:            orderID,
		LocationID:    "loc-1",
		Status:        domain.OrderStatusSubmitted,
		PaymentStatus: domain.OrderPaymentStatusPending,
		CreatedAt:     time.Now(),
	})
	f.payments.AddPayment(&domain.Payment{
		ID:          paymentID,
		OrderID:     orderID,
		Amount:      20000,
		Currency:    "UGX",
		Method:      domain.PaymentMethodMTNMomo,
		Status:      domain.PaymentStatusPending,
		PhoneNumber: "+256771234567",
		TrackingID:  trackingID,
		CreatedAt:   time.Now().Add(-5 * time.Minute),
	})
}

func TestPollUntilTerminal_CompletedMarksOrderPaid(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")
	f.gw.StatusScript = []gateway.TransactionState{
		gateway.StatePending,
		gateway.StatePending,
		gateway.StateCompleted,
	}

	outcome, payment, err := f.svc.PollUntilTerminal(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != service.PollOutcomeCompleted {
		t.Fatalf("expected completed outcome, got %s", outcome)
	}
	if payment.ConfirmationCode == "" {
		t.Error("expected confirmation code on completed payment")
	}

	order := f.orders.GetOrder("order-1")
	if order.PaymentStatus != domain.OrderPaymentStatusPaid {
		t.Errorf("expected order paid, got %s", order.PaymentStatus)
	}
	if order.Status != domain.OrderStatusConfirmed {
		t.Errorf("expected order confirmed, got %s", order.Status)
	}
}

func TestPollUntilTerminal_FailureResolvesEarly(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")
	f.gw.StatusScript = []gateway.TransactionState{
		gateway.StatePending,
		gateway.StatePending,
		gateway.StateFailed,
	}

	outcome, payment, err := f.svc.PollUntilTerminal(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != service.PollOutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", outcome)
	}
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected payment failed, got %s", payment.Status)
	}

	// Resolved on the third status check, well under the budget.
	if f.gw.StatusCallCount != 3 {
		t.Errorf("expected 3 status calls, got %d", f.gw.StatusCallCount)
	}

	stored := f.payments.GetPayment("pay-1")
	if stored.Status != domain.PaymentStatusFailed {
		t.Errorf("expected stored payment failed, got %s", stored.Status)
	}
}

func TestPollUntilTerminal_BudgetExhaustedIsTimeout(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(5)
	f.addPendingPayment("pay-1", "order-1", "trk-1")
	// Gateway never resolves.
	f.gw.StatusScript = []gateway.TransactionState{gateway.StatePending}

	outcome, payment, err := f.svc.PollUntilTerminal(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != service.PollOutcomeTimeout {
		t.Fatalf("expected timeout outcome, got %s", outcome)
	}

	// Timeout is not failure: the row stays pending for the sweep.
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected payment still pending, got %s", payment.Status)
	}
	if f.gw.StatusCallCount != 5 {
		t.Errorf("expected 5 status calls, got %d", f.gw.StatusCallCount)
	}
}

func TestPollUntilTerminal_Bounded(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(10)
	f.addPendingPayment("pay-1", "order-1", "trk-1")

	start := time.Now()
	outcome, _, err := f.svc.PollUntilTerminal(context.Background(), "pay-1")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != service.PollOutcomeTimeout {
		t.Fatalf("expected timeout, got %s", outcome)
	}

	// 10 attempts at 1ms intervals must resolve far below a second.
	if elapsed > time.Second {
		t.Errorf("polling took %v, expected bounded resolution", elapsed)
	}
}

func TestApplyGatewayStatus_WebhookCompletes(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")

	payment, err := f.svc.ApplyGatewayStatus(context.Background(), "trk-1", gateway.StateCompleted, "approved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected completed, got %s", payment.Status)
	}

	order := f.orders.GetOrder("order-1")
	if order.PaymentStatus != domain.OrderPaymentStatusPaid {
		t.Errorf("expected order paid, got %s", order.PaymentStatus)
	}
}

func TestApplyGatewayStatus_Idempotent(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")

	first, err := f.svc.ApplyGatewayStatus(context.Background(), "trk-1", gateway.StateCompleted, "approved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Providers retry callbacks; a repeat must be a no-op.
	second, err := f.svc.ApplyGatewayStatus(context.Background(), "trk-1", gateway.StateCompleted, "approved")
	if err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}

	if first.ConfirmationCode != second.ConfirmationCode {
		t.Error("repeated webhook changed the confirmation code")
	}
	if f.payments.GetPayment("pay-1").Status != domain.PaymentStatusCompleted {
		t.Error("payment no longer completed after repeated webhook")
	}
}

func TestApplyGatewayStatus_FailureRevertsOrderToUnpaid(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")

	payment, err := f.svc.ApplyGatewayStatus(context.Background(), "trk-1", gateway.StateFailed, "insufficient funds")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected failed, got %s", payment.Status)
	}

	// No other live attempt exists, so the order returns to unpaid.
	order := f.orders.GetOrder("order-1")
	if order.PaymentStatus != domain.OrderPaymentStatusUnpaid {
		t.Errorf("expected order unpaid, got %s", order.PaymentStatus)
	}
}

func TestApplyGatewayStatus_FailureKeepsOrderPendingWithOtherAttempt(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")
	f.payments.AddPayment(&domain.Payment{
		ID:         "pay-2",
		OrderID:    "order-1",
		Amount:     20000,
		Method:     domain.PaymentMethodMTNMomo,
		Status:     domain.PaymentStatusPending,
		TrackingID: "trk-2",
		CreatedAt:  time.Now(),
	})

	if _, err := f.svc.ApplyGatewayStatus(context.Background(), "trk-1", gateway.StateFailed, "expired"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// pay-2 is still live, so the order must stay pending.
	order := f.orders.GetOrder("order-1")
	if order.PaymentStatus != domain.OrderPaymentStatusPending {
		t.Errorf("expected order pending, got %s", order.PaymentStatus)
	}
}

func TestCheckPayment_SkipsNonGatewayPayments(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.orders.AddOrder(&domain.Order{
		ID:            "order-1",
		PaymentStatus: domain.OrderPaymentStatusPending,
	})
	f.payments.AddPayment(&domain.Payment{
		ID:      "pay-card",
		OrderID: "order-1",
		Method:  domain.PaymentMethodCardPOS,
		Status:  domain.PaymentStatusPending,
	})

	payment, err := f.svc.CheckPayment(context.Background(), "pay-card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected pending, got %s", payment.Status)
	}
	if f.gw.StatusCallCount != 0 {
		t.Error("card payments must not be queried against the gateway")
	}
}

func TestCheckPayment_GatewayErrorLeavesPending(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")
	f.gw.StatusError = context.DeadlineExceeded

	payment, err := f.svc.CheckPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected pending while gateway is unreachable, got %s", payment.Status)
	}
}

func TestSweep_ResolvesStalePendingPayment(t *testing.T) {
	t.Parallel()

	f := newReconcilerFixture(60)
	f.addPendingPayment("pay-1", "order-1", "trk-1")
	f.gw.StatusScript = []gateway.TransactionState{gateway.StateCompleted}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	f.svc.Run(ctx)

	stored := f.payments.GetPayment("pay-1")
	if stored.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected sweep to complete the payment, got %s", stored.Status)
	}

	order := f.orders.GetOrder("order-1")
	if order.PaymentStatus != domain.OrderPaymentStatusPaid {
		t.Errorf("expected order paid after sweep, got %s", order.PaymentStatus)
	}
}
