package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pos/internal/domain"
	"pos/internal/gateway"
	"pos/internal/phone"
	internalRedis "pos/internal/redis"
	"pos/internal/repository"
)

// initiationLockTTL bounds how long the per-order payment lock can be
// held. Long enough to cover the gateway call's worst case, short
// enough that a crashed request does not wedge the order.
const initiationLockTTL = 90 * time.Second

// PaymentService orchestrates payment initiation. Each method gets a
// straight-line flow: cash completes immediately, card waits for the
// terminal, mobile money goes through the gateway and stays pending
// until reconciled.
type PaymentService struct {
	tx          repository.TxRunner
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	gw          gateway.Gateway
	locks       internalRedis.LockStoreInterface
	cache       internalRedis.CacheStoreInterface
	notifier    *NotificationService
	currency    string
	callbackURL string
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	tx repository.TxRunner,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	gw gateway.Gateway,
	locks internalRedis.LockStoreInterface,
	cache internalRedis.CacheStoreInterface,
	notifier *NotificationService,
	currency string,
	callbackURL string,
) *PaymentService {
	return &PaymentService{
		tx:          tx,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gw:          gw,
		locks:       locks,
		cache:       cache,
		notifier:    notifier,
		currency:    currency,
		callbackURL: callbackURL,
	}
}

// InitiatePaymentRequest contains the parameters for initiating a payment.
type InitiatePaymentRequest struct {
	OrderID     string
	Amount      float64
	Method      domain.PaymentMethod
	PhoneNumber string // required for mobile money
	ProcessedBy string
	LocationID  string
}

// InitiatePaymentResult is returned on successful initiation.
type InitiatePaymentResult struct {
	Payment *domain.Payment
	Message string
}

// InitiatePayment validates the request, creates a payment attempt for
// the order, and dispatches on the payment method.
func (s *PaymentService) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	// Validate and normalize the phone before touching any state. A
	// bad number must not leave a payment row behind.
	canonicalPhone := ""
	if req.Method.IsMobileMoney() {
		var err error
		canonicalPhone, err = phone.NormalizeForMethod(req.PhoneNumber, req.Method)
		if err != nil {
			return nil, mapPhoneError(err)
		}
	}

	// Serialize initiations per order. Two concurrent attempts must
	// not both create pending payment rows.
	acquired, err := s.locks.AcquireOrderPaymentLock(ctx, req.OrderID, initiationLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrPaymentInProgress
	}
	defer func() {
		_ = s.locks.ReleaseOrderPaymentLock(context.WithoutCancel(ctx), req.OrderID)
	}()

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.PaymentStatus == domain.OrderPaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	payment := &domain.Payment{
		ID:              uuid.New().String(),
		OrderID:         order.ID,
		Amount:          req.Amount,
		Currency:        s.currency,
		Method:          req.Method,
		Status:          domain.PaymentStatusPending,
		PhoneNumber:     canonicalPhone,
		ReferenceNumber: newReferenceNumber(),
		ProcessedBy:     req.ProcessedBy,
		LocationID:      req.LocationID,
		CreatedAt:       time.Now(),
	}

	switch req.Method {
	case domain.PaymentMethodCash:
		return s.initiateCash(ctx, order, payment)
	case domain.PaymentMethodCardPOS:
		return s.initiateCard(ctx, order, payment)
	case domain.PaymentMethodAirtelMoney, domain.PaymentMethodMTNMomo:
		return s.initiateMobileMoney(ctx, order, payment)
	default:
		return nil, ErrInvalidMethod
	}
}

// initiateCash records the payment as completed and marks the order
// paid, all in one transaction. No external confirmation is needed.
func (s *PaymentService) initiateCash(ctx context.Context, order *domain.Order, payment *domain.Payment) (*InitiatePaymentResult, error) {
	payment.Status = domain.PaymentStatusCompleted
	payment.ConfirmationCode = newConfirmationCode()

	err := s.tx.RunInTx(ctx, func(orders repository.OrderRepository, payments repository.PaymentRepository) error {
		if err := payments.Create(ctx, payment); err != nil {
			return err
		}
		return orders.UpdatePaymentStatus(ctx, order.ID, domain.OrderPaymentStatusPaid, domain.OrderStatusConfirmed)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyPaymentCompleted(ctx, payment)
	}

	return &InitiatePaymentResult{
		Payment: payment,
		Message: "Cash payment recorded",
	}, nil
}

// initiateCard records a pending payment; the card terminal confirms
// out-of-band and the payment is resolved through the reconciler.
func (s *PaymentService) initiateCard(ctx context.Context, order *domain.Order, payment *domain.Payment) (*InitiatePaymentResult, error) {
	err := s.tx.RunInTx(ctx, func(orders repository.OrderRepository, payments repository.PaymentRepository) error {
		if err := payments.Create(ctx, payment); err != nil {
			return err
		}
		return orders.UpdatePaymentStatus(ctx, order.ID, domain.OrderPaymentStatusPending, "")
	})
	if err != nil {
		return nil, err
	}

	return &InitiatePaymentResult{
		Payment: payment,
		Message: "Awaiting card terminal confirmation",
	}, nil
}

// initiateMobileMoney records a pending payment, then asks the gateway
// to push a payment prompt to the customer's phone. The gateway call
// happens after the transaction commits: if it fails, the payment row
// is rolled to failed and the order is left pending for follow-up.
func (s *PaymentService) initiateMobileMoney(ctx context.Context, order *domain.Order, payment *domain.Payment) (*InitiatePaymentResult, error) {
	err := s.tx.RunInTx(ctx, func(orders repository.OrderRepository, payments repository.PaymentRepository) error {
		if err := payments.Create(ctx, payment); err != nil {
			return err
		}
		return orders.UpdatePaymentStatus(ctx, order.ID, domain.OrderPaymentStatusPending, "")
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.gw.RequestToPay(ctx, gateway.PushRequest{
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		PhoneNumber: payment.PhoneNumber,
		Description: fmt.Sprintf("Order %s", shortID(order.ID)),
		Reference:   payment.ID,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		// Roll the attempt to failed rather than deleting it; the
		// order stays pending for manual follow-up.
		_ = s.paymentRepo.UpdateStatus(context.WithoutCancel(ctx), payment.ID, domain.PaymentStatusFailed, "")
		if s.notifier != nil {
			_ = s.notifier.NotifyPaymentFailed(ctx, payment, err.Error())
		}
		return nil, fmt.Errorf("%w: %v", ErrGatewayError, err)
	}

	if err := s.paymentRepo.SetTrackingID(ctx, payment.ID, resp.TrackingID); err != nil {
		return nil, err
	}
	payment.TrackingID = resp.TrackingID

	return &InitiatePaymentResult{
		Payment: payment,
		Message: "Payment prompt sent to " + payment.PhoneNumber,
	}, nil
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// GetPaymentsForOrder retrieves all payment attempts for an order.
func (s *PaymentService) GetPaymentsForOrder(ctx context.Context, orderID string) ([]*domain.Payment, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	return s.paymentRepo.GetByOrderID(ctx, orderID)
}

// RefundPayment transitions a completed payment to refunded. Manual
// action; the order record is left untouched.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != domain.PaymentStatusCompleted {
		return nil, ErrNotRefundable
	}

	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusRefunded, ""); err != nil {
		return nil, err
	}
	payment.Status = domain.PaymentStatusRefunded

	if s.cache != nil {
		_ = s.cache.InvalidatePaymentStatus(ctx, payment.ID)
	}

	return payment, nil
}

// validate checks required fields and basic value constraints.
func (s *PaymentService) validate(req InitiatePaymentRequest) error {
	if strings.TrimSpace(req.OrderID) == "" {
		return fmt.Errorf("%w: order_id", ErrMissingField)
	}
	if strings.TrimSpace(req.ProcessedBy) == "" {
		return fmt.Errorf("%w: processed_by", ErrMissingField)
	}
	if strings.TrimSpace(req.LocationID) == "" {
		return fmt.Errorf("%w: location_id", ErrMissingField)
	}
	if req.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return ErrInvalidMethod
	}
	if req.Method.IsMobileMoney() && strings.TrimSpace(req.PhoneNumber) == "" {
		return fmt.Errorf("%w: phone_number", ErrMissingField)
	}
	return nil
}

// mapPhoneError translates phone package errors into service errors.
func mapPhoneError(err error) error {
	switch err {
	case phone.ErrInvalidFormat:
		return ErrInvalidPhoneFormat
	case phone.ErrOperatorMismatch:
		return ErrMethodPhoneMismatch
	}
	return err
}

// newConfirmationCode generates a short human-readable confirmation code.
func newConfirmationCode() string {
	return "POS-" + strings.ToUpper(uuid.New().String()[:8])
}

// newReferenceNumber generates the receipt reference for an attempt.
func newReferenceNumber() string {
	return time.Now().Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:6])
}

// shortID returns the first segment of a UUID for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
