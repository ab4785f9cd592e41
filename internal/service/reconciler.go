package service

import (
	"context"
	"log"
	"time"

	"pos/internal/domain"
	"pos/internal/gateway"
	internalRedis "pos/internal/redis"
	"pos/internal/repository"
)

// PollOutcome is the result of a bounded reconciliation poll.
type PollOutcome string

const (
	PollOutcomeCompleted PollOutcome = "completed"
	PollOutcomeFailed    PollOutcome = "failed"

	// PollOutcomeTimeout means the poll budget ran out while the
	// gateway still reported pending. The payment row stays pending;
	// the webhook or the sweep resolves it out-of-band.
	PollOutcomeTimeout PollOutcome = "timeout"
)

// ReconcilerConfig tunes the reconciliation loops.
type ReconcilerConfig struct {
	PollInterval    time.Duration // delay between poll attempts
	MaxPollAttempts int           // poll budget per payment
	SweepInterval   time.Duration // delay between stale sweeps
	StaleAfter      time.Duration // pending age before a payment is swept
	SweepBatchSize  int
}

// DefaultReconcilerConfig returns the default reconciler configuration:
// 2s x 60 polling (~2 minutes) and a 30s sweep of payments pending for
// over 3 minutes.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		PollInterval:    2 * time.Second,
		MaxPollAttempts: 60,
		SweepInterval:   30 * time.Second,
		StaleAfter:      3 * time.Minute,
		SweepBatchSize:  50,
	}
}

// ReconcilerService moves pending gateway payments to a terminal state.
// Three paths converge on the same transition logic: the status poll,
// the gateway webhook, and the periodic stale sweep.
type ReconcilerService struct {
	tx          repository.TxRunner
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	gw          gateway.Gateway
	cache       internalRedis.CacheStoreInterface
	notifier    *NotificationService
	cfg         ReconcilerConfig
}

// NewReconcilerService creates a new ReconcilerService.
func NewReconcilerService(
	tx repository.TxRunner,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	gw gateway.Gateway,
	cache internalRedis.CacheStoreInterface,
	notifier *NotificationService,
	cfg ReconcilerConfig,
) *ReconcilerService {
	if cfg.PollInterval <= 0 {
		cfg = DefaultReconcilerConfig()
	}

	return &ReconcilerService{
		tx:          tx,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		gw:          gw,
		cache:       cache,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// CheckPayment queries the gateway once for a pending payment and
// applies any terminal transition. Terminal payments and payments
// without a tracking ID (cash, card) are returned unchanged.
func (s *ReconcilerService) CheckPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Terminal() || payment.TrackingID == "" {
		return payment, nil
	}

	status, err := s.gw.TransactionStatus(ctx, payment.TrackingID)
	if err != nil {
		// Gateway unreachable: leave the payment pending, a later
		// check or the webhook will resolve it.
		return payment, nil
	}

	return s.apply(ctx, payment, status.State, status.Description)
}

// ApplyGatewayStatus applies a provider-reported state to the payment
// carrying the given tracking ID. This is the webhook entry point and
// is idempotent: a repeated callback for a terminal payment is a no-op.
func (s *ReconcilerService) ApplyGatewayStatus(ctx context.Context, trackingID string, state gateway.TransactionState, description string) (*domain.Payment, error) {
	if trackingID == "" {
		return nil, ErrNotReconcilable
	}

	payment, err := s.paymentRepo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, repository.ErrNotFound
	}

	return s.apply(ctx, payment, state, description)
}

// PollUntilTerminal repeatedly checks a pending payment until it
// reaches a terminal state or the poll budget is exhausted. Bounded:
// it resolves within MaxPollAttempts * PollInterval regardless of
// gateway behavior. A timeout leaves the payment pending.
func (s *ReconcilerService) PollUntilTerminal(ctx context.Context, paymentID string) (PollOutcome, *domain.Payment, error) {
	var payment *domain.Payment

	for attempt := 0; attempt < s.cfg.MaxPollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return PollOutcomeTimeout, payment, ctx.Err()
			case <-time.After(s.cfg.PollInterval):
			}
		}

		var err error
		payment, err = s.CheckPayment(ctx, paymentID)
		if err != nil {
			return PollOutcomeFailed, nil, err
		}

		switch payment.Status {
		case domain.PaymentStatusCompleted:
			return PollOutcomeCompleted, payment, nil
		case domain.PaymentStatusFailed, domain.PaymentStatusRefunded:
			return PollOutcomeFailed, payment, nil
		}
	}

	return PollOutcomeTimeout, payment, nil
}

// Run sweeps stale pending payments until the context is cancelled.
// Started as a background goroutine from main.
func (s *ReconcilerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce checks one batch of stale pending payments.
func (s *ReconcilerService) sweepOnce(ctx context.Context) {
	stale, err := s.paymentRepo.ListStalePending(ctx, int(s.cfg.StaleAfter.Seconds()), s.cfg.SweepBatchSize)
	if err != nil {
		log.Printf("reconciler sweep: list stale pending: %v", err)
		return
	}

	for _, payment := range stale {
		if _, err := s.CheckPayment(ctx, payment.ID); err != nil {
			log.Printf("reconciler sweep: payment %s: %v", payment.ID, err)
		}
	}
}

// apply writes a terminal transition for a pending payment. The
// payment and order rows move together in one transaction.
func (s *ReconcilerService) apply(ctx context.Context, payment *domain.Payment, state gateway.TransactionState, description string) (*domain.Payment, error) {
	if payment.Terminal() || state == gateway.StatePending {
		return payment, nil
	}

	switch state {
	case gateway.StateCompleted:
		code := newConfirmationCode()
		err := s.tx.RunInTx(ctx, func(orders repository.OrderRepository, payments repository.PaymentRepository) error {
			if err := payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusCompleted, code); err != nil {
				return err
			}
			return orders.UpdatePaymentStatus(ctx, payment.OrderID, domain.OrderPaymentStatusPaid, domain.OrderStatusConfirmed)
		})
		if err != nil {
			return nil, err
		}

		payment.Status = domain.PaymentStatusCompleted
		payment.ConfirmationCode = code

		if s.notifier != nil {
			_ = s.notifier.NotifyPaymentCompleted(ctx, payment)
		}

	case gateway.StateFailed:
		err := s.tx.RunInTx(ctx, func(orders repository.OrderRepository, payments repository.PaymentRepository) error {
			if err := payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusFailed, ""); err != nil {
				return err
			}

			// The order returns to unpaid only when no other live
			// attempt exists against it.
			others, err := payments.GetByOrderID(ctx, payment.OrderID)
			if err != nil {
				return err
			}
			for _, other := range others {
				if other.ID == payment.ID {
					continue
				}
				if other.Status == domain.PaymentStatusPending || other.Status == domain.PaymentStatusCompleted {
					return nil
				}
			}
			return orders.UpdatePaymentStatus(ctx, payment.OrderID, domain.OrderPaymentStatusUnpaid, "")
		})
		if err != nil {
			return nil, err
		}

		payment.Status = domain.PaymentStatusFailed

		if s.notifier != nil {
			_ = s.notifier.NotifyPaymentFailed(ctx, payment, description)
		}
	}

	if s.cache != nil {
		_ = s.cache.InvalidatePaymentStatus(ctx, payment.ID)
	}

	return payment, nil
}
