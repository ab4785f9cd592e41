package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"pos/internal/domain"
	"pos/internal/gateway"
	"pos/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	// Counters for verification
	CreateCallCount              int32
	UpdatePaymentStatusCallCount int32

	// Error injection
	CreateError              error
	UpdatePaymentStatusError error
}

// NewMockOrderRepository creates a new mock order repository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// AddOrder adds an order to the mock repository.
func (m *MockOrderRepository) AddOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *order
	return &copy, nil
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		copy := *o
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

func (m *MockOrderRepository) UpdatePaymentStatus(ctx context.Context, id string, paymentStatus domain.OrderPaymentStatus, status domain.OrderStatus) error {
	atomic.AddInt32(&m.UpdatePaymentStatusCallCount, 1)
	if m.UpdatePaymentStatusError != nil {
		return m.UpdatePaymentStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.PaymentStatus = paymentStatus
	if status != "" {
		order.Status = status
	}
	order.UpdatedAt = time.Now()
	return nil
}

// GetOrder returns an order for test assertions.
func (m *MockOrderRepository) GetOrder(id string) *domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *payment
	m.payments[payment.ID] = &copy
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payments {
		if p.TrackingID == trackingID {
			copy := *p
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) GetByOrderID(ctx context.Context, orderID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, confirmationCode string) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.Status = status
	if confirmationCode != "" {
		payment.ConfirmationCode = confirmationCode
	}
	payment.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) SetTrackingID(ctx context.Context, id string, trackingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	payment.TrackingID = trackingID
	payment.UpdatedAt = time.Now()
	return nil
}

func (m *MockPaymentRepository) ListStalePending(ctx context.Context, olderThanSeconds int, limit int) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if p.Status == domain.PaymentStatusPending && p.TrackingID != "" {
			copy := *p
			result = append(result, &copy)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner is a mock implementation of TxRunner. It passes the
// mock repositories straight through; rollback semantics are not
// simulated.
type MockTxRunner struct {
	Orders   *MockOrderRepository
	Payments *MockPaymentRepository

	// Counters for verification
	RunCallCount int32

	// Error injection
	BeginError error
}

// NewMockTxRunner creates a new mock transaction runner.
func NewMockTxRunner(orders *MockOrderRepository, payments *MockPaymentRepository) *MockTxRunner {
	return &MockTxRunner{Orders: orders, Payments: payments}
}

func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(orders repository.OrderRepository, payments repository.PaymentRepository) error) error {
	atomic.AddInt32(&m.RunCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}
	return fn(m.Orders, m.Payments)
}

// ──────────────────────────────────────────────
// MOCK GATEWAY
// ──────────────────────────────────────────────

// MockGateway is a scriptable mock of the payment gateway.
type MockGateway struct {
	mu sync.Mutex

	// Counters for verification
	RequestToPayCallCount int32
	StatusCallCount       int32

	// Captured inputs
	LastPushRequest *gateway.PushRequest

	// Behavior
	TrackingID        string
	RequestToPayError error
	StatusError       error

	// StatusScript is consumed one state per TransactionStatus call;
	// the last entry repeats once the script runs out.
	StatusScript []gateway.TransactionState
	statusIndex  int
}

// NewMockGateway creates a mock gateway that accepts push requests and
// reports pending forever unless scripted otherwise.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		TrackingID:   "trk-0001",
		StatusScript: []gateway.TransactionState{gateway.StatePending},
	}
}

func (m *MockGateway) RequestToPay(ctx context.Context, req gateway.PushRequest) (*gateway.PushResponse, error) {
	atomic.AddInt32(&m.RequestToPayCallCount, 1)
	m.mu.Lock()
	m.LastPushRequest = &req
	m.mu.Unlock()
	if m.RequestToPayError != nil {
		return nil, m.RequestToPayError
	}
	return &gateway.PushResponse{TrackingID: m.TrackingID, Message: "prompt sent"}, nil
}

func (m *MockGateway) TransactionStatus(ctx context.Context, trackingID string) (*gateway.StatusResponse, error) {
	atomic.AddInt32(&m.StatusCallCount, 1)
	if m.StatusError != nil {
		return nil, m.StatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.StatusScript[len(m.StatusScript)-1]
	if m.statusIndex < len(m.StatusScript) {
		state = m.StatusScript[m.statusIndex]
		m.statusIndex++
	}
	return &gateway.StatusResponse{TrackingID: trackingID, State: state}, nil
}

// PushRequestSent returns the captured push request, if any.
func (m *MockGateway) PushRequestSent() *gateway.PushRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastPushRequest
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the payment lock.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireOrderPaymentLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[orderID] {
		return false, nil
	}
	m.locks[orderID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseOrderPaymentLock(ctx context.Context, orderID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, orderID)
	return nil
}

// HoldLock marks an order's lock as held by someone else.
func (m *MockLockStore) HoldLock(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[orderID] = true
}

// Held reports whether an order's lock is currently held.
func (m *MockLockStore) Held(orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks[orderID]
}
