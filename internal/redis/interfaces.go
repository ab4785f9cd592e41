package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for the per-order payment
// initiation lock.
type LockStoreInterface interface {
	AcquireOrderPaymentLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseOrderPaymentLock(ctx context.Context, orderID string) error
}

// CacheStoreInterface defines the interface for payment status caching.
type CacheStoreInterface interface {
	GetPaymentStatus(ctx context.Context, paymentID string) (*CachedPaymentStatus, error)
	SetPaymentStatus(ctx context.Context, status *CachedPaymentStatus) error
	InvalidatePaymentStatus(ctx context.Context, paymentID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
