package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireOrderPaymentLock attempts to acquire the per-order payment
// initiation lock. Returns true if the lock was acquired, false if a
// concurrent initiation already holds it.
func (s *LockStore) AcquireOrderPaymentLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:payment:order:%s", orderID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseOrderPaymentLock releases the payment initiation lock for an order.
func (s *LockStore) ReleaseOrderPaymentLock(ctx context.Context, orderID string) error {
	key := fmt.Sprintf("lock:payment:order:%s", orderID)

	return s.client.Del(ctx, key).Err()
}
