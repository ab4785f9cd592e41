package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles payment status caching in Redis. The status read
// endpoint is polled by POS terminals every couple of seconds, so even
// a short TTL keeps most of that traffic off Postgres.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// PaymentStatusCacheTTL is short: a pending payment can complete at
// any moment via webhook or sweep.
const PaymentStatusCacheTTL = 2 * time.Second

const paymentStatusCachePrefix = "cache:payment:status:"

// CachedPaymentStatus is the cached shape of the status endpoint response.
type CachedPaymentStatus struct {
	PaymentID        string `json:"payment_id"`
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`
}

// GetPaymentStatus retrieves a cached payment status. Returns nil on
// cache miss.
func (s *CacheStore) GetPaymentStatus(ctx context.Context, paymentID string) (*CachedPaymentStatus, error) {
	key := paymentStatusCachePrefix + paymentID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var status CachedPaymentStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SetPaymentStatus stores a payment status in cache.
func (s *CacheStore) SetPaymentStatus(ctx context.Context, status *CachedPaymentStatus) error {
	key := paymentStatusCachePrefix + status.PaymentID
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, PaymentStatusCacheTTL).Err()
}

// InvalidatePaymentStatus removes a payment status from cache. Called
// whenever the reconciler transitions a payment.
func (s *CacheStore) InvalidatePaymentStatus(ctx context.Context, paymentID string) error {
	key := paymentStatusCachePrefix + paymentID
	return s.client.Del(ctx, key).Err()
}
