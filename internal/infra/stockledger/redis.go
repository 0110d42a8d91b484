// Package stockledger is the flat per-material counter store. It is
// deliberately separate from the document store: availability is the one
// piece of state with real scarcity semantics, and every mutation goes
// through the compare-and-swap operations here. No caller may read a
// quantity and write it back.
package stockledger

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnknownMaterial   = errors.New("unknown material")
	ErrContention        = errors.New("stock update contention")
)

// Ledger is the stock counter contract shared by the Redis implementation
// and the in-memory one used in tests.
type Ledger interface {
	// TryDecrement atomically subtracts amount if the counter allows it,
	// returning the new quantity. Returns ErrInsufficientStock without
	// mutating anything when quantityAvailable < amount.
	TryDecrement(ctx context.Context, materialID uuid.UUID, amount int) (int64, error)
	// Increment atomically adds amount and returns the new quantity.
	Increment(ctx context.Context, materialID uuid.UUID, amount int) (int64, error)
	// Get returns the current quantity.
	Get(ctx context.Context, materialID uuid.UUID) (int64, error)
	// Set initializes or overwrites the counter (material registration only).
	Set(ctx context.Context, materialID uuid.UUID, quantity int64) error
}

const maxCASRetries = 16

type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func stockKey(materialID uuid.UUID) string {
	return "stock:" + materialID.String()
}

// TryDecrement runs a WATCH/GET/check/MULTI-SET loop. Concurrent writers on
// the same key abort each other's transaction; losers retry against the
// fresh value, so a decrement that would go negative always surfaces as
// ErrInsufficientStock, never as a corrupted counter.
func (l *RedisLedger) TryDecrement(ctx context.Context, materialID uuid.UUID, amount int) (int64, error) {
	return l.compareAndSwap(ctx, materialID, func(current int64) (int64, error) {
		if current < int64(amount) {
			return 0, ErrInsufficientStock
		}
		return current - int64(amount), nil
	})
}

func (l *RedisLedger) Increment(ctx context.Context, materialID uuid.UUID, amount int) (int64, error) {
	return l.compareAndSwap(ctx, materialID, func(current int64) (int64, error) {
		return current + int64(amount), nil
	})
}

func (l *RedisLedger) compareAndSwap(ctx context.Context, materialID uuid.UUID, apply func(int64) (int64, error)) (int64, error) {
	key := stockKey(materialID)
	var next int64

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrUnknownMaterial
		}
		if err != nil {
			return err
		}
		current, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}

		next, err = apply(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		err := l.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue // lost the race, retry against the fresh value
		}
		if err != nil {
			return 0, err
		}
		return next, nil
	}
	return 0, ErrContention
}

func (l *RedisLedger) Get(ctx context.Context, materialID uuid.UUID) (int64, error) {
	raw, err := l.client.Get(ctx, stockKey(materialID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrUnknownMaterial
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (l *RedisLedger) Set(ctx context.Context, materialID uuid.UUID, quantity int64) error {
	if quantity < 0 {
		return errors.New("quantity cannot be negative")
	}
	return l.client.Set(ctx, stockKey(materialID), quantity, 0).Err()
}
