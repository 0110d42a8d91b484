package stockledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryLedger is the in-process Ledger used by tests, kept in this package
// the same way MockClock lives next to Clock.
type MemoryLedger struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{counts: make(map[uuid.UUID]int64)}
}

func (l *MemoryLedger) TryDecrement(_ context.Context, materialID uuid.UUID, amount int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.counts[materialID]
	if !ok {
		return 0, ErrUnknownMaterial
	}
	if current < int64(amount) {
		return 0, ErrInsufficientStock
	}
	l.counts[materialID] = current - int64(amount)
	return l.counts[materialID], nil
}

func (l *MemoryLedger) Increment(_ context.Context, materialID uuid.UUID, amount int) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.counts[materialID]
	if !ok {
		return 0, ErrUnknownMaterial
	}
	l.counts[materialID] = current + int64(amount)
	return l.counts[materialID], nil
}

func (l *MemoryLedger) Get(_ context.Context, materialID uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.counts[materialID]
	if !ok {
		return 0, ErrUnknownMaterial
	}
	return current, nil
}

func (l *MemoryLedger) Set(_ context.Context, materialID uuid.UUID, quantity int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[materialID] = quantity
	return nil
}
