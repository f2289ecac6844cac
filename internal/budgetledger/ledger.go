// Package budgetledger is the single source of truth for spend across
// a production run: total budget, per-pilot running totals, and
// overhead. It is the one piece of shared mutable state pilots
// contend over, so every operation is guarded by a mutex and safe to
// call concurrently from multiple pilot goroutines.
package budgetledger

import (
	"fmt"
	"sync"

	"github.com/aaronmarkham/studioproducer/internal/errs"
)

// Ledger tracks total/per-pilot/overhead spend for one production run.
type Ledger struct {
	mu       sync.RWMutex
	total    float64
	perPilot map[string]float64
	overhead float64
}

// New creates a ledger with the given total budget.
func New(total float64) *Ledger {
	return &Ledger{
		total:    total,
		perPilot: make(map[string]float64),
	}
}

// RecordSpend adds amount to pilotID's running total. amount must be
// >= 0.
func (l *Ledger) RecordSpend(pilotID string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("%w: spend amount must be non-negative, got %v", errs.ErrInvalidInput, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perPilot[pilotID] += amount
	return nil
}

// RecordOverhead adds amount to the non-pilot overhead total. reason
// is informational only and is not stored on the ledger.
func (l *Ledger) RecordOverhead(amount float64, reason string) error {
	if amount < 0 {
		return fmt.Errorf("%w: overhead amount must be non-negative, got %v", errs.ErrInvalidInput, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overhead += amount
	return nil
}

// GetTotalSpent returns the sum of every pilot's spend plus overhead.
func (l *Ledger) GetTotalSpent() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSpentLocked()
}

func (l *Ledger) totalSpentLocked() float64 {
	sum := l.overhead
	for _, v := range l.perPilot {
		sum += v
	}
	return sum
}

// GetPilotSpent returns one pilot's running total.
func (l *Ledger) GetPilotSpent(pilotID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.perPilot[pilotID]
}

// GetRemaining returns total - spent. It may be negative: an overrun
// is an observable condition, not an error.
func (l *Ledger) GetRemaining() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total - l.totalSpentLocked()
}

// CanAfford reports whether amount <= remaining (non-strict).
func (l *Ledger) CanAfford(amount float64) bool {
	return amount <= l.GetRemaining()
}

// Total returns the ledger's fixed total budget.
func (l *Ledger) Total() float64 {
	return l.total
}

// Snapshot returns a point-in-time, independently-owned copy of the
// per-pilot spend map for reporting.
func (l *Ledger) Snapshot() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]float64, len(l.perPilot))
	for k, v := range l.perPilot {
		out[k] = v
	}
	return out
}
