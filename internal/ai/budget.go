package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBudgetExceeded is returned when a key has used up its token budget.
var ErrBudgetExceeded = errors.New("token budget exceeded")

// BudgetChecker checks and records token usage against budgets.
type BudgetChecker interface {
	// Check returns true if key has budget remaining.
	Check(key string) (bool, error)
	// Record records token usage for key.
	Record(key string, tokens int) error
	// Usage returns current usage and limit for key. A zero limit means unlimited.
	Usage(key string) (used int64, budget int64, err error)
}

// InMemoryBudget is a simple in-memory budget tracker.
type InMemoryBudget struct {
	mu      sync.RWMutex
	budgets map[string]int64 // key -> budget limit
	usage   map[string]int64 // key -> tokens used
}

// NewInMemoryBudget creates a new in-memory budget tracker.
func NewInMemoryBudget() *InMemoryBudget {
	return &InMemoryBudget{
		budgets: make(map[string]int64),
		usage:   make(map[string]int64),
	}
}

// SetBudget sets the token budget for key.
func (b *InMemoryBudget) SetBudget(key string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[key] = tokens
}

func (b *InMemoryBudget) Check(key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget, hasBudget := b.budgets[key]
	if !hasBudget {
		// No budget set means unlimited.
		return true, nil
	}
	return b.usage[key] < budget, nil
}

func (b *InMemoryBudget) Record(key string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[key] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(key string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[key], b.budgets[key], nil
}

// Budgeted wraps a Completer so every call is checked against and charged to key.
type Budgeted struct {
	next   Completer
	budget BudgetChecker
	key    string
}

// NewBudgeted returns a Completer that enforces budget for key.
func NewBudgeted(next Completer, budget BudgetChecker, key string) *Budgeted {
	return &Budgeted{next: next, budget: budget, key: key}
}

func (b *Budgeted) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	ok, err := b.budget.Check(b.key)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("check budget: %w", err)
	}
	if !ok {
		return CompletionResponse{}, ErrBudgetExceeded
	}

	resp, err := b.next.Complete(ctx, req)
	if err != nil {
		return resp, err
	}
	if err := b.budget.Record(b.key, resp.TotalTokens()); err != nil {
		return resp, fmt.Errorf("record usage: %w", err)
	}
	return resp, nil
}
