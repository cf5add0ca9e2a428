package ai

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryBudget_NoBudgetSet(t *testing.T) {
	b := NewInMemoryBudget()

	ok, err := b.Check("course")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ok {
		t.Error("Check() = false, want true (no budget means unlimited)")
	}
}

func TestInMemoryBudget_Limits(t *testing.T) {
	tests := []struct {
		name   string
		budget int64
		used   []int
		wantOK bool
	}{
		{"within", 1000, []int{500}, true},
		{"over", 100, []int{150}, false},
		{"exact", 100, []int{100}, false},
		{"several records", 1000, []int{100, 200, 300}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewInMemoryBudget()
			b.SetBudget("course", tt.budget)
			for _, n := range tt.used {
				if err := b.Record("course", n); err != nil {
					t.Fatalf("Record() error = %v", err)
				}
			}
			ok, err := b.Check("course")
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("Check() = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func TestInMemoryBudget_Usage(t *testing.T) {
	b := NewInMemoryBudget()
	b.SetBudget("course", 1000)
	b.Record("course", 250)
	b.Record("other", 999)

	used, budget, err := b.Usage("course")
	if err != nil {
		t.Fatalf("Usage() error = %v", err)
	}
	if used != 250 || budget != 1000 {
		t.Errorf("Usage() = %d/%d, want 250/1000", used, budget)
	}
}

func TestInMemoryBudget_NegativeTokens(t *testing.T) {
	b := NewInMemoryBudget()
	if err := b.Record("course", -10); err == nil {
		t.Fatal("Record() should return error for negative tokens")
	}
}

func TestBudgeted_ChargesAndBlocks(t *testing.T) {
	mock := NewMockProvider("12345") // 10 input + 5 output tokens per call
	b := NewInMemoryBudget()
	b.SetBudget("course", 20)
	c := NewBudgeted(mock, b, "course")

	if _, err := c.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatalf("first Complete() error = %v", err)
	}
	if used, _, _ := b.Usage("course"); used != 15 {
		t.Errorf("used = %d, want 15", used)
	}
	if _, err := c.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}

	_, err := c.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("third Complete() error = %v, want ErrBudgetExceeded", err)
	}
	if n := len(mock.Requests()); n != 2 {
		t.Errorf("provider saw %d requests, want 2", n)
	}
}

func TestBudgeted_ProviderErrorNotCharged(t *testing.T) {
	mock := &MockProvider{Err: errors.New("down")}
	b := NewInMemoryBudget()
	c := NewBudgeted(mock, b, "course")

	if _, err := c.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("Complete() should surface provider error")
	}
	if used, _, _ := b.Usage("course"); used != 0 {
		t.Errorf("used = %d, want 0", used)
	}
}
