package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router selects a provider per task and falls back through the rest.
type Router struct {
	providers map[string]Provider
	fallback  []string            // ordered fallback chain
	preferred map[TaskType]string // provider tried first for a task
	mu        sync.RWMutex
}

// NewRouter creates a new AI router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
		preferred: make(map[TaskType]string),
	}
}

// Register adds a provider to the router.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		r.fallback = append(r.fallback, name)
	}
	r.providers[name] = provider
}

// Prefer makes the named provider the first one tried for task.
func (r *Router) Prefer(task TaskType, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferred[task] = name
}

// Complete routes a request to the best available provider.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	order := r.order(req.Task)
	r.mu.RUnlock()

	if len(order) == 0 {
		return CompletionResponse{}, fmt.Errorf("no AI provider registered")
	}

	var lastErr error
	for _, name := range order {
		r.mu.RLock()
		provider := r.providers[name]
		r.mu.RUnlock()

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			slog.Warn("AI provider failed, trying next",
				"provider", name,
				"task", req.Task.String(),
				"error", err,
			)
			lastErr = err
			continue
		}

		slog.Debug("AI request completed",
			"provider", name,
			"task", req.Task.String(),
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("all AI providers failed: %w", lastErr)
}

// order returns provider names for task: the preferred one first, then the
// fallback chain. Caller holds r.mu.
func (r *Router) order(task TaskType) []string {
	first, ok := r.preferred[task]
	if _, registered := r.providers[first]; !ok || !registered {
		return append([]string(nil), r.fallback...)
	}
	out := []string{first}
	for _, name := range r.fallback {
		if name != first {
			out = append(out, name)
		}
	}
	return out
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}

// HealthCheck reports the first registered provider that is unreachable.
func (r *Router) HealthCheck(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.fallback {
		if err := r.providers[name].HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider %s: %w", name, err)
		}
	}
	return nil
}
