// Package events records learner activity: sessions, completions, quizzes,
// topic growth and resets.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event types emitted by navigation sessions.
const (
	SessionStarted   = "session_started"
	SessionEnded     = "session_ended"
	ChapterCompleted = "chapter_completed"
	QuizStarted      = "quiz_started"
	QuizCompleted    = "quiz_completed"
	TopicAdded       = "topic_added"
	ProgressReset    = "progress_reset"
)

// Event is one learner action.
type Event struct {
	SessionID string
	Type      string
	Data      map[string]any
	CreatedAt time.Time
}

// Logger records events.
type Logger interface {
	LogEvent(ctx context.Context, event Event) error
}

// Nop ignores all events.
type Nop struct{}

func (Nop) LogEvent(context.Context, Event) error {
	return nil
}

// SlogLogger writes events to a structured logger. It is used when no
// database is configured.
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) LogEvent(ctx context.Context, event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	attrs := []any{"type", event.Type, "session_id", event.SessionID}
	for k, v := range event.Data {
		attrs = append(attrs, k, v)
	}
	l.logger.InfoContext(ctx, "learner event", attrs...)
	return nil
}

// MemoryLogger stores events in memory for tests.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		events: []Event{},
	}
}

func (l *MemoryLogger) LogEvent(_ context.Context, event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

// Events returns a copy of everything logged so far.
func (l *MemoryLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// Types returns the logged event types in order.
func (l *MemoryLogger) Types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

// PostgresLogger inserts events into the course_events table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

// NewPostgresLogger wraps pool and ensures the table exists.
func NewPostgresLogger(ctx context.Context, pool *pgxpool.Pool) (*PostgresLogger, error) {
	if pool == nil {
		return nil, fmt.Errorf("event logger pool is nil")
	}
	l := &PostgresLogger{pool: pool}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS course_events (
		id         BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		data       JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return nil, fmt.Errorf("ensure events table: %w", err)
	}
	return l, nil
}

func (l *PostgresLogger) LogEvent(ctx context.Context, event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO course_events (session_id, event_type, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		event.SessionID,
		event.Type,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.Type,
		"session_id", event.SessionID,
	)
	return nil
}

// Count returns how many events of eventType have been stored.
func (l *PostgresLogger) Count(ctx context.Context, eventType string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var n int
	err := l.pool.QueryRow(ctx,
		`SELECT count(*) FROM course_events WHERE event_type = $1`, eventType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
