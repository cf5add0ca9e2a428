// Package navigation tracks where a learner is in the course and moves them
// through it. A Workspace owns the course tree and progress ledger shared by
// all sessions; a Controller holds one session's view.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/progress"
	"github.com/p-n-ai/pai-course/internal/storage"
)

var (
	// ErrGenerationFailed is returned by AddTopic when no usable breakdown was produced.
	ErrGenerationFailed = errors.New("topic generation failed")
	// ErrGenerationInProgress is returned when the same title is already being generated.
	ErrGenerationInProgress = errors.New("topic generation already in progress")
)

// BreakdownGenerator produces the subtopics and chapters for a new topic title.
type BreakdownGenerator interface {
	GenerateBreakdown(ctx context.Context, title string) ([]course.Subtopic, error)
}

// WorkspaceConfig holds dependencies for a Workspace.
type WorkspaceConfig struct {
	Snapshots   *storage.Snapshots // nil disables persistence
	Generator   BreakdownGenerator // nil makes AddTopic fail
	DefaultTree course.Tree        // used when nothing valid is stored; course.Default() if nil
}

// Workspace is the process-wide course state: the tree and the ledger.
type Workspace struct {
	tree    course.Tree
	ledger  *progress.Ledger
	snaps   *storage.Snapshots
	gen     BreakdownGenerator
	pending map[string]bool
	mu      sync.RWMutex
}

// OpenWorkspace restores the tree and ledger from cfg.Snapshots. Missing or
// corrupt snapshots are replaced by the default tree and an empty ledger and
// rewritten; that is logged, never returned. Any other read error is returned
// and nothing is written, so a flaky backend cannot clobber stored state.
func OpenWorkspace(ctx context.Context, cfg WorkspaceConfig) (*Workspace, error) {
	defaults := cfg.DefaultTree
	if defaults == nil {
		defaults = course.Default()
	}
	w := &Workspace{
		tree:    defaults.Clone(),
		ledger:  progress.New(),
		snaps:   cfg.Snapshots,
		gen:     cfg.Generator,
		pending: make(map[string]bool),
	}
	if w.snaps == nil {
		return w, nil
	}

	tree, treeOK, treeErr := w.snaps.LoadTree(ctx)
	if treeErr != nil && !errors.Is(treeErr, storage.ErrCorruptSnapshot) {
		return nil, fmt.Errorf("load course snapshot: %w", treeErr)
	}
	ledger, ledgerOK, ledgerErr := w.snaps.LoadLedger(ctx)
	if ledgerErr != nil && !errors.Is(ledgerErr, storage.ErrCorruptSnapshot) {
		return nil, fmt.Errorf("load progress snapshot: %w", ledgerErr)
	}

	switch {
	case treeErr != nil:
		slog.Warn("course snapshot corrupt, using default tree", "error", treeErr)
		w.saveTree(ctx)
	case treeOK:
		w.tree = tree
	default:
		w.saveTree(ctx)
	}

	switch {
	case ledgerErr != nil:
		slog.Warn("progress snapshot corrupt, starting empty", "error", ledgerErr)
		w.saveLedger(ctx)
	case ledgerOK:
		w.ledger = ledger
	}

	slog.Info("workspace opened",
		"topics", len(w.tree),
		"chapters", w.tree.Count(),
		"completed", w.ledger.Len(),
	)
	return w, nil
}

// Tree returns a copy of the current course tree.
func (w *Workspace) Tree() course.Tree {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tree.Clone()
}

// Ledger returns a copy of the current progress ledger.
func (w *Workspace) Ledger() *progress.Ledger {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ledger.Clone()
}

// Valid reports whether p addresses a chapter in the current tree.
func (w *Workspace) Valid(p course.Path) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tree.Valid(p)
}

// HasTopic reports whether idx addresses a topic in the current tree.
func (w *Workspace) HasTopic(idx int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tree.HasTopic(idx)
}

// Locate returns the titles along p.
func (w *Workspace) Locate(p course.Path) (course.Location, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tree.Locate(p)
}

// Step returns the neighbour of p in direction d.
func (w *Workspace) Step(p course.Path, d course.Direction) (course.Path, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return course.Step(w.tree, p, d)
}

// Search finds chapters whose titles match query.
func (w *Workspace) Search(query string) []course.Location {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return course.Search(w.tree, query)
}

// IsComplete reports whether the chapter at p has been completed.
func (w *Workspace) IsComplete(p course.Path) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ledger.IsComplete(p)
}

// Summaries returns per-topic completion counts.
func (w *Workspace) Summaries() []progress.TopicSummary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return progress.Summarize(w.tree, w.ledger)
}

// MarkComplete records p as completed and persists the ledger.
func (w *Workspace) MarkComplete(ctx context.Context, p course.Path) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.tree.Valid(p) {
		return fmt.Errorf("%w: %s", course.ErrInvalidPath, p)
	}
	w.ledger.MarkComplete(p)
	w.saveLedger(ctx)
	return nil
}

// ResetProgress clears every completion. The learner must have confirmed
// the reset; otherwise nothing changes and ErrResetNotConfirmed is returned.
func (w *Workspace) ResetProgress(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return progress.ErrResetNotConfirmed
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	cleared := w.ledger.Len()
	w.ledger.Reset()
	if w.snaps != nil {
		if err := w.snaps.RemoveLedger(ctx); err != nil {
			slog.Warn("failed to remove progress snapshot", "error", err)
		}
	}
	slog.Info("progress reset", "cleared", cleared)
	return nil
}

// AddTopic asks the generator for a breakdown of title and appends the new
// topic, titled exactly as given, to the end of the tree. On any failure the tree is unchanged and the
// error wraps ErrGenerationFailed. The workspace stays usable while the
// generator runs.
func (w *Workspace) AddTopic(ctx context.Context, title string) (course.Topic, error) {
	if strings.TrimSpace(title) == "" {
		return course.Topic{}, fmt.Errorf("%w: empty title", ErrGenerationFailed)
	}
	if w.gen == nil {
		return course.Topic{}, fmt.Errorf("%w: no content generator configured", ErrGenerationFailed)
	}

	w.mu.Lock()
	if w.pending[title] {
		w.mu.Unlock()
		return course.Topic{}, ErrGenerationInProgress
	}
	w.pending[title] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.pending, title)
		w.mu.Unlock()
	}()

	subs, err := w.gen.GenerateBreakdown(ctx, title)
	if err != nil {
		slog.Warn("topic generation failed", "title", title, "error", err)
		return course.Topic{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	topic := course.Topic{Title: title, Subtopics: usableSubtopics(subs)}
	if !topic.WellFormed() {
		slog.Warn("topic generation returned no chapters", "title", title)
		return course.Topic{}, fmt.Errorf("%w: empty breakdown", ErrGenerationFailed)
	}

	w.mu.Lock()
	w.tree = append(w.tree, topic)
	idx := len(w.tree) - 1
	w.saveTree(ctx)
	w.mu.Unlock()

	slog.Info("topic added",
		"title", title,
		"topic_idx", idx,
		"subtopics", len(topic.Subtopics),
		"chapters", topic.ChapterCount(),
	)
	return topic.Clone(), nil
}

// usableSubtopics drops subtopics without chapters, so every level of the
// new topic stays non-empty.
func usableSubtopics(subs []course.Subtopic) []course.Subtopic {
	out := make([]course.Subtopic, 0, len(subs))
	for _, s := range subs {
		if len(s.Chapters) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// saveTree persists the tree. Failures are logged and swallowed; memory stays
// authoritative until the next successful write. Caller holds w.mu or owns w.
func (w *Workspace) saveTree(ctx context.Context) {
	if w.snaps == nil {
		return
	}
	if err := w.snaps.SaveTree(ctx, w.tree); err != nil {
		slog.Warn("failed to persist course tree", "error", err)
	}
}

// saveLedger persists the ledger with the same best-effort rules as saveTree.
func (w *Workspace) saveLedger(ctx context.Context) {
	if w.snaps == nil {
		return
	}
	if err := w.snaps.SaveLedger(ctx, w.ledger); err != nil {
		slog.Warn("failed to persist progress", "error", err)
	}
}
