package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/progress"
)

// ErrCorruptSnapshot reports a stored blob that does not parse or does not
// match the expected shape.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshots encodes the course tree and progress ledger into a BlobStore.
type Snapshots struct {
	store     BlobStore
	namespace string
}

// NewSnapshots creates a codec over store. A non-empty namespace is prefixed
// to both keys, so several courses can share one backend.
func NewSnapshots(store BlobStore, namespace string) *Snapshots {
	return &Snapshots{store: store, namespace: namespace}
}

func (s *Snapshots) key(base string) string {
	if s.namespace == "" {
		return base
	}
	return s.namespace + ":" + base
}

// LoadTree reads the stored course tree. The bool is false when nothing is stored.
func (s *Snapshots) LoadTree(ctx context.Context) (course.Tree, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.key(KeyCourse))
	if err != nil || !ok {
		return nil, false, err
	}
	if err := validate(courseSchema, raw); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, KeyCourse, err)
	}
	var t course.Tree
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, KeyCourse, err)
	}
	return t, true, nil
}

// SaveTree stores the course tree.
func (s *Snapshots) SaveTree(ctx context.Context, t course.Tree) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal course: %w", err)
	}
	return s.store.Set(ctx, s.key(KeyCourse), string(data))
}

// LoadLedger reads the stored progress ledger. The bool is false when nothing is stored.
func (s *Snapshots) LoadLedger(ctx context.Context) (*progress.Ledger, bool, error) {
	raw, ok, err := s.store.Get(ctx, s.key(KeyProgress))
	if err != nil || !ok {
		return nil, false, err
	}
	if err := validate(progressSchema, raw); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, KeyProgress, err)
	}
	l := progress.New()
	if err := json.Unmarshal([]byte(raw), l); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, KeyProgress, err)
	}
	return l, true, nil
}

// SaveLedger stores the progress ledger.
func (s *Snapshots) SaveLedger(ctx context.Context, l *progress.Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	return s.store.Set(ctx, s.key(KeyProgress), string(data))
}

// RemoveLedger deletes the stored progress ledger.
func (s *Snapshots) RemoveLedger(ctx context.Context) error {
	return s.store.Remove(ctx, s.key(KeyProgress))
}
