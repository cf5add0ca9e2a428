// Package progress records which chapters a learner has finished.
package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/p-n-ai/pai-course/internal/course"
)

// ErrResetNotConfirmed is returned when a reset is requested without the
// learner confirming it.
var ErrResetNotConfirmed = errors.New("progress reset not confirmed")

// Ledger maps a chapter key to its completion flag. The zero value is empty
// and ready to use.
type Ledger struct {
	done map[string]bool
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{done: make(map[string]bool)}
}

// Key returns the composite key for p. Indices are written in decimal and
// joined with '-', which never appears in a non-negative decimal number.
func Key(p course.Path) string {
	return strconv.Itoa(p.Topic) + "-" + strconv.Itoa(p.Subtopic) + "-" + strconv.Itoa(p.Chapter)
}

// ParseKey reverses Key. Only keys Key can produce are accepted, so "01-0-0"
// or "+1-0-0" are rejected.
func ParseKey(key string) (course.Path, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return course.Path{}, fmt.Errorf("progress key %q: want three indices", key)
	}
	idx := make([]int, 3)
	for i, s := range parts {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return course.Path{}, fmt.Errorf("progress key %q: bad index %q", key, s)
		}
		idx[i] = n
	}
	p := course.Path{Topic: idx[0], Subtopic: idx[1], Chapter: idx[2]}
	if Key(p) != key {
		return course.Path{}, fmt.Errorf("progress key %q: not canonical", key)
	}
	return p, nil
}

// MarkComplete records p as completed. Marking twice has no further effect.
func (l *Ledger) MarkComplete(p course.Path) {
	if l.done == nil {
		l.done = make(map[string]bool)
	}
	l.done[Key(p)] = true
}

// IsComplete reports whether p has been marked. Unknown paths read as false.
func (l *Ledger) IsComplete(p course.Path) bool {
	return l.done[Key(p)]
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	return len(l.done)
}

// Reset clears every entry.
func (l *Ledger) Reset() {
	clear(l.done)
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	out := New()
	for k, v := range l.done {
		out.done[k] = v
	}
	return out
}

// Entries returns a copy of the underlying mapping.
func (l *Ledger) Entries() map[string]bool {
	out := make(map[string]bool, len(l.done))
	for k, v := range l.done {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the ledger as an object from key to flag.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	if l.done == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(l.done)
}

// UnmarshalJSON replaces the ledger contents with the decoded object. Keys
// that ParseKey rejects make the whole object invalid.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for k := range m {
		if _, err := ParseKey(k); err != nil {
			return err
		}
	}
	if m == nil {
		m = make(map[string]bool)
	}
	l.done = m
	return nil
}
