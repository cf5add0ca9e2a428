package course

import (
	"fmt"
	"log/slog"
)

// Direction selects which neighbour Step moves to.
type Direction string

const (
	Forward  Direction = "next"
	Backward Direction = "prev"
)

// ParseDirection accepts "next" or "prev".
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Forward, Backward:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Next returns the chapter after p, rolling over into the next subtopic and
// then the next topic. It returns false at the last chapter of the last topic.
func Next(t Tree, p Path) (Path, bool) {
	if !checkPath(t, p) {
		return p, false
	}
	switch {
	case p.Chapter < len(t[p.Topic].Subtopics[p.Subtopic].Chapters)-1:
		p.Chapter++
	case p.Subtopic < len(t[p.Topic].Subtopics)-1:
		p.Subtopic++
		p.Chapter = 0
	case p.Topic < len(t)-1:
		p.Topic++
		p.Subtopic = 0
		p.Chapter = 0
	default:
		return p, false
	}
	return p, true
}

// Prev returns the chapter before p. Rolling back a level lands on the last
// chapter of the previous subtopic (or topic). It returns false at (0,0,0).
func Prev(t Tree, p Path) (Path, bool) {
	if !checkPath(t, p) {
		return p, false
	}
	switch {
	case p.Chapter > 0:
		p.Chapter--
	case p.Subtopic > 0:
		p.Subtopic--
		p.Chapter = len(t[p.Topic].Subtopics[p.Subtopic].Chapters) - 1
	case p.Topic > 0:
		p.Topic--
		p.Subtopic = len(t[p.Topic].Subtopics) - 1
		p.Chapter = len(t[p.Topic].Subtopics[p.Subtopic].Chapters) - 1
	default:
		return p, false
	}
	return p, true
}

// Step moves one chapter in direction d.
func Step(t Tree, p Path, d Direction) (Path, bool) {
	if d == Backward {
		return Prev(t, p)
	}
	return Next(t, p)
}

// First returns the first chapter of the tree.
func First(t Tree) (Path, bool) {
	p := Path{}
	return p, t.Valid(p)
}

// Last returns the last chapter of the tree.
func Last(t Tree) (Path, bool) {
	if len(t) == 0 {
		return Path{}, false
	}
	ti := len(t) - 1
	si := len(t[ti].Subtopics) - 1
	if si < 0 {
		return Path{}, false
	}
	p := Path{Topic: ti, Subtopic: si, Chapter: len(t[ti].Subtopics[si].Chapters) - 1}
	return p, t.Valid(p)
}

// checkPath guards the locator against paths that were never validated.
// Debug builds treat that as a programming error.
func checkPath(t Tree, p Path) bool {
	if t.Valid(p) {
		return true
	}
	if debug {
		panic(fmt.Sprintf("course: %v %s", ErrInvalidPath, p))
	}
	slog.Error("locator received invalid path", "path", p.String(), "topics", len(t))
	return false
}
