// Package course holds the three-level content tree (topic, subtopic, chapter)
// and the index arithmetic used to move through it.
package course

import "fmt"

// Chapter is a leaf of the course tree. Its identity is its Path.
type Chapter struct {
	Title string `json:"title" yaml:"title"`
}

// Subtopic groups an ordered, non-empty list of chapters.
type Subtopic struct {
	Title    string    `json:"title" yaml:"title"`
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
}

// Topic groups an ordered list of subtopics.
type Topic struct {
	Title     string     `json:"title" yaml:"title"`
	Subtopics []Subtopic `json:"subtopics" yaml:"subtopics"`
}

// Tree is the ordered list of topics making up the course.
type Tree []Topic

// Path addresses one chapter by its three zero-based indices.
type Path struct {
	Topic    int `json:"topicIdx"`
	Subtopic int `json:"subtopicIdx"`
	Chapter  int `json:"chapterIdx"`
}

func (p Path) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.Topic, p.Subtopic, p.Chapter)
}

// Valid reports whether all three indices of p are in range for t.
func (t Tree) Valid(p Path) bool {
	if p.Topic < 0 || p.Topic >= len(t) {
		return false
	}
	subs := t[p.Topic].Subtopics
	if p.Subtopic < 0 || p.Subtopic >= len(subs) {
		return false
	}
	return p.Chapter >= 0 && p.Chapter < len(subs[p.Subtopic].Chapters)
}

// HasTopic reports whether idx addresses a topic in t.
func (t Tree) HasTopic(idx int) bool {
	return idx >= 0 && idx < len(t)
}

// Count returns the total number of chapters in the tree.
func (t Tree) Count() int {
	n := 0
	for _, topic := range t {
		n += topic.ChapterCount()
	}
	return n
}

// ChapterCount returns the number of chapters across all subtopics of the topic.
func (t Topic) ChapterCount() int {
	n := 0
	for _, s := range t.Subtopics {
		n += len(s.Chapters)
	}
	return n
}

// Location carries the titles along a path, as shown in search results and headers.
type Location struct {
	Path          Path   `json:"path"`
	TopicTitle    string `json:"topicTitle"`
	SubtopicTitle string `json:"subtopicTitle"`
	ChapterTitle  string `json:"chapterTitle"`
}

// Locate returns the titles along p.
func (t Tree) Locate(p Path) (Location, error) {
	if !t.Valid(p) {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	topic := t[p.Topic]
	sub := topic.Subtopics[p.Subtopic]
	return Location{
		Path:          p,
		TopicTitle:    topic.Title,
		SubtopicTitle: sub.Title,
		ChapterTitle:  sub.Chapters[p.Chapter].Title,
	}, nil
}

// Clone returns a deep copy of t, so callers can hand out snapshots without
// sharing backing arrays with the live tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for i, topic := range t {
		out[i] = topic.Clone()
	}
	return out
}

// Clone returns a deep copy of the topic.
func (t Topic) Clone() Topic {
	subs := make([]Subtopic, len(t.Subtopics))
	for i, s := range t.Subtopics {
		subs[i] = Subtopic{
			Title:    s.Title,
			Chapters: append([]Chapter(nil), s.Chapters...),
		}
	}
	return Topic{Title: t.Title, Subtopics: subs}
}

// WellFormed reports whether every level of the tree is non-empty. Path
// arithmetic is only defined on well-formed trees.
func (t Tree) WellFormed() bool {
	if len(t) == 0 {
		return false
	}
	for _, topic := range t {
		if !topic.WellFormed() {
			return false
		}
	}
	return true
}

// WellFormed reports whether the topic has at least one subtopic and every
// subtopic has at least one chapter.
func (t Topic) WellFormed() bool {
	if len(t.Subtopics) == 0 {
		return false
	}
	for _, s := range t.Subtopics {
		if len(s.Chapters) == 0 {
			return false
		}
	}
	return true
}
