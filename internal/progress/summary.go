package progress

import "github.com/p-n-ai/pai-course/internal/course"

// TopicSummary counts completed chapters within one topic.
type TopicSummary struct {
	Topic     int    `json:"topicIdx"`
	Title     string `json:"title"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Percent returns completion as a whole percentage.
func (s TopicSummary) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

// Summarize walks the tree and counts completions per topic. Ledger entries
// that do not address a chapter in the tree are ignored.
func Summarize(t course.Tree, l *Ledger) []TopicSummary {
	out := make([]TopicSummary, len(t))
	for ti, topic := range t {
		s := TopicSummary{Topic: ti, Title: topic.Title}
		for si, sub := range topic.Subtopics {
			for ci := range sub.Chapters {
				s.Total++
				if l.IsComplete(course.Path{Topic: ti, Subtopic: si, Chapter: ci}) {
					s.Completed++
				}
			}
		}
		out[ti] = s
	}
	return out
}
