package course

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Search returns every chapter whose chapter, subtopic or topic title
// contains query, in tree order. Matching ignores case and accents.
// A blank query matches nothing.
func Search(t Tree, query string) []Location {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var results []Location
	for ti, topic := range t {
		topicHit := strings.Contains(fold(topic.Title), q)
		for si, sub := range topic.Subtopics {
			subHit := topicHit || strings.Contains(fold(sub.Title), q)
			for ci, ch := range sub.Chapters {
				if subHit || strings.Contains(fold(ch.Title), q) {
					results = append(results, Location{
						Path:          Path{Topic: ti, Subtopic: si, Chapter: ci},
						TopicTitle:    topic.Title,
						SubtopicTitle: sub.Title,
						ChapterTitle:  ch.Title,
					})
				}
			}
		}
	}
	return results
}

func fold(s string) string {
	// Casers and transformers carry state, so each call builds its own.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(strip, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}
