package course_test

import (
	"testing"

	"github.com/p-n-ai/pai-course/internal/course"
)

func TestSearch(t *testing.T) {
	tr := course.Tree{
		{Title: "Cybersecurity", Subtopics: []course.Subtopic{
			{Title: "Fundamentals", Chapters: []course.Chapter{{Title: "Intro to Cryptography"}, {Title: "Threats"}}},
		}},
		{Title: "Cuisine", Subtopics: []course.Subtopic{
			{Title: "Pâtisserie", Chapters: []course.Chapter{{Title: "Crème brûlée"}}},
		}},
	}

	tests := []struct {
		name  string
		query string
		want  []course.Path
	}{
		{"chapter title, any case", "CRYPTO", []course.Path{{0, 0, 0}}},
		{"topic title matches all its chapters", "cyber", []course.Path{{0, 0, 0}, {0, 0, 1}}},
		{"accents ignored", "creme", []course.Path{{1, 0, 0}}},
		{"subtopic title", "patisserie", []course.Path{{1, 0, 0}}},
		{"blank", "   ", nil},
		{"no match", "kubernetes", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := course.Search(tr, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) returned %d results, want %d", tt.query, len(got), len(tt.want))
			}
			for i, loc := range got {
				if loc.Path != tt.want[i] {
					t.Errorf("result[%d].Path = %s, want %s", i, loc.Path, tt.want[i])
				}
			}
		})
	}
}
