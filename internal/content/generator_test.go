package content_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/p-n-ai/pai-course/internal/ai"
	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/course"
)

func TestGenerateBreakdown(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantSubs  int
		wantErr   bool
		wantEmpty bool
	}{
		{
			name:     "wrapped object",
			response: `{"subtopics":[{"title":"Basics","chapters":[{"title":"Hello"},{"title":"Types"}]},{"title":"Advanced","chapters":[{"title":"Generics"}]}]}`,
			wantSubs: 2,
		},
		{
			name:     "bare array in fence",
			response: "```json\n[{\"title\":\"Basics\",\"chapters\":[{\"title\":\"Hello\"}]}]\n```",
			wantSubs: 1,
		},
		{name: "empty list", response: `{"subtopics":[]}`, wantErr: true, wantEmpty: true},
		{name: "not json", response: `Sure! Here is your outline`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := ai.NewMockProvider(tt.response)
			gen := content.NewGenerator(mock)

			subs, err := gen.GenerateBreakdown(context.Background(), "Go")
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateBreakdown() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantEmpty && !errors.Is(err, content.ErrEmptyResponse) {
				t.Errorf("error = %v, want ErrEmptyResponse", err)
			}
			if len(subs) != tt.wantSubs {
				t.Errorf("len(subs) = %d, want %d", len(subs), tt.wantSubs)
			}

			req := mock.LastRequest()
			if req.Task != ai.TaskBreakdown || !req.JSON {
				t.Errorf("request task=%s json=%v, want breakdown/json", req.Task, req.JSON)
			}
			if !strings.Contains(req.Messages[1].Content, "Go") {
				t.Errorf("prompt %q does not mention the title", req.Messages[1].Content)
			}
		})
	}
}

func TestGenerateBreakdown_ProviderError(t *testing.T) {
	gen := content.NewGenerator(&ai.MockProvider{Err: errors.New("quota")})
	if _, err := gen.GenerateBreakdown(context.Background(), "Go"); err == nil {
		t.Fatal("GenerateBreakdown() should fail when the provider fails")
	}
}

func TestGenerateChapter(t *testing.T) {
	mock := ai.NewMockProvider("  # Variables\n\nA variable names a value.  ")
	gen := content.NewGenerator(mock)

	text, err := gen.GenerateChapter(context.Background(), course.Location{
		TopicTitle: "Variables in Programming", SubtopicTitle: "Introduction", ChapterTitle: "What is a Variable?",
	})
	if err != nil {
		t.Fatalf("GenerateChapter() error = %v", err)
	}
	if !strings.HasPrefix(text, "# Variables") {
		t.Errorf("text = %q, want trimmed markdown", text)
	}
	if !strings.Contains(mock.LastRequest().Messages[1].Content, "What is a Variable?") {
		t.Error("prompt should name the chapter")
	}

	if _, err := content.NewGenerator(ai.NewMockProvider("   ")).GenerateChapter(context.Background(), course.Location{}); !errors.Is(err, content.ErrEmptyResponse) {
		t.Errorf("blank chapter error = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateQuiz(t *testing.T) {
	mock := ai.NewMockProvider(`{"questions":[
		{"question":"What is x?","options":["a","b","c","d"],"correctAnswerIndex":2,"explanation":"c"},
		{"question":"","options":["a","b"],"correctAnswerIndex":0},
		{"question":"Bad index","options":["a","b"],"correctAnswerIndex":5},
		{"question":"One option","options":["a"],"correctAnswerIndex":0}
	]}`)
	gen := content.NewGenerator(mock, content.WithQuizQuestions(3))

	qs, err := gen.GenerateQuiz(context.Background(), "A variable names a value.")
	if err != nil {
		t.Fatalf("GenerateQuiz() error = %v", err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswerIndex != 2 {
		t.Errorf("GenerateQuiz() = %+v, want the single valid question", qs)
	}
	if !strings.Contains(mock.LastRequest().Messages[0].Content, "Write 3 ") {
		t.Error("prompt should request the configured number of questions")
	}
}

func TestGenerateQuiz_NoneValid(t *testing.T) {
	gen := content.NewGenerator(ai.NewMockProvider(`{"questions":[]}`))
	if _, err := gen.GenerateQuiz(context.Background(), "text"); !errors.Is(err, content.ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}
