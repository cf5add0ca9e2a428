package ai_test

import (
	"context"
	"testing"

	"github.com/p-n-ai/pai-course/internal/ai"
)

func TestMockProvider_Complete(t *testing.T) {
	mock := ai.NewMockProvider("test response")

	resp, err := mock.Complete(context.Background(), ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "user", Content: "Hello"},
		},
		Task: ai.TaskQuiz,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "test response" {
		t.Errorf("Content = %q, want %q", resp.Content, "test response")
	}
	if resp.Model != "mock" {
		t.Errorf("Model = %q, want %q", resp.Model, "mock")
	}
	if last := mock.LastRequest(); last == nil || last.Task != ai.TaskQuiz {
		t.Errorf("LastRequest() = %+v, want quiz task", last)
	}
}

func TestMockProvider_HealthCheck(t *testing.T) {
	mock := ai.NewMockProvider("response")
	if err := mock.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestTaskType_String(t *testing.T) {
	tests := []struct {
		task     ai.TaskType
		expected string
	}{
		{ai.TaskBreakdown, "breakdown"},
		{ai.TaskChapter, "chapter"},
		{ai.TaskQuiz, "quiz"},
		{ai.TaskType(42), "unknown"},
	}
	for _, tt := range tests {
		if tt.task.String() != tt.expected {
			t.Errorf("TaskType.String() = %q, want %q", tt.task.String(), tt.expected)
		}
	}
}

func TestParseTaskType(t *testing.T) {
	for _, task := range []ai.TaskType{ai.TaskBreakdown, ai.TaskChapter, ai.TaskQuiz} {
		got, ok := ai.ParseTaskType(task.String())
		if !ok || got != task {
			t.Errorf("ParseTaskType(%q) = %v, %v", task.String(), got, ok)
		}
	}
	for _, s := range []string{"", "unknown", "Quiz"} {
		if _, ok := ai.ParseTaskType(s); ok {
			t.Errorf("ParseTaskType(%q) should fail", s)
		}
	}
}

func TestCompletionResponse_TotalTokens(t *testing.T) {
	resp := ai.CompletionResponse{InputTokens: 100, OutputTokens: 50}
	if got := resp.TotalTokens(); got != 150 {
		t.Errorf("TotalTokens() = %d, want 150", got)
	}
}
