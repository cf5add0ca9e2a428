// Package content asks the AI gateway for course material: topic outlines,
// chapter text and quiz questions.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-course/internal/ai"
	"github.com/p-n-ai/pai-course/internal/course"
)

// ErrEmptyResponse is returned when the model answers with nothing usable.
var ErrEmptyResponse = errors.New("empty generation response")

// Question is one multiple-choice quiz question.
type Question struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// Generator produces course material through an AI completer.
type Generator struct {
	ai            ai.Completer
	quizQuestions int
}

// Option configures a Generator.
type Option func(*Generator)

// WithQuizQuestions sets how many questions a quiz asks for.
func WithQuizQuestions(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.quizQuestions = n
		}
	}
}

// NewGenerator creates a Generator backed by c.
func NewGenerator(c ai.Completer, opts ...Option) *Generator {
	g := &Generator{ai: c, quizQuestions: 5}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

const breakdownPrompt = `You design short self-study courses.
Given a topic title, return a JSON object {"subtopics": [...]} where each subtopic is
{"title": string, "chapters": [{"title": string}, ...]}.
Use 2 to 4 subtopics with 3 to 4 chapters each, ordered from fundamentals to advanced.
Return only the JSON object.`

// GenerateBreakdown returns the subtopics and chapters for a new topic.
// An empty result is reported as ErrEmptyResponse.
func (g *Generator) GenerateBreakdown(ctx context.Context, title string) ([]course.Subtopic, error) {
	resp, err := g.ai.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: breakdownPrompt},
			{Role: "user", Content: "Topic: " + title},
		},
		Task:      ai.TaskBreakdown,
		JSON:      true,
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("generate breakdown: %w", err)
	}

	raw := stripFences(resp.Content)
	var subs []course.Subtopic

	// Models return either the wrapped object or a bare array.
	var wrapped struct {
		Subtopics []course.Subtopic `json:"subtopics"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		subs = wrapped.Subtopics
	} else if err := json.Unmarshal([]byte(raw), &subs); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}

	if len(subs) == 0 {
		return nil, ErrEmptyResponse
	}
	slog.Debug("breakdown generated", "title", title, "subtopics", len(subs), "tokens", resp.TotalTokens())
	return subs, nil
}

// GenerateChapter writes the body text of the chapter at loc.
func (g *Generator) GenerateChapter(ctx context.Context, loc course.Location) (string, error) {
	resp, err := g.ai.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: "You are a patient tutor. Write a clear, self-contained lesson in Markdown with short examples."},
			{Role: "user", Content: fmt.Sprintf("Course: %s\nSection: %s\nLesson: %s", loc.TopicTitle, loc.SubtopicTitle, loc.ChapterTitle)},
		},
		Task:      ai.TaskChapter,
		MaxTokens: 2048,
	})
	if err != nil {
		return "", fmt.Errorf("generate chapter: %w", err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateQuiz asks for multiple-choice questions about chapterContent.
// Malformed questions are dropped; ErrEmptyResponse means none survived.
func (g *Generator) GenerateQuiz(ctx context.Context, chapterContent string) ([]Question, error) {
	resp, err := g.ai.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: fmt.Sprintf(`Write %d multiple-choice questions that test the lesson below.
Return a JSON object {"questions": [{"question": string, "options": [string, ...], "correctAnswerIndex": int, "explanation": string}]}.
Give each question 4 options. Return only the JSON object.`, g.quizQuestions)},
			{Role: "user", Content: chapterContent},
		},
		Task:      ai.TaskQuiz,
		JSON:      true,
		MaxTokens: 1536,
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var out struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &out); err != nil {
		return nil, fmt.Errorf("decode quiz: %w", err)
	}

	valid := out.Questions[:0]
	for _, q := range out.Questions {
		if q.Valid() {
			valid = append(valid, q)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyResponse
	}
	return valid, nil
}

// Valid reports whether the question has text, two or more options and an
// answer index inside the options.
func (q Question) Valid() bool {
	return strings.TrimSpace(q.Question) != "" &&
		len(q.Options) >= 2 &&
		q.CorrectAnswerIndex >= 0 && q.CorrectAnswerIndex < len(q.Options)
}

// stripFences removes a surrounding Markdown code fence, which some models
// add even when asked for bare JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
