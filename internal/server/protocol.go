package server

import (
	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/progress"
)

// Intent types a client may send.
const (
	IntentState             = "state"
	IntentSelectTopic       = "select_topic"
	IntentBackToTopics      = "back_to_topics"
	IntentSelectChapter     = "select_chapter"
	IntentNavigate          = "navigate"
	IntentChapterContent    = "chapter_content"
	IntentStartQuiz         = "start_quiz"
	IntentCompleteQuiz      = "complete_quiz"
	IntentBackToTopicDetail = "back_to_topic_detail"
	IntentAddTopic          = "add_topic"
	IntentResetProgress     = "reset_progress"
	IntentSearch            = "search"
)

// Reply types the server sends.
const (
	ReplyState          = "state"
	ReplyError          = "error"
	ReplySearchResults  = "search_results"
	ReplyChapterContent = "chapter_content"
	ReplyTopicAdded     = "topic_added"
)

// Error codes carried by error replies.
const (
	CodeBadRequest           = "bad_request"
	CodeInvalidTransition    = "invalid_transition"
	CodeInvalidPath          = "invalid_path"
	CodeGenerationFailed     = "generation_failed"
	CodeGenerationInProgress = "generation_in_progress"
	CodeResetNotConfirmed    = "reset_not_confirmed"
	CodeUnavailable          = "unavailable"
	CodeInternal             = "internal"
)

// Intent is one client message. Only the fields the type needs are read.
type Intent struct {
	Type      string       `json:"type"`
	Topic     *int         `json:"topicIdx,omitempty"`
	Path      *course.Path `json:"path,omitempty"`
	Direction string       `json:"direction,omitempty"`
	Content   string       `json:"content,omitempty"`
	Title     string       `json:"title,omitempty"`
	Query     string       `json:"query,omitempty"`
	Confirmed bool         `json:"confirmed,omitempty"`
}

// ViewState renders a navigation view for the client.
type ViewState struct {
	Name      string             `json:"name"`
	Topic     *int               `json:"topicIdx,omitempty"`
	Location  *course.Location   `json:"location,omitempty"`
	Questions []content.Question `json:"questions,omitempty"`
}

// Reply is one server message.
type Reply struct {
	Type     string                  `json:"type"`
	Session  string                  `json:"session,omitempty"`
	View     *ViewState              `json:"view,omitempty"`
	Moved    *bool                   `json:"moved,omitempty"`
	Tree     course.Tree             `json:"tree,omitempty"`
	Topics   []progress.TopicSummary `json:"topics,omitempty"`
	Progress map[string]bool         `json:"progress,omitempty"`
	Results  []course.Location       `json:"results,omitempty"`
	Topic    *course.Topic           `json:"topic,omitempty"`
	Content  string                  `json:"content,omitempty"`
	Code     string                  `json:"code,omitempty"`
	Error    string                  `json:"error,omitempty"`
}
