package navigation

import "github.com/p-n-ai/pai-course/internal/course"

// View is what the learner is looking at. Exactly one variant is active:
// Idle, TopicOpen, ChapterOpen or QuizOpen.
type View interface {
	Name() string
	isView()
}

// Idle is the topics list; nothing is open.
type Idle struct{}

// TopicOpen shows the index of one topic.
type TopicOpen struct {
	Topic int
}

// ChapterOpen shows one chapter.
type ChapterOpen struct {
	Path course.Path
}

// QuizOpen runs the quiz spawned from the chapter at Path. Content is the
// chapter text the quiz was generated from.
type QuizOpen struct {
	Path    course.Path
	Content string
}

func (Idle) Name() string        { return "idle" }
func (TopicOpen) Name() string   { return "topic" }
func (ChapterOpen) Name() string { return "chapter" }
func (QuizOpen) Name() string    { return "quiz" }

func (Idle) isView()        {}
func (TopicOpen) isView()   {}
func (ChapterOpen) isView() {}
func (QuizOpen) isView()    {}
