package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-course/internal/course"
)

// ErrInvalidTransition is returned when an event is not accepted in the
// current view. The view is left unchanged.
var ErrInvalidTransition = errors.New("invalid transition")

// Controller is one learner session's navigation state machine. It starts
// Idle and is not safe for concurrent use; each session handles one event
// at a time.
type Controller struct {
	ws     *Workspace
	view   View
	logger *slog.Logger
}

// NewController creates an Idle controller over ws.
func NewController(ws *Workspace, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{ws: ws, view: Idle{}, logger: logger}
}

// View returns the current view.
func (c *Controller) View() View {
	return c.view
}

// Workspace returns the shared course state the controller navigates.
func (c *Controller) Workspace() *Workspace {
	return c.ws
}

// SelectTopic opens the index of topic t. Valid from Idle.
func (c *Controller) SelectTopic(t int) error {
	if _, ok := c.view.(Idle); !ok {
		return c.reject("select_topic")
	}
	if !c.ws.HasTopic(t) {
		return fmt.Errorf("%w: topic %d", course.ErrInvalidPath, t)
	}
	c.set("select_topic", TopicOpen{Topic: t})
	return nil
}

// BackToTopics returns from a topic index to the topics list.
func (c *Controller) BackToTopics() error {
	if _, ok := c.view.(TopicOpen); !ok {
		return c.reject("back_to_topics")
	}
	c.set("back_to_topics", Idle{})
	return nil
}

// SelectChapter opens the chapter at p. Valid from Idle (search results),
// TopicOpen and ChapterOpen; not while a quiz is running.
func (c *Controller) SelectChapter(p course.Path) error {
	switch c.view.(type) {
	case Idle, TopicOpen, ChapterOpen:
	default:
		return c.reject("select_chapter")
	}
	if !c.ws.Valid(p) {
		return fmt.Errorf("%w: %s", course.ErrInvalidPath, p)
	}
	c.set("select_chapter", ChapterOpen{Path: p})
	return nil
}

// Navigate moves to the next or previous chapter. At either end of the
// course it reports false and leaves the view unchanged. It never records
// completion.
func (c *Controller) Navigate(d course.Direction) (bool, error) {
	cur, ok := c.view.(ChapterOpen)
	if !ok {
		return false, c.reject("navigate")
	}
	next, moved := c.ws.Step(cur.Path, d)
	if !moved {
		c.logger.Debug("navigation at course boundary", "path", cur.Path.String(), "direction", string(d))
		return false, nil
	}
	c.set("navigate", ChapterOpen{Path: next})
	return true, nil
}

// StartQuiz detours into a quiz for the open chapter p. chapterContent is
// passed through untouched.
func (c *Controller) StartQuiz(p course.Path, chapterContent string) error {
	cur, ok := c.view.(ChapterOpen)
	if !ok || cur.Path != p {
		return c.reject("start_quiz")
	}
	c.set("start_quiz", QuizOpen{Path: p, Content: chapterContent})
	return nil
}

// CompleteQuiz ends the quiz and reopens the chapter that spawned it.
// Progress is not touched.
func (c *Controller) CompleteQuiz() error {
	q, ok := c.view.(QuizOpen)
	if !ok {
		return c.reject("complete_quiz")
	}
	c.set("complete_quiz", ChapterOpen{Path: q.Path})
	return nil
}

// BackToTopicDetail leaves the open chapter for its topic index. Leaving is
// what marks the chapter complete.
func (c *Controller) BackToTopicDetail(ctx context.Context) error {
	cur, ok := c.view.(ChapterOpen)
	if !ok {
		return c.reject("back_to_topic_detail")
	}
	if err := c.ws.MarkComplete(ctx, cur.Path); err != nil {
		return err
	}
	c.set("back_to_topic_detail", TopicOpen{Topic: cur.Path.Topic})
	return nil
}

func (c *Controller) set(event string, v View) {
	c.logger.Debug("view transition", "event", event, "from", c.view.Name(), "to", v.Name())
	c.view = v
}

func (c *Controller) reject(event string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, c.view.Name())
}
