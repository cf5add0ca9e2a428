package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/events"
	"github.com/p-n-ai/pai-course/internal/navigation"
	"github.com/p-n-ai/pai-course/internal/progress"
)

// Generator produces chapter text and quiz questions for a session.
type Generator interface {
	GenerateChapter(ctx context.Context, loc course.Location) (string, error)
	GenerateQuiz(ctx context.Context, chapterContent string) ([]content.Question, error)
}

// Session is one learner connection: a navigation controller plus the quiz
// questions for the running quiz. Handle must not be called concurrently;
// AddTopic may run alongside it.
type Session struct {
	id        string
	ctrl      *navigation.Controller
	gen       Generator
	events    events.Logger
	logger    *slog.Logger
	questions []content.Question
}

// NewSession starts an Idle session over ws. gen may be nil, in which case
// chapter text must come from the client and quizzes have no questions.
func NewSession(ws *navigation.Workspace, gen Generator, ev events.Logger, logger *slog.Logger) *Session {
	if ev == nil {
		ev = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger = logger.With("session_id", id)
	return &Session{
		id:     id,
		ctrl:   navigation.NewController(ws, logger),
		gen:    gen,
		events: ev,
		logger: logger,
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Handle applies one intent and returns the reply. Rejected intents leave
// the view unchanged and produce an error reply.
func (s *Session) Handle(ctx context.Context, in Intent) Reply {
	switch in.Type {
	case IntentState:
		return s.state()

	case IntentSelectTopic:
		if in.Topic == nil {
			return badRequest("topicIdx is required")
		}
		return s.apply(s.ctrl.SelectTopic(*in.Topic))

	case IntentBackToTopics:
		return s.apply(s.ctrl.BackToTopics())

	case IntentSelectChapter:
		if in.Path == nil {
			return badRequest("path is required")
		}
		return s.apply(s.ctrl.SelectChapter(*in.Path))

	case IntentNavigate:
		d, err := course.ParseDirection(in.Direction)
		if err != nil {
			return badRequest(err.Error())
		}
		moved, err := s.ctrl.Navigate(d)
		if err != nil {
			return s.fail(err)
		}
		r := s.state()
		r.Moved = &moved
		return r

	case IntentChapterContent:
		return s.chapterContent(ctx)

	case IntentStartQuiz:
		return s.startQuiz(ctx, in)

	case IntentCompleteQuiz:
		q, _ := s.ctrl.View().(navigation.QuizOpen)
		if err := s.ctrl.CompleteQuiz(); err != nil {
			return s.fail(err)
		}
		s.questions = nil
		s.record(ctx, events.QuizCompleted, map[string]any{"path": progress.Key(q.Path)})
		return s.state()

	case IntentBackToTopicDetail:
		ch, _ := s.ctrl.View().(navigation.ChapterOpen)
		if err := s.ctrl.BackToTopicDetail(ctx); err != nil {
			return s.fail(err)
		}
		s.record(ctx, events.ChapterCompleted, map[string]any{"path": progress.Key(ch.Path)})
		return s.state()

	case IntentAddTopic:
		return s.AddTopic(ctx, in.Title)

	case IntentResetProgress:
		if err := s.ctrl.Workspace().ResetProgress(ctx, in.Confirmed); err != nil {
			return s.fail(err)
		}
		s.record(ctx, events.ProgressReset, nil)
		return s.state()

	case IntentSearch:
		return Reply{
			Type:    ReplySearchResults,
			Results: s.ctrl.Workspace().Search(in.Query),
		}

	default:
		return badRequest(fmt.Sprintf("unknown intent %q", in.Type))
	}
}

// AddTopic generates and appends a topic. It touches only the shared
// workspace, so it may run while Handle serves other intents.
func (s *Session) AddTopic(ctx context.Context, title string) Reply {
	topic, err := s.ctrl.Workspace().AddTopic(ctx, title)
	if err != nil {
		return s.fail(err)
	}
	s.record(ctx, events.TopicAdded, map[string]any{
		"title":    topic.Title,
		"chapters": topic.ChapterCount(),
	})
	ws := s.ctrl.Workspace()
	return Reply{
		Type:   ReplyTopicAdded,
		Topic:  &topic,
		Tree:   ws.Tree(),
		Topics: ws.Summaries(),
	}
}

// Started and Ended bracket the session in the event log.
func (s *Session) Started(ctx context.Context) {
	s.logger.Info("session started")
	s.record(ctx, events.SessionStarted, nil)
}

func (s *Session) Ended(ctx context.Context) {
	s.logger.Info("session ended", "view", s.ctrl.View().Name())
	s.record(ctx, events.SessionEnded, nil)
}

func (s *Session) chapterContent(ctx context.Context) Reply {
	ch, ok := s.ctrl.View().(navigation.ChapterOpen)
	if !ok {
		return s.fail(fmt.Errorf("%w: chapter_content from %s", navigation.ErrInvalidTransition, s.ctrl.View().Name()))
	}
	if s.gen == nil {
		return errorReply(CodeUnavailable, "content generation is not configured")
	}
	loc, err := s.ctrl.Workspace().Locate(ch.Path)
	if err != nil {
		return s.fail(err)
	}
	text, err := s.gen.GenerateChapter(ctx, loc)
	if err != nil {
		s.logger.Warn("chapter generation failed", "path", ch.Path.String(), "error", err)
		return errorReply(CodeGenerationFailed, err.Error())
	}
	r := s.state()
	r.Type = ReplyChapterContent
	r.Content = text
	return r
}

// startQuiz opens a quiz for the open chapter. Missing chapter text is
// generated first; questions are generated when a generator is configured.
// Any generation failure leaves the chapter open.
func (s *Session) startQuiz(ctx context.Context, in Intent) Reply {
	cur, ok := s.ctrl.View().(navigation.ChapterOpen)
	p := cur.Path
	if in.Path != nil {
		p = *in.Path
	}
	if !ok || cur.Path != p {
		return s.fail(s.ctrl.StartQuiz(p, in.Content))
	}

	text := in.Content
	var questions []content.Question
	if s.gen != nil {
		if text == "" {
			loc, err := s.ctrl.Workspace().Locate(p)
			if err != nil {
				return s.fail(err)
			}
			if text, err = s.gen.GenerateChapter(ctx, loc); err != nil {
				s.logger.Warn("chapter generation failed", "path", p.String(), "error", err)
				return errorReply(CodeGenerationFailed, err.Error())
			}
		}
		qs, err := s.gen.GenerateQuiz(ctx, text)
		if err != nil {
			s.logger.Warn("quiz generation failed", "path", p.String(), "error", err)
			return errorReply(CodeGenerationFailed, err.Error())
		}
		questions = qs
	}

	if err := s.ctrl.StartQuiz(p, text); err != nil {
		return s.fail(err)
	}
	s.questions = questions
	s.record(ctx, events.QuizStarted, map[string]any{
		"path":      progress.Key(p),
		"questions": len(questions),
	})
	return s.state()
}

func (s *Session) state() Reply {
	ws := s.ctrl.Workspace()
	return Reply{
		Type:     ReplyState,
		Session:  s.id,
		View:     s.render(),
		Tree:     ws.Tree(),
		Topics:   ws.Summaries(),
		Progress: ws.Ledger().Entries(),
	}
}

func (s *Session) render() *ViewState {
	v := s.ctrl.View()
	out := &ViewState{Name: v.Name()}
	switch v := v.(type) {
	case navigation.TopicOpen:
		out.Topic = &v.Topic
	case navigation.ChapterOpen:
		if loc, err := s.ctrl.Workspace().Locate(v.Path); err == nil {
			out.Location = &loc
		}
	case navigation.QuizOpen:
		if loc, err := s.ctrl.Workspace().Locate(v.Path); err == nil {
			out.Location = &loc
		}
		out.Questions = s.questions
	}
	return out
}

func (s *Session) apply(err error) Reply {
	if err != nil {
		return s.fail(err)
	}
	return s.state()
}

func (s *Session) fail(err error) Reply {
	code := errorCode(err)
	if code == CodeInternal {
		s.logger.Error("intent failed", "error", err)
	} else {
		s.logger.Debug("intent rejected", "code", code, "error", err)
	}
	return errorReply(code, err.Error())
}

func (s *Session) record(ctx context.Context, typ string, data map[string]any) {
	err := s.events.LogEvent(ctx, events.Event{SessionID: s.id, Type: typ, Data: data})
	if err != nil {
		s.logger.Warn("failed to log event", "type", typ, "error", err)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, navigation.ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, course.ErrInvalidPath):
		return CodeInvalidPath
	case errors.Is(err, navigation.ErrGenerationInProgress):
		return CodeGenerationInProgress
	case errors.Is(err, navigation.ErrGenerationFailed):
		return CodeGenerationFailed
	case errors.Is(err, progress.ErrResetNotConfirmed):
		return CodeResetNotConfirmed
	default:
		return CodeInternal
	}
}

func errorReply(code, msg string) Reply {
	return Reply{Type: ReplyError, Code: code, Error: msg}
}

func badRequest(msg string) Reply {
	return errorReply(CodeBadRequest, msg)
}
