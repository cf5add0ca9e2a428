// Package server exposes the course over HTTP: health probes, a progress
// report download and WebSocket navigation sessions.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-course/internal/events"
	"github.com/p-n-ai/pai-course/internal/navigation"
	"github.com/p-n-ai/pai-course/internal/report"
)

const (
	checkTimeout = 2 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = 64 << 10
)

// Check reports whether a dependency is ready.
type Check func(ctx context.Context) error

// Config holds dependencies for a Server.
type Config struct {
	Workspace      *navigation.Workspace
	Generator      Generator        // nil disables chapter and quiz generation
	Events         events.Logger    // nil drops events
	Checks         map[string]Check // run by /readyz
	AllowedOrigins []string         // extra WebSocket origins besides the request host
	Logger         *slog.Logger
	Now            func() time.Time
}

// Server serves the course HTTP routes.
type Server struct {
	ws      *navigation.Workspace
	gen     Generator
	events  events.Logger
	checks  map[string]Check
	origins []string
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a Server from cfg.
func New(cfg Config) *Server {
	s := &Server{
		ws:      cfg.Workspace,
		gen:     cfg.Generator,
		events:  cfg.Events,
		checks:  cfg.Checks,
		origins: cfg.AllowedOrigins,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /report.xlsx", s.handleReport)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	failed := make(map[string]string)
	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			failed[name] = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if len(failed) > 0 {
		s.logger.Warn("readiness check failed", "failed", failed)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := report.Write(&buf, s.ws.Tree(), s.ws.Ledger(), s.now()); err != nil {
		s.logger.Error("failed to build progress report", "error", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	sess := NewSession(s.ws, s.gen, s.events, s.logger)
	s.serve(r.Context(), conn, sess)
	conn.Close(websocket.StatusNormalClosure, "")
}

// serve runs one session until the peer disconnects or ctx ends. Intents are
// handled in order; add_topic runs in the background so the learner can keep
// navigating while it generates.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, sess *Session) {
	var (
		wmu sync.Mutex
		wg  sync.WaitGroup
	)
	send := func(rep Reply) error {
		wmu.Lock()
		defer wmu.Unlock()
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return wsjson.Write(wctx, conn, rep)
	}
	sess.Started(ctx)
	defer sess.Ended(context.WithoutCancel(ctx))
	defer wg.Wait()

	if err := send(sess.Handle(ctx, Intent{Type: IntentState})); err != nil {
		return
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			s.logClosed(ctx, sess, err)
			return
		}
		if typ != websocket.MessageText {
			if err := send(badRequest("intents must be JSON text messages")); err != nil {
				return
			}
			continue
		}

		var in Intent
		if err := json.Unmarshal(data, &in); err != nil {
			if err := send(badRequest("malformed intent: " + err.Error())); err != nil {
				return
			}
			continue
		}

		if in.Type == IntentAddTopic {
			wg.Add(1)
			go func(title string) {
				defer wg.Done()
				if err := send(sess.AddTopic(ctx, title)); err != nil {
					sess.logger.Debug("topic reply not delivered", "error", err)
				}
			}(in.Title)
			continue
		}

		if err := send(sess.Handle(ctx, in)); err != nil {
			sess.logger.Debug("reply not delivered", "error", err)
			return
		}
	}
}

func (s *Server) logClosed(ctx context.Context, sess *Session, err error) {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	sess.logger.Warn("websocket read failed", "error", err)
}
