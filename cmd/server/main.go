package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/pai-course/internal/ai"
	"github.com/p-n-ai/pai-course/internal/content"
	"github.com/p-n-ai/pai-course/internal/course"
	"github.com/p-n-ai/pai-course/internal/events"
	"github.com/p-n-ai/pai-course/internal/navigation"
	"github.com/p-n-ai/pai-course/internal/platform/cache"
	"github.com/p-n-ai/pai-course/internal/platform/config"
	"github.com/p-n-ai/pai-course/internal/platform/database"
	"github.com/p-n-ai/pai-course/internal/platform/logging"
	"github.com/p-n-ai/pai-course/internal/server"
	"github.com/p-n-ai/pai-course/internal/storage"
)

// budgetKey is the single token budget shared by all generation calls.
const budgetKey = "course"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	tree, err := loadTree(cfg.CoursePath)
	if err != nil {
		return err
	}

	wsCfg := navigation.WorkspaceConfig{
		Snapshots:   storage.NewSnapshots(be.store, cfg.Store.Namespace),
		DefaultTree: tree,
	}
	srvCfg := server.Config{
		Events:         be.events,
		Checks:         be.checks,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	router := newAIRouter(cfg)
	if router.HasProvider() {
		gen := content.NewGenerator(newCompleter(router, cfg.AI.TokenBudget),
			content.WithQuizQuestions(cfg.Content.QuizQuestions))
		wsCfg.Generator = gen
		srvCfg.Generator = gen
		srvCfg.Checks["ai"] = router.HealthCheck
	} else {
		slog.Warn("no AI provider configured, topic growth and quizzes are disabled")
	}

	ws, err := navigation.OpenWorkspace(ctx, wsCfg)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	srvCfg.Workspace = ws
	srv := server.New(srvCfg)

	// No read or write timeouts: they would cut long-lived WebSocket sessions.
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", httpSrv.Addr, "store", cfg.Store.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// backend is the opened snapshot store with its readiness checks and event sink.
type backend struct {
	store  storage.BlobStore
	events events.Logger
	checks map[string]server.Check
	close  func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	be := &backend{
		events: events.NewSlogLogger(slog.Default()),
		checks: make(map[string]server.Check),
		close:  func() {},
	}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		be.store = storage.NewMemoryStore()

	case config.BackendSQLite:
		s, err := storage.NewSQLiteStore(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		be.store = s
		be.checks["store"] = s.HealthCheck
		be.close = func() {
			if err := s.Close(); err != nil {
				slog.Warn("failed to close sqlite store", "error", err)
			}
		}

	case config.BackendPostgres:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s, err := db.BlobStore(ctx)
		if err != nil {
			db.Close()
			return nil, err
		}
		ev, err := events.NewPostgresLogger(ctx, db.Pool)
		if err != nil {
			db.Close()
			return nil, err
		}
		be.store = s
		be.events = ev
		be.checks["database"] = db.HealthCheck
		be.close = db.Close

	case config.BackendRedis:
		c, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		be.store = c.BlobStore()
		be.checks["cache"] = c.HealthCheck
		be.close = func() {
			if err := c.Close(); err != nil {
				slog.Warn("failed to close cache", "error", err)
			}
		}

	default:
		return nil, errors.New("unknown store backend: " + cfg.Store.Backend)
	}

	slog.Info("store opened", "backend", cfg.Store.Backend, "namespace", cfg.Store.Namespace)
	return be, nil
}

// loadTree returns the built-in course unless path names a replacement.
func loadTree(path string) (course.Tree, error) {
	if path == "" {
		return course.Default(), nil
	}
	t, err := course.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Info("course loaded", "path", path, "topics", len(t), "chapters", t.Count())
	return t, nil
}

func newAIRouter(cfg *config.Config) *ai.Router {
	router := ai.NewRouter()
	if cfg.AI.Google.APIKey != "" {
		router.Register(config.ProviderGoogle, ai.NewGoogleProvider(cfg.AI.Google.APIKey,
			ai.WithGoogleModel(cfg.AI.Google.Model)))
	}
	if cfg.AI.Ollama.Enabled {
		router.Register(config.ProviderOllama, ai.NewOllamaProvider(cfg.AI.Ollama.URL,
			ai.WithOllamaModel(cfg.AI.Ollama.Model)))
	}
	applyPreferences(router, cfg.AI.Prefer)
	return router
}

// applyPreferences sets the first provider tried per task. Unknown task
// names are skipped; Validate has already rejected them.
func applyPreferences(router *ai.Router, prefer map[string]string) {
	for name, provider := range prefer {
		task, ok := ai.ParseTaskType(name)
		if !ok {
			continue
		}
		router.Prefer(task, provider)
		slog.Info("AI provider preference", "task", name, "provider", provider)
	}
}

// newCompleter caps total token use when budget is positive.
func newCompleter(router *ai.Router, budget int) ai.Completer {
	if budget <= 0 {
		return router
	}
	b := ai.NewInMemoryBudget()
	b.SetBudget(budgetKey, int64(budget))
	return ai.NewBudgeted(router, b, budgetKey)
}
