package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/PabloGalante/todo-agent/internal/adapters/http"
	"github.com/PabloGalante/todo-agent/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/todo-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/todo-agent/internal/adapters/storage/memory"
	sqlitestore "github.com/PabloGalante/todo-agent/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/todo-agent/internal/app/agentflow"
	"github.com/PabloGalante/todo-agent/internal/app/conversation"
	"github.com/PabloGalante/todo-agent/internal/app/tasks"
	"github.com/PabloGalante/todo-agent/internal/app/tools"
	"github.com/PabloGalante/todo-agent/internal/config"
	"github.com/PabloGalante/todo-agent/internal/domain"
	"github.com/PabloGalante/todo-agent/internal/observability"
)

const shutdownTimeout = 10 * time.Second

type stores struct {
	conversations domain.ConversationStore
	messages      domain.MessageStore
	tasks         domain.TaskStore
	closer        io.Closer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := observability.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("todo api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := newModelClient(ctx, cfg, log)
	if err != nil {
		return err
	}

	st, err := newStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if st.closer != nil {
		defer st.closer.Close()
	}

	// Tasks → tool registry → dispatch loop → conversation service
	taskSvc := tasks.NewService(st.tasks)
	registry, err := tools.NewTaskRegistry(taskSvc)
	if err != nil {
		return fmt.Errorf("building tool registry: %w", err)
	}
	dispatcher := agentflow.NewDispatcher(model, registry, st.messages)
	convSvc := conversation.NewService(st.conversations, st.messages, dispatcher)

	// HTTP server
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpadapter.NewServer(convSvc, taskSvc, httpadapter.Options{
			DefaultUserID: cfg.DefaultUserID,
			CORSOrigin:    cfg.CORSOrigin,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("todo api listening", "addr", srv.Addr, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newModelClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (domain.ModelClient, error) {
	switch cfg.ModelProvider {
	case config.ProviderVertex:
		log.Info("using Vertex model client", "project", cfg.GCPProjectID, "location", cfg.GCPLocation)
		client, err := llm.NewVertexClient(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("initializing Vertex client: %w", err)
		}
		return client, nil

	case config.ProviderGemini:
		log.Info("using Gemini API model client")
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini client: %w", err)
		}
		return client, nil

	case config.ProviderOpenAI:
		log.Info("using OpenAI compatible model client", "base_url", cfg.OpenAIBaseURL)
		return llm.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ModelName), nil

	default:
		log.Info("using mock model client")
		return llm.NewMockModel(), nil
	}
}

func newStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.StorageBackend {
	case config.StorageFirestore:
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("initializing Firestore store: %w", err)
		}
		// 1 store, implements 3 interfaces
		return &stores{conversations: fsStore, messages: fsStore, tasks: fsStore, closer: fsStore}, nil

	case config.StorageSQLite:
		log.Info("using SQLite storage", "path", cfg.SQLitePath)
		db, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("initializing SQLite store: %w", err)
		}
		return &stores{conversations: db, messages: db, tasks: db, closer: db}, nil

	default:
		log.Info("using in-memory storage")
		return &stores{
			conversations: memstore.NewConversationStore(),
			messages:      memstore.NewMessageStore(),
			tasks:         memstore.NewTaskStore(),
		}, nil
	}
}
