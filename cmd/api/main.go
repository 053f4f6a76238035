package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/opencodex/codex-web/backend/internal/config"
	"github.com/opencodex/codex-web/backend/internal/handler"
	"github.com/opencodex/codex-web/backend/internal/model/settings"
	"github.com/opencodex/codex-web/backend/internal/service/ai"
	chatservice "github.com/opencodex/codex-web/backend/internal/service/chat"
	"github.com/opencodex/codex-web/backend/internal/service/decision"
	"github.com/opencodex/codex-web/backend/internal/service/turn"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	settingsStore, err := newSettingsStore(cfg.Settings)
	if err != nil {
		log.Fatalf("failed to initialize settings store: %v", err)
	}

	chatService := chatservice.NewService()
	reconciler := decision.New(chatService)

	backend, err := newBackend(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize turn backend: %v", err)
	}

	coordinator := turn.New(backend, chatService, reconciler)
	router := handler.NewRouter(chatService, coordinator, reconciler, settingsStore)

	startServer(ctx, cfg.Server, router)
}

func newSettingsStore(cfg config.SettingsConfig) (settings.Store, error) {
	if cfg.Path == "" {
		log.Println("no settings file configured, keeping settings in memory")
		return settings.NewMemoryStore(settings.Defaults()), nil
	}

	store, err := settings.NewFileStore(cfg.Path)
	if err != nil {
		return nil, err
	}
	log.Printf("settings loaded from %s", cfg.Path)
	return store, nil
}

func newBackend(ctx context.Context, cfg config.AIConfig) (ai.Backend, error) {
	if !cfg.Enabled() {
		log.Println("Ark credentials not configured, using simulated backend")
		return ai.NewSimulatedBackend(), nil
	}

	backend, err := ai.NewModelBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Ark model backend initialized successfully")
	return backend, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Open Codex Web backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
