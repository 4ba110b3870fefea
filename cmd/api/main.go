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

	"github.com/heartkeylab/heartkey/backend/internal/config"
	"github.com/heartkeylab/heartkey/backend/internal/handler"
	"github.com/heartkeylab/heartkey/backend/internal/handler/live"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
	"github.com/heartkeylab/heartkey/backend/internal/service/counsel"
	sessionService "github.com/heartkeylab/heartkey/backend/internal/service/session"
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

	personaStore := persona.NewMemoryStore(persona.Seed())

	// Initialize the counselor model client
	client := counsel.Disabled()
	if cfg.AI.Enabled() {
		client, err = counsel.NewClient(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize counsel client: %v", err)
			log.Println("continuing with degraded sessions - 請檢查模型供應商的環境變數")
			client = counsel.Disabled()
		} else {
			log.Printf("counsel client initialized, provider=%s", cfg.AI.Provider)
		}
	} else {
		log.Println("模型憑證未配置，會話將以降級模式運作")
	}

	hub := live.NewHub()
	sessions := sessionService.NewService(personaStore, client, hub)

	router := handler.NewRouter(personaStore, sessions, hub)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("HeartKey backend listening on %s", addr)
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
