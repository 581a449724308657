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

	"github.com/zhouzirui/trade-trigger/internal/config"
	"github.com/zhouzirui/trade-trigger/internal/handler"
	"github.com/zhouzirui/trade-trigger/internal/service/agent"
	"github.com/zhouzirui/trade-trigger/internal/service/inbox"
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

	inboxSvc := inbox.NewService()

	var replier agent.Replier = agent.StaticReplier(agent.WaitReply)
	if cfg.AI.Enabled() {
		agentSvc, err := agent.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize agent model: %v", err)
			log.Println("continuing with static replies")
		} else {
			replier = agentSvc
			log.Println("agent model initialized successfully")
		}
	} else {
		log.Println("ark credentials not configured, agent answers with static replies")
	}

	router := handler.NewRouter(inboxSvc, replier)

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

	log.Printf("messaging dev server listening on %s", addr)
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
