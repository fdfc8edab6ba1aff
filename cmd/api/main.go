package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thunderhug/api/internal/config"
	"thunderhug/api/internal/ingest"
	"thunderhug/api/internal/remoteconfig"
	"thunderhug/api/internal/sessions"
	"thunderhug/api/internal/store"
	"thunderhug/api/internal/web"
)

func main() {
	cfg := config.Load()

	st, err := store.Open(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncer := remoteconfig.NewSyncer(st, cfg.PollInterval, cfg.Debug)
	go syncer.Run(ctx)

	if cfg.IngestCmd != "" {
		runner := ingest.New(cfg.IngestCmd, cfg.IngestInterval, cfg.Debug)
		go runner.Run(ctx)
	}

	catalog := sessions.NewCatalog(syncer.Index())
	service := sessions.NewService(st, catalog)
	service.Verbose = cfg.Debug

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.New(service, cfg.Debug).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Thunderhug API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
