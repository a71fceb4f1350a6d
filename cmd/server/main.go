package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/otabekh/minbar/internal/auth"
	"github.com/otabekh/minbar/internal/broadcast"
	"github.com/otabekh/minbar/internal/config"
	"github.com/otabekh/minbar/internal/feature"
	"github.com/otabekh/minbar/internal/filesystem"
	"github.com/otabekh/minbar/internal/handlers"
	"github.com/otabekh/minbar/internal/ingest"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/media"
	"github.com/otabekh/minbar/internal/relay"
	"github.com/otabekh/minbar/internal/session"
	"github.com/otabekh/minbar/internal/store"
	"github.com/otabekh/minbar/internal/translate"
	"github.com/otabekh/minbar/internal/transport"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := filesystem.EnsureDir(cfg.ScratchDir); err != nil {
		appLogger.Error("Failed to create scratch dir", "error", err)
		os.Exit(1)
	}

	// External collaborators
	operator := auth.Operator{ID: cfg.OperatorID}
	host := media.NewChannelHost(cfg.MediaHostURL)
	sender := transport.NewGatewaySender(cfg.GatewayURL)
	translator := translate.NewTranslator(cfg.TranslatorURL, cfg.TranslatorKey, cfg.TranslatorModel)

	// Services
	sessions := session.NewRegistry()
	reports := ingest.NewReportLog(20)
	featureService := feature.NewService(db, operator, appLogger)
	relayService := relay.NewService(db, sessions, operator, appLogger)
	committer := ingest.NewCommitter(db, host, appLogger)
	archiver := ingest.NewArchiver(db, host, appLogger, cfg.ScratchDir)
	broadcastService := broadcast.NewService(db, sender, translator, operator, appLogger)

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := handlers.NewHandler(handlers.Handler{
		Store:      db,
		Feature:    featureService,
		Relay:      relayService,
		Broadcast:  broadcastService,
		Committer:  committer,
		Archiver:   archiver,
		Reports:    reports,
		Sessions:   sessions,
		Sender:     sender,
		Host:       host,
		Translator: translator,
		Operator:   operator,
		Log:        appLogger,
	})
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
