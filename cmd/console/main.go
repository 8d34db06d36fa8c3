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

	"monitor-console/internal/api"
	"monitor-console/internal/config"
	"monitor-console/internal/logging"
	"monitor-console/internal/models"
	"monitor-console/internal/notify"
	"monitor-console/internal/platform"
	"monitor-console/internal/prefs"
	"monitor-console/internal/session"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config load failed:", err)
	}

	// Initialize logger
	logger := logging.New(cfg.Log.Path, cfg.Log.Level)

	// Open preference storage
	ctx := context.Background()
	preferences, err := prefs.Open(ctx, cfg.Prefs.Path)
	if err != nil {
		logger.WithError(err).Fatal("Preferences open failed")
	}
	defer func() {
		if err := preferences.Close(); err != nil {
			logger.WithError(err).Error("Preferences close failed")
		}
	}()

	// Event hub, session, and the upstream platform client
	hub := notify.NewHub(logger)
	sess := session.New(hub, logger)
	sess.SetToken(cfg.Upstream.Token)
	sess.OnExpired(func() {
		hub.Publish(notify.Event{Kind: notify.KindSessionExpired})
	})
	client := platform.New(cfg.Upstream.BaseURL, sess)

	// Gateway
	handler := api.NewHandler(cfg, logger, client, sess, hub, preferences)
	handler.Messages().OnRefresh(func(messages []models.Message) {
		hub.Publish(notify.Event{Kind: notify.KindFeedRefresh})
	})
	defer handler.Messages().Reset()

	srv := &http.Server{
		Addr:    cfg.API.Port,
		Handler: api.NewRouter(handler),
	}
	go func() {
		logger.Infof("API started on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("API run failed")
		}
	}()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("API shutdown failed")
	}
	logger.Info("Service stopped")
}
