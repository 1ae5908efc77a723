package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/grocerymarts/backend/internal/api"
	"github.com/grocerymarts/backend/internal/auth"
	"github.com/grocerymarts/backend/internal/config"
	"github.com/grocerymarts/backend/internal/database"
	"github.com/grocerymarts/backend/internal/notify"
	"github.com/grocerymarts/backend/internal/rewards"
	"github.com/grocerymarts/backend/internal/store"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	if err := database.Migrate(&cfg.Database); err != nil {
		log.WithError(err).Fatal("run migrations")
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("connect to database")
	}
	defer db.Close()

	log.Info("connected to database")

	policy := rewards.DefaultPolicy()

	ctx := context.Background()
	backfilled, err := store.BackfillReferralCodes(ctx, db, policy)
	if err != nil {
		log.WithError(err).Fatal("backfill referral codes")
	}
	if backfilled > 0 {
		log.WithField("count", backfilled).Info("backfilled referral codes")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	notifier := notify.NewNotifier(cfg.SMTP, log.StandardLogger())

	srv := api.NewServer(db, cfg, tokens, notifier, policy)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
