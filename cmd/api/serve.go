package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatube/internal/config"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"
	redisrepo "yatube/internal/repository/redis"
	"yatube/internal/router"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
)

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pkg.SetupLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err = database.Migrate(db); err != nil {
		return err
	}

	rdb, err := redisrepo.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	engine, err := router.InitRouter(router.Deps{
		DB:        db,
		Redis:     rdb,
		Tokens:    pkg.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL),
		Media:     pkg.NewMediaStore(cfg.MediaRoot),
		FeedCache: redisrepo.NewPageCache(rdb, cfg.FeedCacheTTL),
	})
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// outbox 投递
	senders := []service.Sender{service.LogSender}
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		defer producer.Close()
		senders = append(senders, service.KafkaSender(producer))
	}
	if cfg.SMTP.Enabled() {
		mailer := pkg.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		senders = append(senders, service.NewEmailService(mailer, db).Sender())
	}
	relayer := service.NewOutboxRelayer(db, service.ChainSenders(senders...))
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relayer.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil {
			stop()
			<-relayDone
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	<-relayDone
	return nil
}
