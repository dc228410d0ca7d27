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

	"go.uber.org/zap"

	"fleetbooking/internal/events"
	"fleetbooking/internal/httpapi"
	"fleetbooking/internal/metrics"
	"fleetbooking/internal/notify"
	"fleetbooking/internal/store"
	"fleetbooking/pkg/config"
	"fleetbooking/pkg/logger"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := store.Open(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("store open", zap.Error(err))
	}
	defer closeStore()

	var pub events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		conn, err := notify.Connect(ctx, cfg.AMQP.URL, notify.DefaultMaxRetries, zl)
		if err != nil {
			// Publishing is best effort; keep serving without it.
			zl.Warn("amqp unavailable, booking events will not be published", zap.Error(err))
		} else {
			defer conn.Close()
			p := notify.NewPublisher(conn, cfg.AMQP.BookingAddress, zl)
			defer func() { _ = p.Close(context.Background()) }()
			pub = p
		}
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:       cfg,
		Store:     st,
		Log:       zl,
		Metrics:   metrics.New(),
		Publisher: pub,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver), zap.String("tz", cfg.Timezone))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
