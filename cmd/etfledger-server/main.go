package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"etfledger/internal/config"
	"etfledger/internal/engine"
	"etfledger/internal/httpapi"
	"etfledger/internal/marketdata"
	"etfledger/internal/store"
	"etfledger/internal/util"
)

func main() {
	cfgPath := "config/etfledger.yaml"
	if p := os.Getenv("ETFLEDGER_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open sqlite store: %v", err)
	}
	defer db.Close()

	history := store.NewParquetStore(cfg.Storage.DataDir)

	eng := engine.NewEngine(db, db, db, db, logger)
	market := marketdata.NewService(db, db, history, cfg.Markets.WatchList, cfg.Markets.DefaultProvider, logger)

	api := httpapi.NewAPIServer(eng, db, db, db, db, db, db, history, market, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := newScheduler(cfg, market, logger)
	sched.Start()
	defer sched.Stop()

	// Warm the quote table shortly after startup instead of waiting for the
	// first cron tick.
	go func() {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return
		}
		if _, err := market.RefreshETFs(ctx); err != nil {
			logger.Warn("initial etf refresh failed", "error", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("etfledger-server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
