package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"etfledger/internal/config"
	"etfledger/internal/marketdata"
	"etfledger/internal/util"
)

// newScheduler wires the market-data refresh jobs. Specs are five-field cron
// expressions evaluated in Asia/Kolkata; the quote job additionally checks
// NSE market hours so the 9 o'clock and 15 o'clock buckets do not fire
// outside the 09:15-15:30 session.
func newScheduler(cfg *config.Config, market *marketdata.Service, logger *slog.Logger) *cron.Cron {
	c := cron.New(cron.WithLocation(util.ISTLocation()))

	if _, err := c.AddFunc(cfg.Markets.ETFRefreshSpec, func() {
		if !util.MarketOpen(time.Now()) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
		defer cancel()
		if _, err := market.RefreshETFs(ctx); err != nil {
			logger.Warn("scheduled etf refresh failed", "error", err)
		}
	}); err != nil {
		logger.Error("registering etf refresh job failed", "spec", cfg.Markets.ETFRefreshSpec, "error", err)
	}

	if _, err := c.AddFunc(cfg.Markets.FIIDIISpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := market.RefreshFIIDII(ctx); err != nil {
			logger.Warn("scheduled fii/dii refresh failed", "error", err)
		}
	}); err != nil {
		logger.Error("registering fii/dii job failed", "spec", cfg.Markets.FIIDIISpec, "error", err)
	}

	return c
}
