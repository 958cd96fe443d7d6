// Command etfledger-seed resets the database and loads a small demo data set:
// three members with deposits, a few personal trades, and one capital-split
// block trade. Intended for local development only.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"etfledger/internal/config"
	"etfledger/internal/domain"
	"etfledger/internal/engine"
	"etfledger/internal/store"
	"etfledger/internal/util"
)

func main() {
	cfgPath := flag.String("config", "config/etfledger.yaml", "path to config file")
	reset := flag.Bool("reset", true, "delete the existing database before seeding")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *reset {
		if err := os.Remove(cfg.Storage.SQLitePath); err != nil && !os.IsNotExist(err) {
			log.Fatalf("removing existing database: %v", err)
		}
	}

	db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open sqlite store: %v", err)
	}
	defer db.Close()

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	eng := engine.NewEngine(db, db, db, db, logger)

	ctx := context.Background()
	if err := seed(ctx, db, eng); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	logger.Info("seed complete", "db", cfg.Storage.SQLitePath)
}

func seed(ctx context.Context, db *store.SQLiteStore, eng *engine.Engine) error {
	members := []struct {
		code     string
		name     string
		division float64
		deposit  float64
	}{
		{"DS", "Deepak Sharma", 36, 3000000},
		{"SA", "Sunita Agarwal", 35, 700000},
		{"SG", "Suresh Gupta", 30, 300000},
	}

	byCode := make(map[string]int64, len(members))
	for _, m := range members {
		member := &domain.Member{
			Code:            m.code,
			Name:            m.name,
			CapitalDivision: m.division,
			IsActive:        true,
		}
		if err := db.CreateMember(ctx, member); err != nil {
			return err
		}
		byCode[m.code] = member.ID

		if err := db.CreateCapitalTransaction(ctx, &domain.CapitalTransaction{
			MemberID: member.ID,
			Date:     "2025-01-02",
			Amount:   m.deposit,
			Type:     domain.TransactionDeposit,
			Notes:    "Opening deposit",
		}); err != nil {
			return err
		}
	}

	for _, w := range config.DefaultWatchList() {
		if _, err := db.EnsureSymbol(ctx, w.Symbol); err != nil {
			return err
		}
	}

	// A closed and a live personal trade.
	closedSell := "2025-01-28"
	closedPrice := 62.40
	personal := []domain.Trade{
		{
			MemberID:  byCode["DS"],
			Symbol:    "GOLDBEES",
			BuyDate:   "2025-01-15",
			BuyPrice:  60.10,
			SellDate:  &closedSell,
			SellPrice: &closedPrice,
			Quantity:  500,
			Exchange:  domain.ExchangeNSE,
			Notes:     "Personal gold position",
		},
		{
			MemberID: byCode["SA"],
			Symbol:   "NIFTYBEES",
			BuyDate:  "2025-02-05",
			BuyPrice: 248.75,
			Quantity: 120,
			Exchange: domain.ExchangeNSE,
		},
	}
	for i := range personal {
		if err := eng.CreateTrade(ctx, &personal[i]); err != nil {
			return err
		}
	}

	// One capital-weighted block trade split across all three members.
	blockSell := "2025-02-20"
	blockPrice := 58.0
	_, err := eng.CreateSplitTrade(ctx, engine.SplitRequest{
		Symbol:     "SILVERBEES",
		BuyDate:    "2025-02-10",
		BuyPrice:   55,
		SellDate:   &blockSell,
		SellPrice:  &blockPrice,
		Quantity:   999,
		Exchange:   domain.ExchangeNSE,
		Notes:      "Group silver block",
		WholeUnits: true,
	})
	return err
}
