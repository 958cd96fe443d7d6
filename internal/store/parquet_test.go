package store

import (
	"context"
	"testing"
	"time"

	"etfledger/internal/domain"
)

func quoteAt(symbol string, ts time.Time, price float64) domain.ETFQuote {
	return domain.ETFQuote{
		Symbol:        symbol,
		Name:          symbol,
		Price:         price,
		Volume:        1000,
		LastUpdatedAt: ts,
	}
}

func TestParquetAppendAndRead(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	batch := []domain.ETFQuote{
		quoteAt("GOLDBEES", base, 55.10),
		quoteAt("GOLDBEES", base.Add(5*time.Minute), 55.25),
		quoteAt("NIFTYBEES", base, 250.0),
	}
	if err := s.AppendQuotes(ctx, batch); err != nil {
		t.Fatalf("AppendQuotes: %v", err)
	}

	history, err := s.ReadQuoteHistory(ctx, "GOLDBEES", base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("ReadQuoteHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Price != 55.10 || history[1].Price != 55.25 {
		t.Errorf("history prices = %v, %v; want chronological 55.10, 55.25", history[0].Price, history[1].Price)
	}
}

func TestParquetDedupOnReappend(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	ts := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	if err := s.AppendQuotes(ctx, []domain.ETFQuote{quoteAt("GOLDBEES", ts, 55.10)}); err != nil {
		t.Fatalf("AppendQuotes: %v", err)
	}
	// Same timestamp again with a corrected price; the newer write wins.
	if err := s.AppendQuotes(ctx, []domain.ETFQuote{quoteAt("GOLDBEES", ts, 55.15)}); err != nil {
		t.Fatalf("AppendQuotes (reappend): %v", err)
	}

	history, err := s.ReadQuoteHistory(ctx, "GOLDBEES", ts.Add(-time.Minute), ts.Add(time.Minute))
	if err != nil {
		t.Fatalf("ReadQuoteHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1 after dedup", len(history))
	}
	if history[0].Price != 55.15 {
		t.Errorf("deduped price = %v, want 55.15", history[0].Price)
	}
}

func TestParquetYearBoundary(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	dec := time.Date(2024, 12, 31, 15, 0, 0, 0, time.UTC)
	jan := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := s.AppendQuotes(ctx, []domain.ETFQuote{
		quoteAt("GOLDBEES", dec, 50),
		quoteAt("GOLDBEES", jan, 51),
	}); err != nil {
		t.Fatalf("AppendQuotes: %v", err)
	}

	history, err := s.ReadQuoteHistory(ctx, "GOLDBEES", dec.Add(-time.Hour), jan.Add(time.Hour))
	if err != nil {
		t.Fatalf("ReadQuoteHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history across years = %d records, want 2", len(history))
	}
	if history[0].Price != 50 || history[1].Price != 51 {
		t.Errorf("cross-year order wrong: %v, %v", history[0].Price, history[1].Price)
	}
}

func TestParquetEmptyReads(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	if err := s.AppendQuotes(ctx, nil); err != nil {
		t.Fatalf("AppendQuotes(nil): %v", err)
	}

	history, err := s.ReadQuoteHistory(ctx, "UNKNOWN",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ReadQuoteHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history for unknown symbol = %d records, want 0", len(history))
	}
}
