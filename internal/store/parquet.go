package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"etfledger/internal/domain"
)

// Compile-time interface check.
var _ QuoteHistoryStore = (*ParquetStore)(nil)

// ParquetStore archives ETF quote snapshots as Parquet files on disk, one
// file per symbol per year. Every market-data refresh appends the fetched
// quotes here, building the intraday history behind the charting endpoint
// without bloating the SQLite database.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// QuoteRecord is the Parquet schema for archived quote snapshots.
type QuoteRecord struct {
	Symbol      string  `parquet:"symbol"`
	Timestamp   int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Price       float64 `parquet:"price"`
	Change1D    float64 `parquet:"change_1d"`
	ChangePct1D float64 `parquet:"change_percent_1d"`
	Volume      int64   `parquet:"volume"`
}

// AppendQuotes archives a batch of quote snapshots, merging with any
// existing records for the same symbol and year.
func (s *ParquetStore) AppendQuotes(_ context.Context, quotes []domain.ETFQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]QuoteRecord)
	for _, q := range quotes {
		k := key{symbol: q.Symbol, year: q.LastUpdatedAt.Year()}
		groups[k] = append(groups[k], QuoteRecord{
			Symbol:      q.Symbol,
			Timestamp:   q.LastUpdatedAt.UnixMilli(),
			Price:       q.Price,
			Change1D:    q.Change1D,
			ChangePct1D: q.ChangePct1D,
			Volume:      q.Volume,
		})
	}

	for k, records := range groups {
		path := s.quotePath(k.symbol, k.year)

		existing, _ := readParquetFile[QuoteRecord](path)
		merged := mergeQuoteRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing quotes for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// ReadQuoteHistory returns archived snapshots for symbol within [start, end],
// ordered by timestamp.
func (s *ParquetStore) ReadQuoteHistory(_ context.Context, symbol string, start, end time.Time) ([]domain.ETFQuote, error) {
	var quotes []domain.ETFQuote
	for year := start.Year(); year <= end.Year(); year++ {
		records, err := readParquetFile[QuoteRecord](s.quotePath(symbol, year))
		if err != nil {
			// No archive for this year.
			continue
		}

		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if (ts.Equal(start) || ts.After(start)) && (ts.Equal(end) || ts.Before(end)) {
				quotes = append(quotes, domain.ETFQuote{
					Symbol:        r.Symbol,
					Price:         r.Price,
					Change1D:      r.Change1D,
					ChangePct1D:   r.ChangePct1D,
					Volume:        r.Volume,
					LastUpdatedAt: ts,
				})
			}
		}
	}
	return quotes, nil
}

// quotePath returns the archive path for a symbol and year.
// Layout: <dataDir>/quotes/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) quotePath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "quotes", strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}

// mergeQuoteRecords deduplicates records by (symbol, timestamp), preferring
// incoming over existing, sorted by timestamp.
func mergeQuoteRecords(existing, incoming []QuoteRecord) []QuoteRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]QuoteRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]QuoteRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
