package marketdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"etfledger/internal/config"
	"etfledger/internal/domain"
	"etfledger/internal/store"
	"etfledger/internal/util"
)

// Service refreshes market data for the watch list and persists it: the
// latest quote per symbol in SQLite, the full snapshot history in Parquet.
type Service struct {
	quotes   store.QuoteStore
	settings store.SettingStore
	history  store.QuoteHistoryStore
	watch    []config.WatchedETF

	client  *http.Client
	limiter *util.RateLimiter
	logger  *slog.Logger

	defaultProvider string

	// Overridable endpoints, pointed at httptest servers in tests.
	YahooBaseURL  string
	GoogleBaseURL string
	FIIDIIURL     string
}

// NewService creates a Service for the given watch list. defaultProvider is
// used when no etf_data_provider setting is stored.
func NewService(
	quotes store.QuoteStore,
	settings store.SettingStore,
	history store.QuoteHistoryStore,
	watch []config.WatchedETF,
	defaultProvider string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		quotes:          quotes,
		settings:        settings,
		history:         history,
		watch:           watch,
		client:          &http.Client{Timeout: 10 * time.Second},
		limiter:         util.NewRateLimiter(120),
		logger:          logger,
		defaultProvider: defaultProvider,
		YahooBaseURL:    "https://query1.finance.yahoo.com",
		GoogleBaseURL:   "https://www.google.com",
		FIIDIIURL:       "https://www.moneycontrol.com/stocks/marketstats/fii_dii_activity/index.php",
	}
}

// Provider returns the active quote provider: the persisted setting when
// present, the configured default otherwise.
func (s *Service) Provider(ctx context.Context) string {
	v, err := s.settings.GetSetting(ctx, SettingProviderKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("reading provider setting failed", "error", err)
		}
		return s.defaultProvider
	}
	return strings.ToLower(v)
}

// SetProvider persists the preferred quote provider.
func (s *Service) SetProvider(ctx context.Context, provider string) error {
	provider = strings.ToLower(provider)
	if provider != ProviderYahoo && provider != ProviderGoogle {
		return fmt.Errorf("marketdata: unknown provider %q", provider)
	}
	return s.settings.PutSetting(ctx, SettingProviderKey, provider)
}

// RefreshETFs fetches a fresh quote for every watched ETF through the active
// provider and persists the results. Per-symbol failures are logged and
// skipped; the refresh reports how many symbols succeeded.
func (s *Service) RefreshETFs(ctx context.Context) (int, error) {
	provider := s.Provider(ctx)
	s.logger.Info("refreshing ETF quotes", "provider", provider, "symbols", len(s.watch))

	var fetched []domain.ETFQuote
	for _, etf := range s.watch {
		if err := s.limiter.Wait(ctx); err != nil {
			return len(fetched), err
		}

		var quote *domain.ETFQuote
		err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
			var ferr error
			quote, ferr = s.fetchQuote(ctx, provider, etf)
			return ferr
		})
		if err != nil {
			s.logger.Warn("quote fetch failed", "symbol", etf.Symbol, "provider", provider, "error", err)
			continue
		}

		quote.Name = etf.Name
		if err := s.quotes.UpsertETFQuote(ctx, quote); err != nil {
			return len(fetched), fmt.Errorf("storing quote for %s: %w", etf.Symbol, err)
		}
		fetched = append(fetched, *quote)
	}

	if len(fetched) > 0 && s.history != nil {
		if err := s.history.AppendQuotes(ctx, fetched); err != nil {
			// The SQLite rows are already in; history archival is secondary.
			s.logger.Warn("archiving quote history failed", "error", err)
		}
	}

	s.logger.Info("ETF refresh complete", "fetched", len(fetched), "watched", len(s.watch))
	return len(fetched), nil
}

func (s *Service) fetchQuote(ctx context.Context, provider string, etf config.WatchedETF) (*domain.ETFQuote, error) {
	if provider == ProviderYahoo {
		q, err := FetchYahooQuote(ctx, s.client, s.YahooBaseURL, etf.Symbol)
		if err != nil {
			return nil, err
		}
		return q, nil
	}
	q, err := FetchGoogleQuote(ctx, s.client, s.GoogleBaseURL, etf.GoogleSymbol)
	if err != nil {
		return nil, err
	}
	// Store under the canonical symbol regardless of provider form.
	q.Symbol = etf.Symbol
	return q, nil
}

// RefreshFIIDII fetches the daily institutional flow table and upserts every
// row. Returns the number of rows stored.
func (s *Service) RefreshFIIDII(ctx context.Context) (int, error) {
	var flows []domain.FIIDIIFlow
	err := util.Retry(ctx, 3, time.Second, func() error {
		var ferr error
		flows, ferr = FetchFIIDIIFlows(ctx, s.client, s.FIIDIIURL)
		return ferr
	})
	if err != nil {
		return 0, err
	}

	for i := range flows {
		if err := s.quotes.UpsertFIIDIIFlow(ctx, &flows[i]); err != nil {
			return i, fmt.Errorf("storing flow %s/%s: %w", flows[i].Date, flows[i].Category, err)
		}
	}
	s.logger.Info("FII/DII refresh complete", "rows", len(flows))
	return len(flows), nil
}
