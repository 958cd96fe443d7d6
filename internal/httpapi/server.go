// Package httpapi serves the trade-ledger REST API.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"etfledger/internal/engine"
	"etfledger/internal/marketdata"
	"etfledger/internal/store"
)

// APIServer serves the ledger API: members, capital, trades, splits,
// analytics, and the markets module.
type APIServer struct {
	engine   *engine.Engine
	members  store.MemberStore
	capital  store.CapitalStore
	trades   store.TradeStore
	symbols  store.SymbolStore
	settings store.SettingStore
	quotes   store.QuoteStore
	history  store.QuoteHistoryStore
	market   *marketdata.Service
	log      *slog.Logger
}

// NewAPIServer creates an APIServer wired with the given dependencies.
// market may be nil when the markets module is disabled; its routes then
// report 503.
func NewAPIServer(
	eng *engine.Engine,
	members store.MemberStore,
	capital store.CapitalStore,
	trades store.TradeStore,
	symbols store.SymbolStore,
	settings store.SettingStore,
	quotes store.QuoteStore,
	history store.QuoteHistoryStore,
	market *marketdata.Service,
	log *slog.Logger,
) *APIServer {
	if log == nil {
		log = slog.Default()
	}
	return &APIServer{
		engine:   eng,
		members:  members,
		capital:  capital,
		trades:   trades,
		symbols:  symbols,
		settings: settings,
		quotes:   quotes,
		history:  history,
		market:   market,
		log:      log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *APIServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/members", s.handleListMembers)
	mux.HandleFunc("POST /api/members", s.handleCreateMember)
	mux.HandleFunc("PUT /api/members/{id}", s.handleUpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", s.handleDeactivateMember)
	mux.HandleFunc("GET /api/members/{id}/capital", s.handleMemberCapital)

	mux.HandleFunc("GET /api/capital-transactions", s.handleListCapital)
	mux.HandleFunc("POST /api/capital-transactions", s.handleCreateCapital)
	mux.HandleFunc("PUT /api/capital-transactions/{id}", s.handleUpdateCapital)
	mux.HandleFunc("DELETE /api/capital-transactions/{id}", s.handleDeleteCapital)

	mux.HandleFunc("GET /api/symbols", s.handleListSymbols)
	mux.HandleFunc("POST /api/symbols", s.handleCreateSymbol)

	mux.HandleFunc("GET /api/trades", s.handleListTrades)
	mux.HandleFunc("POST /api/trades", s.handleCreateTrade)
	mux.HandleFunc("GET /api/trades/export", s.handleExportTrades)
	mux.HandleFunc("POST /api/trades/import", s.handleImportTrades)
	mux.HandleFunc("POST /api/trades/split", s.handleSplitTrade)
	mux.HandleFunc("POST /api/trades/split/preview", s.handleSplitPreview)
	mux.HandleFunc("POST /api/trades/bulk-delete", s.handleBulkDeleteTrades)
	mux.HandleFunc("GET /api/trades/{id}", s.handleGetTrade)
	mux.HandleFunc("PUT /api/trades/{id}", s.handleUpdateTrade)
	mux.HandleFunc("DELETE /api/trades/{id}", s.handleDeleteTrade)

	mux.HandleFunc("POST /api/calculate-brokerage", s.handleCalculateBrokerage)
	mux.HandleFunc("GET /api/profit-summary", s.handleProfitSummary)
	mux.HandleFunc("GET /api/dashboard-stats", s.handleDashboardStats)
	mux.HandleFunc("GET /api/analytics/monthly-performance", s.handleMonthlyPerformance)
	mux.HandleFunc("GET /api/analytics/capital-growth", s.handleCapitalGrowth)

	mux.HandleFunc("GET /api/etfs", s.handleListETFs)
	mux.HandleFunc("POST /api/etfs/refresh", s.handleRefreshETFs)
	mux.HandleFunc("GET /api/etfs/{symbol}/history", s.handleETFHistory)
	mux.HandleFunc("GET /api/fii-dii", s.handleListFIIDII)
	mux.HandleFunc("POST /api/fii-dii/refresh", s.handleRefreshFIIDII)

	mux.HandleFunc("GET /api/settings/{key}", s.handleGetSetting)
	mux.HandleFunc("PUT /api/settings/{key}", s.handlePutSetting)
}

// Handler returns the full middleware-wrapped handler.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(s.requestLogMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware tags every request with an ID and logs it on the way
// out with its status and duration.
func (s *APIServer) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.log.Info("request",
			"id", id, "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
