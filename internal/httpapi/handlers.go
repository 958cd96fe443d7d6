package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"etfledger/internal/domain"
	"etfledger/internal/engine"
	"etfledger/internal/marketdata"
	"etfledger/internal/store"
)

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// statusFromError maps engine and store errors onto HTTP statuses.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidTrade),
		errors.Is(err, engine.ErrNoActiveMembers):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *APIServer) writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFromError(err), err.Error())
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func (s *APIServer) handleListMembers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	members, err := s.members.ListMembers(r.Context(), activeOnly)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if members == nil {
		members = []domain.Member{}
	}
	writeJSON(w, members)
}

func (s *APIServer) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	// An optional capital amount records the member's opening deposit in the
	// same call.
	var req struct {
		domain.Member
		Capital float64 `json:"capital"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	m := req.Member
	m.Code = strings.ToUpper(strings.TrimSpace(m.Code))
	if m.Code == "" || m.Name == "" {
		writeError(w, http.StatusBadRequest, "member_code and member_name are required")
		return
	}
	if req.Capital < 0 {
		writeError(w, http.StatusBadRequest, "capital must not be negative")
		return
	}
	m.IsActive = true
	if err := s.members.CreateMember(r.Context(), &m); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			writeError(w, http.StatusConflict, "member code already exists")
			return
		}
		s.writeErr(w, err)
		return
	}
	if req.Capital > 0 {
		deposit := domain.CapitalTransaction{
			MemberID: m.ID,
			Date:     time.Now().Format(domain.DateLayout),
			Amount:   req.Capital,
			Type:     domain.TransactionDeposit,
			Notes:    "Initial capital",
		}
		if err := s.capital.CreateCapitalTransaction(r.Context(), &deposit); err != nil {
			s.writeErr(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, m)
}

func (s *APIServer) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	var m domain.Member
	if !decodeJSON(w, r, &m) {
		return
	}
	m.ID = id
	if err := s.members.UpdateMember(r.Context(), &m); err != nil {
		s.writeErr(w, err)
		return
	}
	updated, err := s.members.GetMember(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, updated)
}

func (s *APIServer) handleDeactivateMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	if err := s.members.DeactivateMember(r.Context(), id); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]bool{"deactivated": true})
}

func (s *APIServer) handleMemberCapital(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	summary, err := s.engine.MemberCapital(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, summary)
}

// ---------------------------------------------------------------------------
// Capital transactions
// ---------------------------------------------------------------------------

func (s *APIServer) handleListCapital(w http.ResponseWriter, r *http.Request) {
	var memberID int64
	if v := r.URL.Query().Get("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid member_id")
			return
		}
		memberID = id
	}
	txns, err := s.capital.ListCapitalTransactions(r.Context(), memberID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if txns == nil {
		txns = []domain.CapitalTransaction{}
	}
	writeJSON(w, txns)
}

func validCapitalTxn(t domain.CapitalTransaction, requireMember bool) string {
	switch {
	case requireMember && t.MemberID == 0:
		return "member_id is required"
	case t.Date == "":
		return "transaction_date is required"
	case t.Amount <= 0:
		return "amount must be positive"
	case t.Type != domain.TransactionDeposit && t.Type != domain.TransactionWithdrawal:
		return "transaction_type must be DEPOSIT or WITHDRAWAL"
	}
	return ""
}

func (s *APIServer) handleCreateCapital(w http.ResponseWriter, r *http.Request) {
	var t domain.CapitalTransaction
	if !decodeJSON(w, r, &t) {
		return
	}
	if msg := validCapitalTxn(t, true); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if _, err := s.members.GetMember(r.Context(), t.MemberID); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.capital.CreateCapitalTransaction(r.Context(), &t); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, t)
}

func (s *APIServer) handleUpdateCapital(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var t domain.CapitalTransaction
	if !decodeJSON(w, r, &t) {
		return
	}
	t.ID = id
	if msg := validCapitalTxn(t, false); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if err := s.capital.UpdateCapitalTransaction(r.Context(), &t); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, t)
}

func (s *APIServer) handleDeleteCapital(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := s.capital.DeleteCapitalTransaction(r.Context(), id); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]bool{"deleted": true})
}

// ---------------------------------------------------------------------------
// Symbols
// ---------------------------------------------------------------------------

func (s *APIServer) handleListSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := s.symbols.ListSymbols(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if symbols == nil {
		symbols = []domain.Symbol{}
	}
	writeJSON(w, symbols)
}

func (s *APIServer) handleCreateSymbol(w http.ResponseWriter, r *http.Request) {
	var sym domain.Symbol
	if !decodeJSON(w, r, &sym) {
		return
	}
	if strings.TrimSpace(sym.Symbol) == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if err := s.symbols.CreateSymbol(r.Context(), &sym); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			writeError(w, http.StatusConflict, "symbol already exists")
			return
		}
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, sym)
}

// ---------------------------------------------------------------------------
// Trades
// ---------------------------------------------------------------------------

func tradeFilterFromQuery(r *http.Request) (store.TradeFilter, error) {
	q := r.URL.Query()
	f := store.TradeFilter{
		Symbol:    q.Get("symbol"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Status:    q.Get("status"),
	}
	if v := q.Get("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, errors.New("invalid member_id")
		}
		f.MemberID = id
	}
	switch q.Get("profit") {
	case "true":
		yes := true
		f.ProfitOnly = &yes
	case "false":
		no := false
		f.ProfitOnly = &no
	}
	return f, nil
}

func (s *APIServer) handleListTrades(w http.ResponseWriter, r *http.Request) {
	f, err := tradeFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	trades, err := s.trades.ListTrades(r.Context(), f)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}
	writeJSON(w, trades)
}

func (s *APIServer) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}
	trade, err := s.trades.GetTrade(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, trade)
}

func (s *APIServer) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var t domain.Trade
	if !decodeJSON(w, r, &t) {
		return
	}
	if err := s.engine.CreateTrade(r.Context(), &t); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, t)
}

func (s *APIServer) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}
	existing, err := s.trades.GetTrade(r.Context(), id)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	var t domain.Trade
	if !decodeJSON(w, r, &t) {
		return
	}
	t.ID = id
	t.MemberID = existing.MemberID
	t.TradeNumber = existing.TradeNumber
	if err := s.engine.UpdateTrade(r.Context(), &t); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, t)
}

func (s *APIServer) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}
	n, err := s.trades.DeleteTrades(r.Context(), []int64{id})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	writeJSON(w, map[string]bool{"deleted": true})
}

func (s *APIServer) handleBulkDeleteTrades(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if len(body.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	n, err := s.trades.DeleteTrades(r.Context(), body.IDs)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]int64{"deleted": n})
}

func (s *APIServer) handleSplitTrade(w http.ResponseWriter, r *http.Request) {
	var req engine.SplitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.engine.CreateSplitTrade(r.Context(), req)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, res)
}

func (s *APIServer) handleSplitPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity   float64 `json:"quantity"`
		WholeUnits bool    `json:"whole_units"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.engine.AllocationPreview(r.Context(), req.Quantity, req.WholeUnits)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, res)
}

// ---------------------------------------------------------------------------
// Calculations and analytics
// ---------------------------------------------------------------------------

func (s *APIServer) handleCalculateBrokerage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BuyPrice  float64         `json:"buy_price"`
		SellPrice float64         `json:"sell_price"`
		Quantity  float64         `json:"quantity"`
		Exchange  domain.Exchange `json:"exchange"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BuyPrice <= 0 || req.SellPrice <= 0 || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "buy_price, sell_price, and quantity must be positive")
		return
	}
	writeJSON(w, s.engine.PreviewCharges(req.BuyPrice, req.SellPrice, req.Quantity, req.Exchange))
}

func (s *APIServer) handleProfitSummary(w http.ResponseWriter, r *http.Request) {
	f, err := tradeFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := s.engine.ProfitSummary(r.Context(), f)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, summary)
}

func (s *APIServer) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.DashboardStats(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, stats)
}

func queryMemberID(r *http.Request) (int64, error) {
	v := r.URL.Query().Get("member_id")
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func (s *APIServer) handleMonthlyPerformance(w http.ResponseWriter, r *http.Request) {
	memberID, err := queryMemberID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member_id")
		return
	}
	months, err := s.engine.MonthlyPerformance(r.Context(), memberID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if months == nil {
		months = []engine.MonthlyPerformance{}
	}
	writeJSON(w, months)
}

func (s *APIServer) handleCapitalGrowth(w http.ResponseWriter, r *http.Request) {
	memberID, err := queryMemberID(r)
	if err != nil || memberID == 0 {
		writeError(w, http.StatusBadRequest, "member_id is required")
		return
	}
	points, err := s.engine.CapitalGrowth(r.Context(), memberID)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if points == nil {
		points = []engine.CapitalPoint{}
	}
	writeJSON(w, points)
}

// ---------------------------------------------------------------------------
// Markets
// ---------------------------------------------------------------------------

func (s *APIServer) handleListETFs(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.quotes.ListETFQuotes(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if quotes == nil {
		quotes = []domain.ETFQuote{}
	}
	writeJSON(w, quotes)
}

func (s *APIServer) handleRefreshETFs(w http.ResponseWriter, r *http.Request) {
	if s.market == nil {
		writeError(w, http.StatusServiceUnavailable, "markets module disabled")
		return
	}
	n, err := s.market.RefreshETFs(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"refreshed": n, "provider": s.market.Provider(r.Context())})
}

func (s *APIServer) handleETFHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))
	q := r.URL.Query()

	end := time.Now().UTC()
	start := end.AddDate(0, -1, 0)
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date")
			return
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}

	history, err := s.history.ReadQuoteHistory(r.Context(), symbol, start, end)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if history == nil {
		history = []domain.ETFQuote{}
	}
	writeJSON(w, map[string]any{"symbol": symbol, "history": history})
}

func (s *APIServer) handleListFIIDII(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	flows, err := s.quotes.ListFIIDIIFlows(r.Context(), limit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if flows == nil {
		flows = []domain.FIIDIIFlow{}
	}
	writeJSON(w, flows)
}

func (s *APIServer) handleRefreshFIIDII(w http.ResponseWriter, r *http.Request) {
	if s.market == nil {
		writeError(w, http.StatusServiceUnavailable, "markets module disabled")
		return
	}
	n, err := s.market.RefreshFIIDII(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]int{"rows": n})
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func (s *APIServer) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	value, err := s.settings.GetSetting(r.Context(), key)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"key": key, "value": value})
}

func (s *APIServer) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var body struct {
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	// The provider switch gets validated; other settings are opaque.
	if key == marketdata.SettingProviderKey && s.market != nil {
		if err := s.market.SetProvider(r.Context(), body.Value); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if err := s.settings.PutSetting(r.Context(), key, body.Value); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"key": key, "value": body.Value})
}
