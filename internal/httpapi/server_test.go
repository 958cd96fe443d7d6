package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"etfledger/internal/domain"
	"etfledger/internal/engine"
	"etfledger/internal/ledger"
	"etfledger/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()
	dir := t.TempDir()
	db, err := store.NewSQLiteStore(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.NewEngine(db, db, db, db, nil)
	api := NewAPIServer(eng, db, db, db, db, db, db, store.NewParquetStore(dir), nil, nil)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, url, err)
		}
	}
	return resp
}

func seedMember(t *testing.T, srv *httptest.Server, code string, division float64) domain.Member {
	t.Helper()
	var m domain.Member
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/members",
		domain.Member{Code: code, Name: code + " Member", CapitalDivision: division}, &m)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating member %s: status %d", code, resp.StatusCode)
	}
	return m
}

func seedDeposit(t *testing.T, srv *httptest.Server, memberID int64, amount float64) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/capital-transactions", domain.CapitalTransaction{
		MemberID: memberID, Date: "2025-01-01", Amount: amount, Type: domain.TransactionDeposit,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating deposit: status %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("health = %v", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestCreateMemberWithInitialCapital(t *testing.T) {
	srv, _ := newTestServer(t)

	var m domain.Member
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/members",
		map[string]any{"member_code": "DS", "member_name": "Deepak", "capital_division": 36, "capital": 250000}, &m)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var summary ledger.Summary
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/members/%d/capital", srv.URL, m.ID), nil, &summary)
	if summary.NetDeposits != 250000 || summary.CurrentCapital != 250000 {
		t.Errorf("capital summary = %+v, want opening deposit of 250000", summary)
	}

	var txns []domain.CapitalTransaction
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/capital-transactions?member_id=%d", srv.URL, m.ID), nil, &txns)
	if len(txns) != 1 || txns[0].Type != domain.TransactionDeposit || txns[0].Amount != 250000 {
		t.Fatalf("transactions = %+v, want one 250000 deposit", txns)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/members",
		map[string]any{"member_code": "SA", "member_name": "Sunita", "capital": -1}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative capital status = %d, want 400", resp.StatusCode)
	}
}

func TestMemberLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	m := seedMember(t, srv, "DS", 36)
	if m.ID == 0 || m.Code != "DS" || !m.IsActive {
		t.Fatalf("created member = %+v", m)
	}

	// Duplicate code conflicts.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/members",
		domain.Member{Code: "ds", Name: "Duplicate"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate member status = %d, want 409", resp.StatusCode)
	}

	var updated domain.Member
	doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/members/%d", srv.URL, m.ID),
		map[string]any{"member_name": "Renamed", "capital_division": 40}, &updated)
	if updated.Name != "Renamed" || updated.CapitalDivision != 40 {
		t.Errorf("updated member = %+v", updated)
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/members/%d", srv.URL, m.ID), nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("deactivate status = %d", resp.StatusCode)
	}

	var active []domain.Member
	doJSON(t, http.MethodGet, srv.URL+"/api/members?active=true", nil, &active)
	if len(active) != 0 {
		t.Errorf("active members = %d, want 0", len(active))
	}
	var all []domain.Member
	doJSON(t, http.MethodGet, srv.URL+"/api/members", nil, &all)
	if len(all) != 1 {
		t.Errorf("all members = %d, want 1 (soft delete)", len(all))
	}
}

func TestCapitalAndMemberSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	m := seedMember(t, srv, "DS", 36)
	seedDeposit(t, srv, m.ID, 100000)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/capital-transactions", domain.CapitalTransaction{
		MemberID: m.ID, Date: "2025-02-01", Amount: 25000, Type: domain.TransactionWithdrawal,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("withdrawal status = %d", resp.StatusCode)
	}

	var summary struct {
		NetDeposits    float64 `json:"net_deposits"`
		CurrentCapital float64 `json:"current_capital"`
	}
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/members/%d/capital", srv.URL, m.ID), nil, &summary)
	if summary.NetDeposits != 75000 || summary.CurrentCapital != 75000 {
		t.Errorf("summary = %+v", summary)
	}

	// Bad transaction type rejected.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/capital-transactions", map[string]any{
		"member_id": m.ID, "transaction_date": "2025-02-01", "amount": 10, "transaction_type": "LOAN",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad type status = %d", resp.StatusCode)
	}
}

func TestTradeEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	m := seedMember(t, srv, "DS", 36)

	var created domain.Trade
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/trades", map[string]any{
		"member_id": m.ID, "symbol": "goldbees", "buy_date": "2025-02-01",
		"buy_price": 1000, "sell_date": "2025-03-01", "sell_price": 1100,
		"quantity": 400, "exchange": "NSE",
	}, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create trade status = %d", resp.StatusCode)
	}
	if created.Symbol != "GOLDBEES" || created.Brokerage != 931.13 {
		t.Errorf("created trade = %+v", created)
	}

	var fetched domain.Trade
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/trades/%d", srv.URL, created.ID), nil, &fetched)
	if fetched.ID != created.ID {
		t.Errorf("fetched trade ID = %d", fetched.ID)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/trades/99999", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing trade status = %d", resp.StatusCode)
	}

	// Symbols were auto-registered.
	var symbols []domain.Symbol
	doJSON(t, http.MethodGet, srv.URL+"/api/symbols", nil, &symbols)
	if len(symbols) != 1 || symbols[0].Symbol != "GOLDBEES" {
		t.Errorf("symbols = %+v", symbols)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/trades/bulk-delete",
		map[string]any{"ids": []int64{created.ID}}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bulk delete status = %d", resp.StatusCode)
	}
	var trades []domain.Trade
	doJSON(t, http.MethodGet, srv.URL+"/api/trades", nil, &trades)
	if len(trades) != 0 {
		t.Errorf("trades after delete = %d", len(trades))
	}
}

func TestSplitTradeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	ds := seedMember(t, srv, "DS", 36)
	sa := seedMember(t, srv, "SA", 35)
	sg := seedMember(t, srv, "SG", 30)
	seedDeposit(t, srv, ds.ID, 3000000)
	seedDeposit(t, srv, sa.ID, 700000)
	seedDeposit(t, srv, sg.ID, 300000)

	var res engine.SplitResult
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/trades/split", map[string]any{
		"symbol": "GOLDBEES", "buy_date": "2025-03-01", "buy_price": 55,
		"quantity": 999, "exchange": "NSE", "whole_units": true,
	}, &res)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("split status = %d", resp.StatusCode)
	}
	if len(res.Trades) != 3 {
		t.Fatalf("fragments = %d, want 3", len(res.Trades))
	}

	total := 0.0
	for _, tr := range res.Trades {
		if tr.TradeNumber != res.TradeNumber {
			t.Errorf("fragment number = %d, want %d", tr.TradeNumber, res.TradeNumber)
		}
		total += tr.Quantity
	}
	if total != 999 {
		t.Errorf("quantity total = %v, want 999", total)
	}

	var persisted []domain.Trade
	doJSON(t, http.MethodGet, srv.URL+"/api/trades", nil, &persisted)
	if len(persisted) != 3 {
		t.Errorf("persisted = %d, want 3", len(persisted))
	}
}

func TestSplitTradeEndpointNoMembers(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/trades/split", map[string]any{
		"symbol": "GOLDBEES", "buy_date": "2025-03-01", "buy_price": 55, "quantity": 100,
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for no active members", resp.StatusCode)
	}

	var trades []domain.Trade
	doJSON(t, http.MethodGet, srv.URL+"/api/trades", nil, &trades)
	if len(trades) != 0 {
		t.Errorf("trades persisted on failed split = %d", len(trades))
	}
}

func TestCalculateBrokerage(t *testing.T) {
	srv, _ := newTestServer(t)

	var res struct {
		Charges struct {
			STT         float64 `json:"stt"`
			ExchangeTxn float64 `json:"exchangeTxn"`
			SEBI        float64 `json:"sebi"`
			GST         float64 `json:"gst"`
			StampDuty   float64 `json:"stampDuty"`
			Total       float64 `json:"total"`
		} `json:"charges"`
		Breakeven struct {
			SellPrice float64 `json:"breakevenSellPrice"`
			Converged bool    `json:"converged"`
		} `json:"breakeven"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/calculate-brokerage", map[string]any{
		"buy_price": 1000, "sell_price": 1100, "quantity": 400, "exchange": "NSE",
	}, &res)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	c := res.Charges
	if c.STT != 840 || c.ExchangeTxn != 25.54 || c.SEBI != 0.84 || c.StampDuty != 60 || c.GST != 4.75 {
		t.Errorf("charges = %+v", c)
	}
	if c.Total != 931.13 {
		t.Errorf("total = %v, want 931.13", c.Total)
	}
	if !res.Breakeven.Converged {
		t.Error("breakeven did not converge")
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/calculate-brokerage",
		map[string]any{"buy_price": 0, "sell_price": 1, "quantity": 1}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid input status = %d", resp.StatusCode)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/settings/etf_data_provider", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing setting status = %d", resp.StatusCode)
	}

	doJSON(t, http.MethodPut, srv.URL+"/api/settings/theme", map[string]string{"value": "dark"}, nil)

	var got map[string]string
	doJSON(t, http.MethodGet, srv.URL+"/api/settings/theme", nil, &got)
	if got["value"] != "dark" {
		t.Errorf("setting = %v", got)
	}
}

func TestMarketsDisabled(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/etfs/refresh", nil, nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("refresh without markets module: status = %d, want 503", resp.StatusCode)
	}

	// Listing still works against the (empty) store.
	var quotes []domain.ETFQuote
	doJSON(t, http.MethodGet, srv.URL+"/api/etfs", nil, &quotes)
	if len(quotes) != 0 {
		t.Errorf("quotes = %+v", quotes)
	}
}

func TestExportTradesCSV(t *testing.T) {
	srv, _ := newTestServer(t)
	m := seedMember(t, srv, "DS", 36)

	doJSON(t, http.MethodPost, srv.URL+"/api/trades", map[string]any{
		"member_id": m.ID, "symbol": "GOLDBEES", "buy_date": "2025-02-01",
		"buy_price": 55, "sell_date": "2025-03-01", "sell_price": 58,
		"quantity": 100, "exchange": "NSE",
	}, nil)

	resp, err := http.Get(srv.URL + "/api/trades/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("CSV lines = %d, want header + 1 row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Member,Trade #,Symbol") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "DS") || !strings.Contains(lines[1], "GOLDBEES") || !strings.Contains(lines[1], "Profit") {
		t.Errorf("row = %q", lines[1])
	}
}

const importCSV = `Symbol,Quantity,Entry Price,Entry Date,Exit Price,Exit Date,Member,Notes
GOLDBEES,100,55,2025-01-10,58,2025-02-10,DS,personal
NIFTYBEES,300,250,2025-01-15,,,ALL,group buy
ITBEES,60,40,2025-02-01,,,"DS,SA",pair
BANKBEES,10,500,2025-02-05,,,,default
`

func TestImportTradesCSV(t *testing.T) {
	srv, _ := newTestServer(t)
	ds := seedMember(t, srv, "DS", 36)
	sa := seedMember(t, srv, "SA", 35)
	seedDeposit(t, srv, ds.ID, 3000000)
	seedDeposit(t, srv, sa.ID, 700000)

	resp, err := http.Post(srv.URL+"/api/trades/import", "text/csv",
		strings.NewReader("\ufeff"+importCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()

	var report ImportReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Success != 4 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}

	var trades []domain.Trade
	doJSON(t, http.MethodGet, srv.URL+"/api/trades", nil, &trades)
	// 1 personal + 2 from ALL + 2 from the pair + 1 default.
	if len(trades) != 6 {
		t.Fatalf("imported trades = %d, want 6", len(trades))
	}

	bySymbol := make(map[string][]domain.Trade)
	for _, tr := range trades {
		bySymbol[tr.Symbol] = append(bySymbol[tr.Symbol], tr)
	}

	if len(bySymbol["NIFTYBEES"]) != 2 {
		t.Errorf("ALL split fragments = %d, want 2", len(bySymbol["NIFTYBEES"]))
	}
	qty := 0.0
	number := bySymbol["NIFTYBEES"][0].TradeNumber
	for _, tr := range bySymbol["NIFTYBEES"] {
		qty += tr.Quantity
		if tr.TradeNumber != number {
			t.Error("ALL split fragments do not share a trade number")
		}
	}
	if qty != 300 {
		t.Errorf("ALL split quantity = %v, want 300", qty)
	}

	if len(bySymbol["ITBEES"]) != 2 {
		t.Errorf("pair split fragments = %d, want 2", len(bySymbol["ITBEES"]))
	}
	if len(bySymbol["BANKBEES"]) != 1 || bySymbol["BANKBEES"][0].MemberID != ds.ID {
		t.Errorf("blank member should default to the first member: %+v", bySymbol["BANKBEES"])
	}

	// The closed personal row got its charges computed on import.
	gb := bySymbol["GOLDBEES"]
	if len(gb) != 1 || gb[0].Brokerage == 0 || gb[0].NetProfit == 0 {
		t.Errorf("closed import row = %+v", gb)
	}
}

func TestImportTradesCSVRowErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	seedMember(t, srv, "DS", 36)

	bad := "Symbol,Quantity,Entry Price,Member\n" +
		"GOLDBEES,100,55,DS\n" +
		",100,55,DS\n" + // missing symbol
		"ITBEES,abc,55,DS\n" + // bad quantity
		"CPSEETF,10,80,ZZ\n" // unknown member
	resp, err := http.Post(srv.URL+"/api/trades/import", "text/csv", strings.NewReader(bad))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()

	var report ImportReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Success != 1 || report.Failed != 3 {
		t.Errorf("report = %+v", report)
	}
}
