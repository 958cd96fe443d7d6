package httpapi

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"etfledger/internal/allocation"
	"etfledger/internal/domain"
	"etfledger/internal/ledger"
	"etfledger/internal/split"
	"etfledger/internal/store"
)

var exportHeaders = []string{
	"Member", "Trade #", "Symbol", "Entry Date", "Entry Price", "Quantity", "Investment",
	"Exit Price", "Exit Date", "Turnover", "Gross P/L", "Profit %",
	"Brokerage", "Net P/L", "Status", "Notes",
}

// handleExportTrades streams all trades as CSV, newest trade number first,
// with derived investment/turnover/status columns for spreadsheet review.
func (s *APIServer) handleExportTrades(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trades, err := s.trades.ListTrades(ctx, store.TradeFilter{})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	members, err := s.members.ListMembers(ctx, false)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	codes := make(map[int64]string, len(members))
	for _, m := range members {
		codes[m.ID] = m.Code
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=trades-%s.csv", time.Now().UTC().Format(domain.DateLayout)))

	cw := csv.NewWriter(w)
	cw.Write(exportHeaders)
	for _, t := range trades {
		cw.Write(exportRow(t, codes[t.MemberID]))
	}
	cw.Flush()
}

func exportRow(t domain.Trade, memberCode string) []string {
	f2 := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	row := []string{
		memberCode,
		strconv.FormatInt(t.TradeNumber, 10),
		t.Symbol,
		t.BuyDate,
		num(t.BuyPrice),
		num(t.Quantity),
		f2(t.BuyPrice * t.Quantity),
		"", "", "", "", "", // exit columns for live trades
		f2(t.Brokerage),
		f2(t.NetProfit),
		"LIVE",
		t.Notes,
	}

	if t.Closed() {
		sell := *t.SellPrice
		row[7] = num(sell)
		row[8] = *t.SellDate
		row[9] = f2(sell * t.Quantity)
		row[10] = f2((sell - t.BuyPrice) * t.Quantity)
		row[11] = f2((sell - t.BuyPrice) / t.BuyPrice * 100)
		if t.NetProfit >= 0 {
			row[14] = "Profit"
		} else {
			row[14] = "Loss"
		}
	}
	return row
}

// ImportReport summarizes a CSV import run.
type ImportReport struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// handleImportTrades ingests a trade CSV. Each row carries Symbol, Quantity,
// Entry Price/Date, optional Exit Price/Date, Notes, and a Member column:
//
//	"ALL"    split across every active member by capital weight
//	"A,B"    split across the listed member codes
//	"A"      a single member's trade
//	(blank)  the first member on file
//
// Split rows honor per-row division overrides in "Div <CODE>" columns, and
// each split group shares one trade number with the block brokerage computed
// once and prorated.
func (s *APIServer) handleImportTrades(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 8<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}
	text := strings.TrimPrefix(string(body), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		writeError(w, http.StatusBadRequest, "parsing CSV: "+err.Error())
		return
	}
	if len(records) < 2 {
		writeError(w, http.StatusBadRequest, "CSV has no data rows")
		return
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	ctx := r.Context()
	members, err := s.members.ListMembers(ctx, false)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if len(members) == 0 {
		writeError(w, http.StatusBadRequest, "no members on file to import against")
		return
	}

	imp := &importer{server: s, members: members}
	report := ImportReport{}
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		if err := imp.importRow(ctx, row); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		report.Success++
	}
	writeJSON(w, report)
}

type importer struct {
	server  *APIServer
	members []domain.Member
}

func (im *importer) byCode(code string) *domain.Member {
	for i := range im.members {
		if strings.EqualFold(im.members[i].Code, code) {
			return &im.members[i]
		}
	}
	return nil
}

func rowValue(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func parseCSVNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// parseCSVDate accepts the date formats exported spreadsheets produce.
// "LIVE" and blank mean no date.
func parseCSVDate(s string) (string, bool) {
	if s == "" || strings.EqualFold(s, "LIVE") {
		return "", false
	}
	for _, layout := range []string{domain.DateLayout, "02-Jan-06", "02-Jan-2006", "02/01/2006", "2-Jan-06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.DateLayout), true
		}
	}
	return "", false
}

func (im *importer) importRow(ctx context.Context, row map[string]string) error {
	symbol := rowValue(row, "Symbol", "symbol", "SYMBOL")
	rawQty := rowValue(row, "Quantity", "quantity", "qty")
	rawPrice := rowValue(row, "Entry Price", "price")
	if symbol == "" || rawQty == "" || rawPrice == "" {
		return fmt.Errorf("row for %q missing symbol, quantity, or entry price", symbol)
	}

	qty, err := parseCSVNumber(rawQty)
	if err != nil || qty <= 0 {
		return fmt.Errorf("%s: bad quantity %q", symbol, rawQty)
	}
	buyPrice, err := parseCSVNumber(rawPrice)
	if err != nil || buyPrice <= 0 {
		return fmt.Errorf("%s: bad entry price %q", symbol, rawPrice)
	}

	buyDate, ok := parseCSVDate(rowValue(row, "Entry Date"))
	if !ok {
		buyDate = time.Now().UTC().Format(domain.DateLayout)
	}

	var sellDate *string
	var sellPrice *float64
	if raw := rowValue(row, "Exit Price"); raw != "" {
		p, err := parseCSVNumber(raw)
		if err != nil || p <= 0 {
			return fmt.Errorf("%s: bad exit price %q", symbol, raw)
		}
		d, ok := parseCSVDate(rowValue(row, "Exit Date"))
		if !ok {
			return fmt.Errorf("%s: exit price without a parseable exit date", symbol)
		}
		sellPrice, sellDate = &p, &d
	}

	notes := rowValue(row, "Notes", "notes")

	memberSpec := strings.ToUpper(rowValue(row, "Member", "member"))
	switch {
	case memberSpec == "ALL":
		var group []domain.Member
		for _, m := range im.members {
			if m.IsActive {
				group = append(group, m)
			}
		}
		if len(group) == 0 {
			return fmt.Errorf("%s: Member=ALL but no active members", symbol)
		}
		return im.importSplit(ctx, row, group, symbol, buyDate, buyPrice, sellDate, sellPrice, qty, notes)

	case strings.Contains(memberSpec, ","):
		var group []domain.Member
		for _, code := range strings.Split(memberSpec, ",") {
			m := im.byCode(strings.TrimSpace(code))
			if m == nil {
				return fmt.Errorf("%s: unknown member code %q", symbol, strings.TrimSpace(code))
			}
			group = append(group, *m)
		}
		return im.importSplit(ctx, row, group, symbol, buyDate, buyPrice, sellDate, sellPrice, qty, notes)

	default:
		member := &im.members[0]
		if memberSpec != "" {
			if member = im.byCode(memberSpec); member == nil {
				return fmt.Errorf("%s: unknown member code %q", symbol, memberSpec)
			}
		}
		trade := domain.Trade{
			MemberID: member.ID, Symbol: symbol,
			BuyDate: buyDate, BuyPrice: buyPrice,
			SellDate: sellDate, SellPrice: sellPrice,
			Quantity: qty, Notes: notes, Exchange: domain.ExchangeNSE,
		}
		return im.server.engine.CreateTrade(ctx, &trade)
	}
}

// divisionOverrides collects "Div <CODE>" / "Div_<CODE>" columns from a row.
func divisionOverrides(row map[string]string) map[string]float64 {
	overrides := make(map[string]float64)
	for key, raw := range row {
		k := strings.ToLower(strings.TrimSpace(key))
		if !strings.HasPrefix(k, "div ") && !strings.HasPrefix(k, "div_") {
			continue
		}
		parts := strings.FieldsFunc(strings.TrimSpace(key), func(r rune) bool {
			return r == ' ' || r == '_'
		})
		if len(parts) < 2 {
			continue
		}
		if v, err := parseCSVNumber(raw); err == nil && v > 0 {
			overrides[strings.ToUpper(parts[1])] = v
		}
	}
	return overrides
}

func (im *importer) importSplit(
	ctx context.Context, row map[string]string, group []domain.Member,
	symbol, buyDate string, buyPrice float64, sellDate *string, sellPrice *float64,
	qty float64, notes string,
) error {
	overrides := divisionOverrides(row)

	txns, err := im.server.capital.ListCapitalTransactions(ctx, 0)
	if err != nil {
		return err
	}
	trades, err := im.server.trades.ListTrades(ctx, store.TradeFilter{})
	if err != nil {
		return err
	}

	stakes := make([]allocation.MemberStake, len(group))
	for i, m := range group {
		division := m.CapitalDivision
		if v, ok := overrides[strings.ToUpper(m.Code)]; ok {
			division = v
		}
		stakes[i] = allocation.MemberStake{
			MemberID:        m.ID,
			CurrentCapital:  ledger.CurrentCapital(m.ID, txns, trades).CurrentCapital,
			CapitalDivision: division,
		}
	}

	if notes == "" {
		notes = "[Import Split]"
	} else {
		notes += " [Import Split]"
	}

	block := split.BlockTrade{
		Symbol: symbol, BuyDate: buyDate, BuyPrice: buyPrice,
		SellDate: sellDate, SellPrice: sellPrice,
		Quantity: qty, Exchange: domain.ExchangeNSE, Notes: notes,
	}
	res, err := split.Build(block, stakes)
	if err != nil {
		return fmt.Errorf("%s: %w", symbol, err)
	}

	normalized, err := im.server.symbols.EnsureSymbol(ctx, symbol)
	if err != nil {
		return err
	}

	fragments := make([]domain.Trade, 0, len(res.Fragments))
	for _, f := range res.Fragments {
		fragments = append(fragments, domain.Trade{
			MemberID: f.MemberID, Symbol: normalized,
			BuyDate: buyDate, BuyPrice: buyPrice,
			SellDate: sellDate, SellPrice: sellPrice,
			Quantity: f.Quantity, Brokerage: f.Brokerage, NetProfit: f.NetProfit,
			Notes: notes, Exchange: domain.ExchangeNSE,
		})
	}
	if len(fragments) == 0 {
		return fmt.Errorf("%s: allocation produced no fragments", symbol)
	}
	_, err = im.server.trades.CreateTradeGroup(ctx, fragments)
	return err
}
