package engine

import (
	"context"
	"sort"

	"etfledger/internal/domain"
	"etfledger/internal/ledger"
	"etfledger/internal/store"
)

// ProfitSummary aggregates realized performance over a set of trades.
type ProfitSummary struct {
	TotalTrades    int     `json:"total_trades"`
	LiveTrades     int     `json:"live_trades"`
	ExitedTrades   int     `json:"exited_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"` // 0..100, over exited trades
	TotalProfit    float64 `json:"total_profit"`
	TotalGains     float64 `json:"total_gains"`
	TotalLosses    float64 `json:"total_losses"`
	TotalBrokerage float64 `json:"total_brokerage"`
	LiveInvested   float64 `json:"live_invested"` // buy turnover of open positions
}

// ProfitSummary computes realized performance for the trades matching the
// filter (per member, per symbol, date-ranged, or overall).
func (e *Engine) ProfitSummary(ctx context.Context, f store.TradeFilter) (*ProfitSummary, error) {
	trades, err := e.trades.ListTrades(ctx, f)
	if err != nil {
		return nil, err
	}

	s := &ProfitSummary{TotalTrades: len(trades)}
	for _, t := range trades {
		if !t.Closed() {
			s.LiveTrades++
			s.LiveInvested += t.BuyPrice * t.Quantity
			continue
		}
		s.ExitedTrades++
		s.TotalProfit += t.NetProfit
		s.TotalBrokerage += t.Brokerage
		if t.NetProfit >= 0 {
			s.WinningTrades++
			s.TotalGains += t.NetProfit
		} else {
			s.LosingTrades++
			s.TotalLosses += t.NetProfit
		}
	}
	if s.ExitedTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.ExitedTrades) * 100
	}
	return s, nil
}

// SymbolStat is one symbol's aggregate in the dashboard top list.
type SymbolStat struct {
	Symbol     string  `json:"symbol"`
	TradeCount int     `json:"trade_count"`
	NetProfit  float64 `json:"net_profit"`
}

// DashboardStats is the front-page aggregate view.
type DashboardStats struct {
	ActiveMembers int            `json:"active_members"`
	TotalCapital  float64        `json:"total_capital"`
	Summary       ProfitSummary  `json:"summary"`
	RecentTrades  []domain.Trade `json:"recent_trades"`
	TopSymbols    []SymbolStat   `json:"top_symbols"`
}

// DashboardStats assembles the overview: member capital totals, the overall
// profit summary, the five most recent trades, and the five most traded
// symbols by realized profit.
func (e *Engine) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	members, err := e.members.ListMembers(ctx, true)
	if err != nil {
		return nil, err
	}
	txns, err := e.capital.ListCapitalTransactions(ctx, 0)
	if err != nil {
		return nil, err
	}
	trades, err := e.trades.ListTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{ActiveMembers: len(members)}
	for _, m := range members {
		stats.TotalCapital += ledger.CurrentCapital(m.ID, txns, trades).CurrentCapital
	}

	summary, err := e.ProfitSummary(ctx, store.TradeFilter{})
	if err != nil {
		return nil, err
	}
	stats.Summary = *summary

	// ListTrades is already newest-first.
	if len(trades) > 5 {
		stats.RecentTrades = trades[:5]
	} else {
		stats.RecentTrades = trades
	}

	bySymbol := make(map[string]*SymbolStat)
	for _, t := range trades {
		st, ok := bySymbol[t.Symbol]
		if !ok {
			st = &SymbolStat{Symbol: t.Symbol}
			bySymbol[t.Symbol] = st
		}
		st.TradeCount++
		if t.Closed() {
			st.NetProfit += t.NetProfit
		}
	}
	for _, st := range bySymbol {
		stats.TopSymbols = append(stats.TopSymbols, *st)
	}
	sort.Slice(stats.TopSymbols, func(i, j int) bool {
		a, b := stats.TopSymbols[i], stats.TopSymbols[j]
		if a.NetProfit != b.NetProfit {
			return a.NetProfit > b.NetProfit
		}
		return a.Symbol < b.Symbol
	})
	if len(stats.TopSymbols) > 5 {
		stats.TopSymbols = stats.TopSymbols[:5]
	}
	return stats, nil
}

// MonthlyPerformance is one month's realized result.
type MonthlyPerformance struct {
	Month      string  `json:"month"` // YYYY-MM
	TradeCount int     `json:"trade_count"`
	NetProfit  float64 `json:"net_profit"`
	Brokerage  float64 `json:"brokerage"`
}

// MonthlyPerformance groups realized profit by exit month, oldest first.
// memberID 0 covers all members.
func (e *Engine) MonthlyPerformance(ctx context.Context, memberID int64) ([]MonthlyPerformance, error) {
	trades, err := e.trades.ListTrades(ctx, store.TradeFilter{MemberID: memberID, Status: "closed"})
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string]*MonthlyPerformance)
	for _, t := range trades {
		if t.SellDate == nil || len(*t.SellDate) < 7 {
			continue
		}
		month := (*t.SellDate)[:7]
		mp, ok := byMonth[month]
		if !ok {
			mp = &MonthlyPerformance{Month: month}
			byMonth[month] = mp
		}
		mp.TradeCount++
		mp.NetProfit += t.NetProfit
		mp.Brokerage += t.Brokerage
	}

	out := make([]MonthlyPerformance, 0, len(byMonth))
	for _, mp := range byMonth {
		out = append(out, *mp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// CapitalPoint is one event on a member's capital time series.
type CapitalPoint struct {
	Date    string  `json:"date"`
	Change  float64 `json:"change"`
	Capital float64 `json:"capital"` // running total after this event
	Source  string  `json:"source"`  // "deposit", "withdrawal", or "trade"
}

// CapitalGrowth builds the running capital series for a member by merging
// capital transactions with realized trade results in date order. The series
// ends at the same value MemberCapital derives.
func (e *Engine) CapitalGrowth(ctx context.Context, memberID int64) ([]CapitalPoint, error) {
	if _, err := e.members.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	txns, err := e.capital.ListCapitalTransactions(ctx, memberID)
	if err != nil {
		return nil, err
	}
	trades, err := e.trades.ListTrades(ctx, store.TradeFilter{MemberID: memberID, Status: "closed"})
	if err != nil {
		return nil, err
	}

	points := make([]CapitalPoint, 0, len(txns)+len(trades))
	for _, t := range txns {
		source := "deposit"
		if t.Type == domain.TransactionWithdrawal {
			source = "withdrawal"
		}
		points = append(points, CapitalPoint{Date: t.Date, Change: t.SignedAmount(), Source: source})
	}
	for _, t := range trades {
		points = append(points, CapitalPoint{Date: *t.SellDate, Change: t.NetProfit, Source: "trade"})
	}

	// Deposits before trades on the same day, so intraday ordering is stable.
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Date != points[j].Date {
			return points[i].Date < points[j].Date
		}
		return points[i].Source != "trade" && points[j].Source == "trade"
	})

	running := 0.0
	for i := range points {
		running += points[i].Change
		points[i].Capital = running
	}
	return points, nil
}
