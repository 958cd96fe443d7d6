// Package etfledger provides a Go SDK for the etfledger-server API. The
// types here mirror the server's wire contracts so the package can be
// imported by external modules.
package etfledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Exchange and transaction-type values accepted by the API.
const (
	ExchangeNSE = "NSE"
	ExchangeBSE = "BSE"

	TransactionDeposit    = "DEPOSIT"
	TransactionWithdrawal = "WITHDRAWAL"
)

// ---------------------------------------------------------------------------
// Wire types
// ---------------------------------------------------------------------------

// Member is a co-investor account.
type Member struct {
	ID              int64     `json:"id"`
	Code            string    `json:"member_code"`
	Name            string    `json:"member_name"`
	CapitalDivision float64   `json:"capital_division"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewMember is the payload for creating a member. Capital, when positive,
// records the opening deposit in the same call.
type NewMember struct {
	Code            string  `json:"member_code"`
	Name            string  `json:"member_name"`
	CapitalDivision float64 `json:"capital_division"`
	Capital         float64 `json:"capital,omitempty"`
}

// CapitalTransaction is one deposit or withdrawal. Dates use "2006-01-02".
type CapitalTransaction struct {
	ID       int64   `json:"id"`
	MemberID int64   `json:"member_id"`
	Date     string  `json:"transaction_date"`
	Amount   float64 `json:"amount"`
	Type     string  `json:"transaction_type"`
	Notes    string  `json:"notes,omitempty"`
}

// CapitalSummary is a member's derived capital position.
type CapitalSummary struct {
	NetDeposits    float64 `json:"net_deposits"`
	RealizedPnL    float64 `json:"realized_pnl"`
	CurrentCapital float64 `json:"current_capital"`
}

// Trade is one member's leg of a position. SellDate and SellPrice are nil
// while the position is live.
type Trade struct {
	ID          int64    `json:"id"`
	MemberID    int64    `json:"member_id"`
	Symbol      string   `json:"symbol"`
	TradeNumber int64    `json:"trade_number"`
	BuyDate     string   `json:"buy_date"`
	BuyPrice    float64  `json:"buy_price"`
	SellDate    *string  `json:"sell_date"`
	SellPrice   *float64 `json:"sell_price"`
	Quantity    float64  `json:"quantity"`
	Brokerage   float64  `json:"brokerage"`
	NetProfit   float64  `json:"net_profit"`
	Notes       string   `json:"notes,omitempty"`
	Exchange    string   `json:"exchange"`
}

// SplitRequest describes a block trade to divide across the active members.
type SplitRequest struct {
	Symbol     string   `json:"symbol"`
	BuyDate    string   `json:"buy_date"`
	BuyPrice   float64  `json:"buy_price"`
	SellDate   *string  `json:"sell_date"`
	SellPrice  *float64 `json:"sell_price"`
	Quantity   float64  `json:"quantity"`
	Exchange   string   `json:"exchange"`
	Notes      string   `json:"notes,omitempty"`
	WholeUnits bool     `json:"whole_units,omitempty"`
}

// SplitResult reports the persisted fragments of one split block trade.
type SplitResult struct {
	TradeNumber int64   `json:"trade_number"`
	EqualWeight bool    `json:"equal_weight"`
	Trades      []Trade `json:"trades"`
}

// Charges is the broker's cost breakdown for a round trip.
type Charges struct {
	BuyTurnover   float64 `json:"buyTurnover"`
	SellTurnover  float64 `json:"sellTurnover"`
	TotalTurnover float64 `json:"totalTurnover"`
	STT           float64 `json:"stt"`
	ExchangeTxn   float64 `json:"exchangeTxn"`
	SEBI          float64 `json:"sebi"`
	GST           float64 `json:"gst"`
	StampDuty     float64 `json:"stampDuty"`
	Brokerage     float64 `json:"brokerage"`
	Total         float64 `json:"total"`
	Exchange      string  `json:"exchange"`
}

// NetProfit is the profit summary for a closed round trip.
type NetProfit struct {
	GrossProfit float64 `json:"grossProfit"`
	Brokerage   float64 `json:"brokerage"`
	NetProfit   float64 `json:"netProfit"`
}

// Breakeven is the sell price at which net profit crosses zero.
type Breakeven struct {
	SellPrice float64 `json:"breakevenSellPrice"`
	Points    float64 `json:"pointsToBreakeven"`
	Converged bool    `json:"converged"`
}

// ChargePreview bundles the calculator endpoint's response.
type ChargePreview struct {
	Charges   Charges   `json:"charges"`
	Profit    NetProfit `json:"profit"`
	Breakeven Breakeven `json:"breakeven"`
}

// ProfitSummary is aggregate performance, per member or overall.
type ProfitSummary struct {
	TotalTrades    int     `json:"total_trades"`
	LiveTrades     int     `json:"live_trades"`
	ExitedTrades   int     `json:"exited_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	TotalProfit    float64 `json:"total_profit"`
	TotalGains     float64 `json:"total_gains"`
	TotalLosses    float64 `json:"total_losses"`
	TotalBrokerage float64 `json:"total_brokerage"`
	LiveInvested   float64 `json:"live_invested"`
}

// ETFQuote is the latest stored quote for a watched ETF.
type ETFQuote struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Change1D      float64   `json:"change_1d"`
	ChangePct1D   float64   `json:"change_percent_1d"`
	Volume        int64     `json:"volume"`
	Provider      string    `json:"provider"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client talks to an etfledger-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL (e.g.
// "http://localhost:3000").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the server's error envelope.
type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var ae apiError
		if json.NewDecoder(resp.Body).Decode(&ae) == nil && ae.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, ae.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// Members lists members; activeOnly limits to active ones.
func (c *Client) Members(ctx context.Context, activeOnly bool) ([]Member, error) {
	path := "/api/members"
	if activeOnly {
		path += "?active=true"
	}
	var members []Member
	err := c.do(ctx, http.MethodGet, path, nil, &members)
	return members, err
}

// CreateMember registers a new member.
func (c *Client) CreateMember(ctx context.Context, m NewMember) (*Member, error) {
	var created Member
	if err := c.do(ctx, http.MethodPost, "/api/members", m, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// MemberCapital returns a member's derived capital summary.
func (c *Client) MemberCapital(ctx context.Context, memberID int64) (*CapitalSummary, error) {
	var s CapitalSummary
	path := "/api/members/" + strconv.FormatInt(memberID, 10) + "/capital"
	if err := c.do(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordCapital records a deposit or withdrawal.
func (c *Client) RecordCapital(ctx context.Context, t CapitalTransaction) (*CapitalTransaction, error) {
	var created CapitalTransaction
	if err := c.do(ctx, http.MethodPost, "/api/capital-transactions", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateTrade records a single-member trade.
func (c *Client) CreateTrade(ctx context.Context, t Trade) (*Trade, error) {
	var created Trade
	if err := c.do(ctx, http.MethodPost, "/api/trades", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// TradeQuery filters Trades.
type TradeQuery struct {
	MemberID  int64
	Symbol    string
	StartDate string
	EndDate   string
	Status    string // "live" or "closed"
}

// Trades lists trades matching the query.
func (c *Client) Trades(ctx context.Context, q TradeQuery) ([]Trade, error) {
	v := url.Values{}
	if q.MemberID != 0 {
		v.Set("member_id", strconv.FormatInt(q.MemberID, 10))
	}
	if q.Symbol != "" {
		v.Set("symbol", q.Symbol)
	}
	if q.StartDate != "" {
		v.Set("start_date", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("end_date", q.EndDate)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}

	path := "/api/trades"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	var trades []Trade
	err := c.do(ctx, http.MethodGet, path, nil, &trades)
	return trades, err
}

// CreateSplitTrade divides a block trade across the active members.
func (c *Client) CreateSplitTrade(ctx context.Context, req SplitRequest) (*SplitResult, error) {
	var res SplitResult
	if err := c.do(ctx, http.MethodPost, "/api/trades/split", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CalculateBrokerage previews the charge breakdown for a round trip.
func (c *Client) CalculateBrokerage(ctx context.Context, buyPrice, sellPrice, quantity float64, exchange string) (*ChargePreview, error) {
	body := map[string]any{
		"buy_price":  buyPrice,
		"sell_price": sellPrice,
		"quantity":   quantity,
		"exchange":   exchange,
	}
	var res ChargePreview
	if err := c.do(ctx, http.MethodPost, "/api/calculate-brokerage", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ProfitSummary returns aggregate performance; memberID 0 covers everyone.
func (c *Client) ProfitSummary(ctx context.Context, memberID int64) (*ProfitSummary, error) {
	path := "/api/profit-summary"
	if memberID != 0 {
		path += "?member_id=" + strconv.FormatInt(memberID, 10)
	}
	var s ProfitSummary
	if err := c.do(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ETFQuotes lists the latest stored quotes.
func (c *Client) ETFQuotes(ctx context.Context) ([]ETFQuote, error) {
	var quotes []ETFQuote
	err := c.do(ctx, http.MethodGet, "/api/etfs", nil, &quotes)
	return quotes, err
}
