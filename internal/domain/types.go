// Package domain defines the core entities of the trade ledger: members,
// capital transactions, trades, and the market-data records attached to them.
package domain

import "time"

// Exchange identifies the stock exchange a trade was executed on.
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// TransactionType classifies a capital transaction.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

// DateLayout is the canonical date format for ledger dates. Dates are
// day-granular; no intraday timestamps are recorded on trades.
const DateLayout = "2006-01-02"

// Member is a co-investor with a capital account. Members are never deleted
// physically; IsActive=false excludes them from new splits while keeping
// historical trades intact.
type Member struct {
	ID              int64     `json:"id"`
	Code            string    `json:"member_code"`
	Name            string    `json:"member_name"`
	CapitalDivision float64   `json:"capital_division"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CapitalTransaction is one deposit into or withdrawal from a member's
// capital account. Amount is always positive; the direction comes from Type.
type CapitalTransaction struct {
	ID       int64           `json:"id"`
	MemberID int64           `json:"member_id"`
	Date     string          `json:"transaction_date"` // DateLayout
	Amount   float64         `json:"amount"`
	Type     TransactionType `json:"transaction_type"`
	Notes    string          `json:"notes,omitempty"`
}

// SignedAmount returns the transaction's contribution to capital:
// +Amount for deposits, -Amount for withdrawals.
func (t CapitalTransaction) SignedAmount() float64 {
	if t.Type == TransactionWithdrawal {
		return -t.Amount
	}
	return t.Amount
}

// Trade is one member's leg of a buy (and optionally sell) of an ETF.
// Fragments of a split block trade share a TradeNumber. SellDate and
// SellPrice are nil while the position is live; Brokerage and NetProfit are
// zero until the trade closes and must be recomputed whenever price,
// quantity, or exchange changes.
type Trade struct {
	ID          int64    `json:"id"`
	MemberID    int64    `json:"member_id"`
	Symbol      string   `json:"symbol"`
	TradeNumber int64    `json:"trade_number"`
	BuyDate     string   `json:"buy_date"` // DateLayout
	BuyPrice    float64  `json:"buy_price"`
	SellDate    *string  `json:"sell_date"`
	SellPrice   *float64 `json:"sell_price"`
	Quantity    float64  `json:"quantity"` // fractional quantities allowed
	Brokerage   float64  `json:"brokerage"`
	NetProfit   float64  `json:"net_profit"`
	Notes       string   `json:"notes,omitempty"`
	Exchange    Exchange `json:"exchange"`
}

// Closed reports whether the trade has a recorded exit.
func (t Trade) Closed() bool {
	return t.SellDate != nil && t.SellPrice != nil
}

// Symbol is a tradeable instrument known to the ledger. Symbols are
// auto-registered the first time a trade references them.
type Symbol struct {
	ID       int64  `json:"id"`
	Symbol   string `json:"symbol"`
	Category string `json:"category,omitempty"`
	IsActive bool   `json:"is_active"`
}

// ETFQuote is the latest fetched quote for a watched ETF.
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

// FIIDIIFlow is one day's institutional buy/sell activity for a category
// (FII or DII), in crores.
type FIIDIIFlow struct {
	Date      string  `json:"date"` // DateLayout
	Category  string  `json:"category"`
	BuyValue  float64 `json:"buy_value"`
	SellValue float64 `json:"sell_value"`
	NetValue  float64 `json:"net_value"`
}
