// Package store defines storage interfaces for the trade ledger and provides
// SQLite (relational state) and Parquet (quote history) implementations.
package store

import (
	"context"
	"errors"
	"time"

	"etfledger/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// TradeFilter narrows ListTrades. Zero values mean "no filter". Status is
// "live" (no exit), "closed" (exited), or empty for both. ProfitOnly filters
// on the sign of net profit when set.
type TradeFilter struct {
	MemberID   int64
	Symbol     string // substring match
	StartDate  string // buy_date >=
	EndDate    string // buy_date <=
	Status     string
	ProfitOnly *bool
}

// MemberStore persists and retrieves members.
type MemberStore interface {
	// ListMembers returns members ordered by ID, optionally only active ones.
	ListMembers(ctx context.Context, activeOnly bool) ([]domain.Member, error)

	// GetMember retrieves a single member by ID.
	GetMember(ctx context.Context, id int64) (*domain.Member, error)

	// GetMemberByCode retrieves a single member by its code.
	GetMemberByCode(ctx context.Context, code string) (*domain.Member, error)

	// CreateMember inserts a new member and fills in its ID.
	CreateMember(ctx context.Context, m *domain.Member) error

	// UpdateMember persists name and division changes.
	UpdateMember(ctx context.Context, m *domain.Member) error

	// DeactivateMember soft-deletes a member; historical trades survive.
	DeactivateMember(ctx context.Context, id int64) error
}

// CapitalStore persists and retrieves capital transactions.
type CapitalStore interface {
	// ListCapitalTransactions returns transactions newest-first, optionally
	// filtered to one member (memberID 0 means all).
	ListCapitalTransactions(ctx context.Context, memberID int64) ([]domain.CapitalTransaction, error)

	// CreateCapitalTransaction inserts a transaction and fills in its ID.
	CreateCapitalTransaction(ctx context.Context, t *domain.CapitalTransaction) error

	// UpdateCapitalTransaction persists a correction edit.
	UpdateCapitalTransaction(ctx context.Context, t *domain.CapitalTransaction) error

	// DeleteCapitalTransaction removes a transaction.
	DeleteCapitalTransaction(ctx context.Context, id int64) error
}

// TradeStore persists and retrieves trades.
type TradeStore interface {
	// ListTrades returns trades matching the filter, newest buy date first.
	ListTrades(ctx context.Context, f TradeFilter) ([]domain.Trade, error)

	// GetTrade retrieves a single trade by ID.
	GetTrade(ctx context.Context, id int64) (*domain.Trade, error)

	// CreateTrade inserts one trade, assigning it the next trade number,
	// and fills in ID and TradeNumber.
	CreateTrade(ctx context.Context, t *domain.Trade) error

	// CreateTradeGroup inserts all fragments of one split trade in a single
	// transaction, assigning them one shared trade number. Either every
	// fragment is persisted or none is. Returns the shared trade number.
	CreateTradeGroup(ctx context.Context, trades []domain.Trade) (int64, error)

	// UpdateTrade persists changes to an existing trade.
	UpdateTrade(ctx context.Context, t *domain.Trade) error

	// DeleteTrades removes trades by ID and reports how many were deleted.
	DeleteTrades(ctx context.Context, ids []int64) (int64, error)
}

// SymbolStore tracks the instruments known to the ledger.
type SymbolStore interface {
	// ListSymbols returns active symbols in alphabetical order.
	ListSymbols(ctx context.Context) ([]domain.Symbol, error)

	// CreateSymbol registers a symbol; duplicate codes are rejected.
	CreateSymbol(ctx context.Context, sym *domain.Symbol) error

	// EnsureSymbol normalizes the code and registers it if unknown,
	// returning the normalized form.
	EnsureSymbol(ctx context.Context, symbol string) (string, error)
}

// SettingStore is a small key/value store for application settings such as
// the preferred ETF quote provider.
type SettingStore interface {
	// GetSetting returns the value for key, or ErrNotFound.
	GetSetting(ctx context.Context, key string) (string, error)

	// PutSetting inserts or replaces a setting.
	PutSetting(ctx context.Context, key, value string) error
}

// QuoteStore holds the latest ETF quotes and institutional flow records.
type QuoteStore interface {
	// UpsertETFQuote stores the latest quote for a symbol.
	UpsertETFQuote(ctx context.Context, q *domain.ETFQuote) error

	// ListETFQuotes returns all stored quotes ordered by symbol.
	ListETFQuotes(ctx context.Context) ([]domain.ETFQuote, error)

	// UpsertFIIDIIFlow stores one day's flows for a category.
	UpsertFIIDIIFlow(ctx context.Context, f *domain.FIIDIIFlow) error

	// ListFIIDIIFlows returns the most recent flow rows, up to limit.
	ListFIIDIIFlows(ctx context.Context, limit int) ([]domain.FIIDIIFlow, error)
}

// QuoteHistoryStore archives quote snapshots for charting.
type QuoteHistoryStore interface {
	// AppendQuotes archives a batch of quote snapshots.
	AppendQuotes(ctx context.Context, quotes []domain.ETFQuote) error

	// ReadQuoteHistory returns archived snapshots for symbol in [start, end].
	ReadQuoteHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.ETFQuote, error)
}
