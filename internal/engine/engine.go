// Package engine coordinates the trade ledger: it wires the stores to the
// brokerage, ledger, and allocation engines and exposes the operations the
// HTTP API serves.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"etfledger/internal/allocation"
	"etfledger/internal/brokerage"
	"etfledger/internal/domain"
	"etfledger/internal/ledger"
	"etfledger/internal/split"
	"etfledger/internal/store"
)

var (
	// ErrNoActiveMembers is returned when a split is requested but no member
	// is active to receive a fragment.
	ErrNoActiveMembers = errors.New("engine: no active members")

	// ErrInvalidTrade is returned for trade input that fails validation.
	ErrInvalidTrade = errors.New("engine: invalid trade")
)

// Engine orchestrates ledger operations by delegating to the stores for
// persistence and to the pure calculation packages for the numbers.
type Engine struct {
	members store.MemberStore
	capital store.CapitalStore
	trades  store.TradeStore
	symbols store.SymbolStore
	logger  *slog.Logger
}

// NewEngine creates an Engine wired with the given dependencies.
func NewEngine(
	members store.MemberStore,
	capital store.CapitalStore,
	trades store.TradeStore,
	symbols store.SymbolStore,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		members: members,
		capital: capital,
		trades:  trades,
		symbols: symbols,
		logger:  logger,
	}
}

func validateTrade(t *domain.Trade) error {
	switch {
	case t.Symbol == "":
		return fmt.Errorf("%w: symbol is required", ErrInvalidTrade)
	case t.BuyDate == "":
		return fmt.Errorf("%w: buy date is required", ErrInvalidTrade)
	case t.BuyPrice <= 0:
		return fmt.Errorf("%w: buy price must be positive", ErrInvalidTrade)
	case t.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidTrade)
	case (t.SellDate == nil) != (t.SellPrice == nil):
		return fmt.Errorf("%w: sell date and sell price must be set together", ErrInvalidTrade)
	case t.SellPrice != nil && *t.SellPrice <= 0:
		return fmt.Errorf("%w: sell price must be positive", ErrInvalidTrade)
	}
	return nil
}

func validateBlock(b split.BlockTrade) error {
	probe := domain.Trade{
		Symbol: b.Symbol, BuyDate: b.BuyDate, BuyPrice: b.BuyPrice,
		SellDate: b.SellDate, SellPrice: b.SellPrice, Quantity: b.Quantity,
	}
	return validateTrade(&probe)
}

// applyCharges recomputes the trade's brokerage and net profit from its
// current prices. Live trades carry zeros; charges exist only once there is
// an exit to settle.
func applyCharges(t *domain.Trade) {
	if !t.Closed() {
		t.Brokerage = 0
		t.NetProfit = 0
		return
	}
	np := brokerage.ComputeNetProfit(t.BuyPrice, *t.SellPrice, t.Quantity, t.Exchange)
	t.Brokerage = np.Brokerage
	t.NetProfit = np.NetProfit
}

// CreateTrade validates, normalizes, and persists one trade for one member.
// The symbol is auto-registered and the next trade number assigned.
func (e *Engine) CreateTrade(ctx context.Context, t *domain.Trade) error {
	if err := validateTrade(t); err != nil {
		return err
	}
	if _, err := e.members.GetMember(ctx, t.MemberID); err != nil {
		return fmt.Errorf("looking up member %d: %w", t.MemberID, err)
	}

	symbol, err := e.symbols.EnsureSymbol(ctx, t.Symbol)
	if err != nil {
		return fmt.Errorf("registering symbol: %w", err)
	}
	t.Symbol = symbol
	if t.Exchange == "" {
		t.Exchange = domain.ExchangeNSE
	}
	applyCharges(t)

	if err := e.trades.CreateTrade(ctx, t); err != nil {
		return err
	}
	e.logger.Info("trade created",
		"trade_id", t.ID, "trade_number", t.TradeNumber,
		"symbol", t.Symbol, "member_id", t.MemberID, "quantity", t.Quantity)
	return nil
}

// UpdateTrade validates and persists changes to an existing trade,
// recomputing charges from the updated prices.
func (e *Engine) UpdateTrade(ctx context.Context, t *domain.Trade) error {
	if err := validateTrade(t); err != nil {
		return err
	}

	symbol, err := e.symbols.EnsureSymbol(ctx, t.Symbol)
	if err != nil {
		return fmt.Errorf("registering symbol: %w", err)
	}
	t.Symbol = symbol
	if t.Exchange == "" {
		t.Exchange = domain.ExchangeNSE
	}
	applyCharges(t)

	return e.trades.UpdateTrade(ctx, t)
}

// MemberCapital derives a member's capital summary from freshly loaded
// transactions and trades. Capital is never read from a stored snapshot.
func (e *Engine) MemberCapital(ctx context.Context, memberID int64) (*ledger.Summary, error) {
	if _, err := e.members.GetMember(ctx, memberID); err != nil {
		return nil, err
	}
	txns, err := e.capital.ListCapitalTransactions(ctx, memberID)
	if err != nil {
		return nil, err
	}
	trades, err := e.trades.ListTrades(ctx, store.TradeFilter{MemberID: memberID})
	if err != nil {
		return nil, err
	}
	s := ledger.CurrentCapital(memberID, txns, trades)
	return &s, nil
}

// activeStakes loads every active member with a freshly derived capital
// position, ready to feed the allocation engine.
func (e *Engine) activeStakes(ctx context.Context) ([]domain.Member, []allocation.MemberStake, error) {
	members, err := e.members.ListMembers(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	if len(members) == 0 {
		return nil, nil, ErrNoActiveMembers
	}

	txns, err := e.capital.ListCapitalTransactions(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	trades, err := e.trades.ListTrades(ctx, store.TradeFilter{})
	if err != nil {
		return nil, nil, err
	}

	stakes := make([]allocation.MemberStake, len(members))
	for i, m := range members {
		summary := ledger.CurrentCapital(m.ID, txns, trades)
		stakes[i] = allocation.MemberStake{
			MemberID:        m.ID,
			CurrentCapital:  summary.CurrentCapital,
			CapitalDivision: m.CapitalDivision,
		}
	}
	return members, stakes, nil
}

// SplitRequest is one block trade to be divided across the active members.
type SplitRequest struct {
	Symbol     string          `json:"symbol"`
	BuyDate    string          `json:"buy_date"`
	BuyPrice   float64         `json:"buy_price"`
	SellDate   *string         `json:"sell_date"`
	SellPrice  *float64        `json:"sell_price"`
	Quantity   float64         `json:"quantity"`
	Exchange   domain.Exchange `json:"exchange"`
	Notes      string          `json:"notes,omitempty"`
	WholeUnits bool            `json:"whole_units,omitempty"`
}

// SplitResult reports the persisted fragments of one split block trade.
type SplitResult struct {
	TradeNumber int64          `json:"trade_number"`
	EqualWeight bool           `json:"equal_weight"`
	Trades      []domain.Trade `json:"trades"`
}

// CreateSplitTrade divides a block trade across the active members by
// capital weight and persists every fragment atomically under one shared
// trade number. Nothing is written when allocation or persistence fails.
func (e *Engine) CreateSplitTrade(ctx context.Context, req SplitRequest) (*SplitResult, error) {
	block := split.BlockTrade{
		Symbol:     req.Symbol,
		BuyDate:    req.BuyDate,
		BuyPrice:   req.BuyPrice,
		SellDate:   req.SellDate,
		SellPrice:  req.SellPrice,
		Quantity:   req.Quantity,
		Exchange:   req.Exchange,
		Notes:      req.Notes,
		WholeUnits: req.WholeUnits,
	}
	if err := validateBlock(block); err != nil {
		return nil, err
	}

	members, stakes, err := e.activeStakes(ctx)
	if err != nil {
		return nil, err
	}

	symbol, err := e.symbols.EnsureSymbol(ctx, block.Symbol)
	if err != nil {
		return nil, fmt.Errorf("registering symbol: %w", err)
	}
	block.Symbol = symbol
	if block.Exchange == "" {
		block.Exchange = domain.ExchangeNSE
	}

	res, err := split.Build(block, stakes)
	if err != nil {
		return nil, err
	}

	fragments := make([]domain.Trade, 0, len(res.Fragments))
	for _, f := range res.Fragments {
		fragments = append(fragments, domain.Trade{
			MemberID:  f.MemberID,
			Symbol:    block.Symbol,
			BuyDate:   block.BuyDate,
			BuyPrice:  block.BuyPrice,
			SellDate:  block.SellDate,
			SellPrice: block.SellPrice,
			Quantity:  f.Quantity,
			Brokerage: f.Brokerage,
			NetProfit: f.NetProfit,
			Notes:     block.Notes,
			Exchange:  block.Exchange,
		})
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: allocation produced no fragments", ErrInvalidTrade)
	}

	number, err := e.trades.CreateTradeGroup(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("persisting split trade: %w", err)
	}

	e.logger.Info("split trade created",
		"trade_number", number, "symbol", block.Symbol,
		"quantity", block.Quantity, "fragments", len(fragments),
		"members", len(members), "equal_weight", res.EqualWeight)

	return &SplitResult{
		TradeNumber: number,
		EqualWeight: res.EqualWeight,
		Trades:      fragments,
	}, nil
}

// AllocationPreview runs the capital-weighted allocation for a quantity
// without persisting anything. Used by the split form to show the would-be
// fragments before confirmation.
func (e *Engine) AllocationPreview(ctx context.Context, quantity float64, wholeUnits bool) (*allocation.Result, error) {
	_, stakes, err := e.activeStakes(ctx)
	if err != nil {
		return nil, err
	}
	res, err := allocation.Allocate(quantity, stakes)
	if err != nil {
		return nil, err
	}
	if wholeUnits {
		allocation.WholeUnits(res, quantity)
	}
	return res, nil
}

// ChargePreview is the standalone brokerage calculator result.
type ChargePreview struct {
	Charges   brokerage.Charges   `json:"charges"`
	Profit    brokerage.NetProfit `json:"profit"`
	Breakeven brokerage.Breakeven `json:"breakeven"`
}

// PreviewCharges computes the full charge breakdown, net profit, and
// breakeven sell price for a hypothetical round trip.
func (e *Engine) PreviewCharges(buyPrice, sellPrice, quantity float64, exchange domain.Exchange) ChargePreview {
	return ChargePreview{
		Charges:   brokerage.ComputeCharges(buyPrice, sellPrice, quantity, exchange),
		Profit:    brokerage.ComputeNetProfit(buyPrice, sellPrice, quantity, exchange),
		Breakeven: brokerage.ComputeBreakeven(buyPrice, quantity, exchange),
	}
}
