package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"etfledger/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ MemberStore = (*SQLiteStore)(nil)
var _ CapitalStore = (*SQLiteStore)(nil)
var _ TradeStore = (*SQLiteStore)(nil)
var _ SymbolStore = (*SQLiteStore)(nil)
var _ SettingStore = (*SQLiteStore)(nil)
var _ QuoteStore = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS members (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	member_code      TEXT    NOT NULL UNIQUE,
	member_name      TEXT    NOT NULL,
	capital_division REAL    NOT NULL DEFAULT 1,
	is_active        INTEGER NOT NULL DEFAULT 1,
	created_at       TEXT    NOT NULL,
	updated_at       TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS capital_transactions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id        INTEGER NOT NULL REFERENCES members(id),
	transaction_date TEXT    NOT NULL,
	amount           REAL    NOT NULL,
	transaction_type TEXT    NOT NULL CHECK (transaction_type IN ('DEPOSIT', 'WITHDRAWAL')),
	notes            TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_capital_member ON capital_transactions(member_id);

CREATE TABLE IF NOT EXISTS trades (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	member_id    INTEGER NOT NULL REFERENCES members(id),
	symbol       TEXT    NOT NULL,
	trade_number INTEGER NOT NULL,
	buy_date     TEXT    NOT NULL,
	buy_price    REAL    NOT NULL,
	sell_date    TEXT,
	sell_price   REAL,
	quantity     REAL    NOT NULL,
	brokerage    REAL    NOT NULL DEFAULT 0,
	net_profit   REAL    NOT NULL DEFAULT 0,
	notes        TEXT    NOT NULL DEFAULT '',
	exchange     TEXT    NOT NULL DEFAULT 'NSE'
);
CREATE INDEX IF NOT EXISTS idx_trades_member ON trades(member_id);
CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
CREATE INDEX IF NOT EXISTS idx_trades_number ON trades(trade_number);

CREATE TABLE IF NOT EXISTS symbols (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol    TEXT    NOT NULL UNIQUE,
	category  TEXT    NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS app_settings (
	setting_key   TEXT PRIMARY KEY,
	setting_value TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS etf_quotes (
	symbol            TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	price             REAL NOT NULL,
	change_1d         REAL NOT NULL DEFAULT 0,
	change_percent_1d REAL NOT NULL DEFAULT 0,
	volume            INTEGER NOT NULL DEFAULT 0,
	provider          TEXT NOT NULL DEFAULT '',
	last_updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fii_dii_flows (
	date       TEXT NOT NULL,
	category   TEXT NOT NULL,
	buy_value  REAL NOT NULL,
	sell_value REAL NOT NULL,
	net_value  REAL NOT NULL,
	PRIMARY KEY (date, category)
);
`

// SQLiteStore implements the relational stores backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, enables WAL
// mode, and applies the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// ---------------------------------------------------------------------------
// MemberStore implementation
// ---------------------------------------------------------------------------

const memberColumns = "id, member_code, member_name, capital_division, is_active, created_at, updated_at"

func scanMember(row interface{ Scan(...any) error }) (*domain.Member, error) {
	var m domain.Member
	var active int
	var created, updated string
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.CapitalDivision, &active, &created, &updated)
	if err != nil {
		return nil, err
	}
	m.IsActive = active != 0
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = parseTime(updated)
	return &m, nil
}

// ListMembers returns members ordered by ID.
func (s *SQLiteStore) ListMembers(ctx context.Context, activeOnly bool) ([]domain.Member, error) {
	q := "SELECT " + memberColumns + " FROM members"
	if activeOnly {
		q += " WHERE is_active = 1"
	}
	q += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// GetMember retrieves a single member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, id int64) (*domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE id = ?", id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// GetMemberByCode retrieves a single member by its code.
func (s *SQLiteStore) GetMemberByCode(ctx context.Context, code string) (*domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE member_code = ?", code)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// CreateMember inserts a new member and fills in its ID.
func (s *SQLiteStore) CreateMember(ctx context.Context, m *domain.Member) error {
	if m.CapitalDivision <= 0 {
		m.CapitalDivision = 1
	}
	ts := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO members (member_code, member_name, capital_division, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.Code, m.Name, m.CapitalDivision, boolToInt(m.IsActive), ts, ts)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	m.CreatedAt = parseTime(ts)
	m.UpdatedAt = m.CreatedAt
	return err
}

// UpdateMember persists name and division changes.
func (s *SQLiteStore) UpdateMember(ctx context.Context, m *domain.Member) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET member_name = ?, capital_division = ?, updated_at = ? WHERE id = ?`,
		m.Name, m.CapitalDivision, now(), m.ID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeactivateMember soft-deletes a member.
func (s *SQLiteStore) DeactivateMember(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE members SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1", now(), id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// ---------------------------------------------------------------------------
// CapitalStore implementation
// ---------------------------------------------------------------------------

// ListCapitalTransactions returns transactions newest-first, optionally
// filtered to one member.
func (s *SQLiteStore) ListCapitalTransactions(ctx context.Context, memberID int64) ([]domain.CapitalTransaction, error) {
	q := "SELECT id, member_id, transaction_date, amount, transaction_type, notes FROM capital_transactions"
	var args []any
	if memberID != 0 {
		q += " WHERE member_id = ?"
		args = append(args, memberID)
	}
	q += " ORDER BY transaction_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.CapitalTransaction
	for rows.Next() {
		var t domain.CapitalTransaction
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Date, &t.Amount, &t.Type, &t.Notes); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// CreateCapitalTransaction inserts a transaction and fills in its ID.
func (s *SQLiteStore) CreateCapitalTransaction(ctx context.Context, t *domain.CapitalTransaction) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO capital_transactions (member_id, transaction_date, amount, transaction_type, notes)
		VALUES (?, ?, ?, ?, ?)`,
		t.MemberID, t.Date, t.Amount, t.Type, t.Notes)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

// UpdateCapitalTransaction persists a correction edit.
func (s *SQLiteStore) UpdateCapitalTransaction(ctx context.Context, t *domain.CapitalTransaction) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE capital_transactions
		SET transaction_date = ?, amount = ?, transaction_type = ?, notes = ?
		WHERE id = ?`,
		t.Date, t.Amount, t.Type, t.Notes, t.ID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteCapitalTransaction removes a transaction.
func (s *SQLiteStore) DeleteCapitalTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM capital_transactions WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// ---------------------------------------------------------------------------
// TradeStore implementation
// ---------------------------------------------------------------------------

const tradeColumns = "id, member_id, symbol, trade_number, buy_date, buy_price, sell_date, sell_price, quantity, brokerage, net_profit, notes, exchange"

func scanTrade(row interface{ Scan(...any) error }) (*domain.Trade, error) {
	var t domain.Trade
	var sellDate sql.NullString
	var sellPrice sql.NullFloat64
	err := row.Scan(&t.ID, &t.MemberID, &t.Symbol, &t.TradeNumber, &t.BuyDate, &t.BuyPrice,
		&sellDate, &sellPrice, &t.Quantity, &t.Brokerage, &t.NetProfit, &t.Notes, &t.Exchange)
	if err != nil {
		return nil, err
	}
	if sellDate.Valid {
		t.SellDate = &sellDate.String
	}
	if sellPrice.Valid {
		t.SellPrice = &sellPrice.Float64
	}
	return &t, nil
}

// ListTrades returns trades matching the filter, newest buy date first.
func (s *SQLiteStore) ListTrades(ctx context.Context, f TradeFilter) ([]domain.Trade, error) {
	q := "SELECT " + tradeColumns + " FROM trades WHERE 1=1"
	var args []any

	if f.MemberID != 0 {
		q += " AND member_id = ?"
		args = append(args, f.MemberID)
	}
	if f.Symbol != "" {
		q += " AND symbol LIKE ?"
		args = append(args, "%"+f.Symbol+"%")
	}
	if f.StartDate != "" {
		q += " AND buy_date >= ?"
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		q += " AND buy_date <= ?"
		args = append(args, f.EndDate)
	}
	switch f.Status {
	case "live":
		q += " AND sell_price IS NULL"
	case "closed":
		q += " AND sell_price IS NOT NULL"
	}
	if f.ProfitOnly != nil {
		if *f.ProfitOnly {
			q += " AND net_profit > 0"
		} else {
			q += " AND net_profit < 0"
		}
	}
	q += " ORDER BY buy_date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

// GetTrade retrieves a single trade by ID.
func (s *SQLiteStore) GetTrade(ctx context.Context, id int64) (*domain.Trade, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

const insertTradeSQL = `
	INSERT INTO trades (member_id, symbol, trade_number, buy_date, buy_price,
		sell_date, sell_price, quantity, brokerage, net_profit, notes, exchange)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertTrade(ctx context.Context, tx *sql.Tx, t *domain.Trade) error {
	res, err := tx.ExecContext(ctx, insertTradeSQL,
		t.MemberID, t.Symbol, t.TradeNumber, t.BuyDate, t.BuyPrice,
		t.SellDate, t.SellPrice, t.Quantity, t.Brokerage, t.NetProfit, t.Notes, t.Exchange)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func nextTradeNumber(ctx context.Context, tx *sql.Tx) (int64, error) {
	var next int64
	err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(trade_number), 0) + 1 FROM trades").Scan(&next)
	return next, err
}

// CreateTrade inserts one trade, assigning it the next trade number.
func (s *SQLiteStore) CreateTrade(ctx context.Context, t *domain.Trade) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if t.TradeNumber == 0 {
		if t.TradeNumber, err = nextTradeNumber(ctx, tx); err != nil {
			return err
		}
	}
	if err := insertTrade(ctx, tx, t); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateTradeGroup inserts all fragments of one split trade transactionally
// under one shared trade number. The allocation that produced the fragments
// was computed against a capital snapshot; running number assignment and all
// inserts in one transaction keeps the persisted group consistent with it.
func (s *SQLiteStore) CreateTradeGroup(ctx context.Context, trades []domain.Trade) (int64, error) {
	if len(trades) == 0 {
		return 0, errors.New("store: empty trade group")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	number, err := nextTradeNumber(ctx, tx)
	if err != nil {
		return 0, err
	}
	for i := range trades {
		trades[i].TradeNumber = number
		if err := insertTrade(ctx, tx, &trades[i]); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return number, nil
}

// UpdateTrade persists changes to an existing trade.
func (s *SQLiteStore) UpdateTrade(ctx context.Context, t *domain.Trade) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trades
		SET symbol = ?, buy_date = ?, buy_price = ?, sell_date = ?, sell_price = ?,
			quantity = ?, brokerage = ?, net_profit = ?, notes = ?, exchange = ?
		WHERE id = ?`,
		t.Symbol, t.BuyDate, t.BuyPrice, t.SellDate, t.SellPrice,
		t.Quantity, t.Brokerage, t.NetProfit, t.Notes, t.Exchange, t.ID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteTrades removes trades by ID and reports how many were deleted.
func (s *SQLiteStore) DeleteTrades(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------------------------------------------------------------------
// SymbolStore implementation
// ---------------------------------------------------------------------------

// ListSymbols returns active symbols in alphabetical order.
func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]domain.Symbol, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, symbol, category, is_active FROM symbols WHERE is_active = 1 ORDER BY symbol")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []domain.Symbol
	for rows.Next() {
		var sym domain.Symbol
		var active int
		if err := rows.Scan(&sym.ID, &sym.Symbol, &sym.Category, &active); err != nil {
			return nil, err
		}
		sym.IsActive = active != 0
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// CreateSymbol registers a symbol.
func (s *SQLiteStore) CreateSymbol(ctx context.Context, sym *domain.Symbol) error {
	sym.Symbol = strings.ToUpper(strings.TrimSpace(sym.Symbol))
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO symbols (symbol, category, is_active) VALUES (?, ?, 1)", sym.Symbol, sym.Category)
	if err != nil {
		return err
	}
	sym.ID, err = res.LastInsertId()
	sym.IsActive = true
	return err
}

// EnsureSymbol normalizes the code and auto-registers it if unknown.
func (s *SQLiteStore) EnsureSymbol(ctx context.Context, symbol string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return "", errors.New("store: empty symbol")
	}

	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM symbols WHERE UPPER(symbol) = ?", normalized).Scan(&id)
	if err == nil {
		return normalized, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO symbols (symbol, category, is_active) VALUES (?, 'User-Added', 1)", normalized)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		// Concurrent insert of the same symbol; already registered.
		err = nil
	}
	return normalized, err
}

// ---------------------------------------------------------------------------
// SettingStore implementation
// ---------------------------------------------------------------------------

// GetSetting returns the value for key, or ErrNotFound.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT setting_value FROM app_settings WHERE setting_key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// PutSetting inserts or replaces a setting.
func (s *SQLiteStore) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (setting_key, setting_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET setting_value = excluded.setting_value, updated_at = excluded.updated_at`,
		key, value, now())
	return err
}

// ---------------------------------------------------------------------------
// QuoteStore implementation
// ---------------------------------------------------------------------------

// UpsertETFQuote stores the latest quote for a symbol.
func (s *SQLiteStore) UpsertETFQuote(ctx context.Context, q *domain.ETFQuote) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO etf_quotes (symbol, name, price, change_1d, change_percent_1d, volume, provider, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name, price = excluded.price,
			change_1d = excluded.change_1d, change_percent_1d = excluded.change_percent_1d,
			volume = excluded.volume, provider = excluded.provider,
			last_updated_at = excluded.last_updated_at`,
		q.Symbol, q.Name, q.Price, q.Change1D, q.ChangePct1D, q.Volume, q.Provider,
		q.LastUpdatedAt.UTC().Format(time.RFC3339))
	return err
}

// ListETFQuotes returns all stored quotes ordered by symbol.
func (s *SQLiteStore) ListETFQuotes(ctx context.Context) ([]domain.ETFQuote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, name, price, change_1d, change_percent_1d, volume, provider, last_updated_at
		FROM etf_quotes ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []domain.ETFQuote
	for rows.Next() {
		var q domain.ETFQuote
		var updated string
		if err := rows.Scan(&q.Symbol, &q.Name, &q.Price, &q.Change1D, &q.ChangePct1D,
			&q.Volume, &q.Provider, &updated); err != nil {
			return nil, err
		}
		q.LastUpdatedAt = parseTime(updated)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// UpsertFIIDIIFlow stores one day's flows for a category.
func (s *SQLiteStore) UpsertFIIDIIFlow(ctx context.Context, f *domain.FIIDIIFlow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fii_dii_flows (date, category, buy_value, sell_value, net_value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, category) DO UPDATE SET
			buy_value = excluded.buy_value, sell_value = excluded.sell_value, net_value = excluded.net_value`,
		f.Date, f.Category, f.BuyValue, f.SellValue, f.NetValue)
	return err
}

// ListFIIDIIFlows returns the most recent flow rows, up to limit.
func (s *SQLiteStore) ListFIIDIIFlows(ctx context.Context, limit int) ([]domain.FIIDIIFlow, error) {
	if limit <= 0 {
		limit = 60
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, category, buy_value, sell_value, net_value
		FROM fii_dii_flows ORDER BY date DESC, category ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flows []domain.FIIDIIFlow
	for rows.Next() {
		var f domain.FIIDIIFlow
		if err := rows.Scan(&f.Date, &f.Category, &f.BuyValue, &f.SellValue, &f.NetValue); err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
