// Package ledger derives a member's current capital from the append-only
// history of capital transactions and realized trade profits.
//
// Capital is never stored as a snapshot; every caller recomputes it from the
// full history. The history of one member in a personal ledger is small, so
// the O(n) recomputation is cheap and removes an entire class of stale-cache
// drift bugs.
package ledger

import "etfledger/internal/domain"

// Summary is the derived capital position of one member.
type Summary struct {
	NetDeposits    float64 `json:"net_deposits"`
	RealizedPnL    float64 `json:"realized_pnl"`
	CurrentCapital float64 `json:"current_capital"`
}

// CurrentCapital computes a member's capital as net deposits plus realized
// P&L from closed trades. Transactions and trades belonging to other members
// are ignored, as are open trades. The result can be negative for an
// over-withdrawn or loss-making member; allocation clamps it to zero before
// using it as a weight.
func CurrentCapital(memberID int64, txns []domain.CapitalTransaction, trades []domain.Trade) Summary {
	var s Summary

	for _, t := range txns {
		if t.MemberID != memberID {
			continue
		}
		s.NetDeposits += t.SignedAmount()
	}

	for _, t := range trades {
		if t.MemberID != memberID || !t.Closed() {
			continue
		}
		s.RealizedPnL += t.NetProfit
	}

	s.CurrentCapital = s.NetDeposits + s.RealizedPnL
	return s
}
