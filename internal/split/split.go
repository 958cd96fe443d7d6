// Package split materializes per-member trade fragments from one logical
// block trade, conserving both quantity and total brokerage across the
// fragments.
package split

import (
	"etfledger/internal/allocation"
	"etfledger/internal/brokerage"
	"etfledger/internal/domain"
)

// BlockTrade is one logical buy/sell before splitting. SellDate/SellPrice
// are nil for a live position. WholeUnits requests integer share counts
// (used for instruments that do not support fractional quantities and for
// seed-data generation).
type BlockTrade struct {
	Symbol     string
	BuyDate    string
	BuyPrice   float64
	SellDate   *string
	SellPrice  *float64
	Quantity   float64
	Exchange   domain.Exchange
	Notes      string
	WholeUnits bool
}

// Closed reports whether the block has a recorded exit.
func (b BlockTrade) Closed() bool {
	return b.SellDate != nil && b.SellPrice != nil
}

// Fragment is one member's share of a block trade. Fragments of the same
// block share a trade number, assigned by the caller at persistence time.
type Fragment struct {
	MemberID  int64   `json:"member_id"`
	Quantity  float64 `json:"quantity"`
	Weight    float64 `json:"weight"`
	Brokerage float64 `json:"brokerage"`
	NetProfit float64 `json:"net_profit"`
	Division  float64 `json:"division"`
}

// Result carries the fragments plus the allocation flags the caller needs
// to surface (equal-weight fallback).
type Result struct {
	Fragments   []Fragment `json:"fragments"`
	EqualWeight bool       `json:"equal_weight"`
}

// Build splits the block across the given members. Allocation weights come
// from capital/division scores; the total brokerage is computed once on the
// full block quantity and prorated by each fragment's quantity share. The
// charge model is not linear in quantity after rounding, so recomputing
// brokerage per fragment would both break conservation and stack rounding
// artifacts.
//
// Fragments with zero allocated quantity are dropped. For a live block
// every fragment carries zero brokerage and net profit. Errors from the
// allocation engine (no members, negative quantity) are returned as-is;
// nothing is partially produced.
func Build(block BlockTrade, members []allocation.MemberStake) (*Result, error) {
	res, err := allocation.Allocate(block.Quantity, members)
	if err != nil {
		return nil, err
	}
	if block.WholeUnits {
		allocation.WholeUnits(res, block.Quantity)
	}

	totalBrokerage := 0.0
	if block.Closed() {
		totalBrokerage = brokerage.ComputeNetProfit(
			block.BuyPrice, *block.SellPrice, block.Quantity, block.Exchange,
		).Brokerage
	}

	out := &Result{EqualWeight: res.EqualWeight}
	for _, a := range res.Allocations {
		if a.Quantity <= 0 {
			continue
		}

		f := Fragment{
			MemberID: a.MemberID,
			Quantity: a.Quantity,
			Weight:   a.Weight,
			Division: a.Division,
		}
		if block.Closed() {
			f.Brokerage = totalBrokerage * (a.Quantity / block.Quantity)
			gross := (*block.SellPrice - block.BuyPrice) * a.Quantity
			f.NetProfit = gross - f.Brokerage
		}
		out.Fragments = append(out.Fragments, f)
	}
	return out, nil
}
