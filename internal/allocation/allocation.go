// Package allocation splits a block quantity across members in proportion to
// their capital, scaled by each member's division weight.
//
// The weighting is instrument-agnostic: Allocate keeps fractional quantities
// as computed, and WholeUnits converts a result to integer share counts when
// the instrument requires them, conserving the total exactly.
package allocation

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrNoMembers is returned when an allocation is requested against an
	// empty member set (all inactive, or none onboarded).
	ErrNoMembers = errors.New("allocation: no members to allocate to")

	// ErrInvalidQuantity is returned for a negative block quantity.
	ErrInvalidQuantity = errors.New("allocation: quantity must be non-negative")
)

// MemberStake is the allocation input for one member: the capital derived
// from the ledger and the configured division weight.
type MemberStake struct {
	MemberID        int64
	CurrentCapital  float64
	CapitalDivision float64
}

// Allocation is one member's share of the block quantity.
type Allocation struct {
	MemberID       int64   `json:"member_id"`
	CurrentCapital float64 `json:"current_capital"`
	Division       float64 `json:"division"`
	Score          float64 `json:"score"`
	Weight         float64 `json:"weight"`
	Quantity       float64 `json:"quantity"`
}

// Result is a complete allocation of the block quantity. EqualWeight reports
// that the equal-split fallback was used because every member's score was
// zero; callers surface this to the user rather than treating it as a normal
// weighted split.
type Result struct {
	Allocations []Allocation `json:"allocations"`
	EqualWeight bool         `json:"equal_weight"`
}

// effectiveDivision is the single defaulting point for division weights:
// anything non-positive becomes 1. Call sites must not re-implement this
// check inline.
func effectiveDivision(m MemberStake) float64 {
	if m.CapitalDivision > 0 {
		return m.CapitalDivision
	}
	return 1
}

// Allocate computes each member's share of quantity. A member's score is
// max(0, capital)/division; weights are scores normalized over the set. When
// every score is zero the result falls back to an equal 1/N split so a
// freshly onboarded group with no capital still gets a usable allocation.
//
// Quantities are kept fractional; the per-member quantities sum to the block
// quantity by construction.
func Allocate(quantity float64, members []MemberStake) (*Result, error) {
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	allocations := make([]Allocation, len(members))
	totalScore := 0.0
	for i, m := range members {
		division := effectiveDivision(m)
		capital := math.Max(0, m.CurrentCapital)
		score := capital / division
		totalScore += score
		allocations[i] = Allocation{
			MemberID:       m.MemberID,
			CurrentCapital: capital,
			Division:       division,
			Score:          score,
		}
	}

	if totalScore == 0 {
		weight := 1 / float64(len(members))
		for i := range allocations {
			allocations[i].Weight = weight
			allocations[i].Quantity = quantity * weight
		}
		return &Result{Allocations: allocations, EqualWeight: true}, nil
	}

	for i := range allocations {
		allocations[i].Weight = allocations[i].Score / totalScore
		allocations[i].Quantity = quantity * allocations[i].Weight
	}
	return &Result{Allocations: allocations}, nil
}

// WholeUnits snaps a result to integer share counts: each quantity is
// floored and the leftover units are handed out one at a time in
// descending-capital order, ties broken by ascending member ID, cycling
// until the remainder is exhausted. The final quantities sum to quantity
// exactly.
//
// quantity must itself be a whole number; fractional remainders cannot be
// distributed in whole units.
func WholeUnits(res *Result, quantity float64) {
	floorSum := 0.0
	for i := range res.Allocations {
		res.Allocations[i].Quantity = math.Floor(res.Allocations[i].Quantity)
		floorSum += res.Allocations[i].Quantity
	}
	remainder := int(math.Round(quantity - floorSum))
	if remainder <= 0 || len(res.Allocations) == 0 {
		return
	}

	// Deterministic distribution order, regardless of input order.
	order := make([]int, len(res.Allocations))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ca, cb := res.Allocations[order[a]], res.Allocations[order[b]]
		if ca.CurrentCapital != cb.CurrentCapital {
			return ca.CurrentCapital > cb.CurrentCapital
		}
		return ca.MemberID < cb.MemberID
	})

	for i := 0; remainder > 0; i++ {
		res.Allocations[order[i%len(order)]].Quantity++
		remainder--
	}
}
