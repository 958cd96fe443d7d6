package allocation

import (
	"errors"
	"math"
	"testing"
)

func sumQuantities(res *Result) float64 {
	total := 0.0
	for _, a := range res.Allocations {
		total += a.Quantity
	}
	return total
}

func TestAllocateWeighted(t *testing.T) {
	// Three members with divisions 36/35/30. Scores: 83333.3, 20000, 10000.
	members := []MemberStake{
		{MemberID: 1, CurrentCapital: 3000000, CapitalDivision: 36},
		{MemberID: 2, CurrentCapital: 700000, CapitalDivision: 35},
		{MemberID: 3, CurrentCapital: 300000, CapitalDivision: 30},
	}

	res, err := Allocate(100, members)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if res.EqualWeight {
		t.Error("weighted split should not be flagged as equal-weight fallback")
	}

	wantWeights := []float64{0.73529, 0.17647, 0.08824}
	for i, a := range res.Allocations {
		if math.Abs(a.Weight-wantWeights[i]) > 1e-4 {
			t.Errorf("member %d weight = %v, want ~%v", a.MemberID, a.Weight, wantWeights[i])
		}
		if math.Abs(a.Quantity-a.Weight*100) > 1e-9 {
			t.Errorf("member %d quantity = %v, want weight*100", a.MemberID, a.Quantity)
		}
	}

	if got := sumQuantities(res); math.Abs(got-100) > 1e-9 {
		t.Errorf("quantities sum to %v, want 100", got)
	}
}

func TestAllocateEqualWeightFallback(t *testing.T) {
	members := []MemberStake{
		{MemberID: 1, CurrentCapital: 0, CapitalDivision: 36},
		{MemberID: 2, CurrentCapital: -5000, CapitalDivision: 35}, // clamped to 0
		{MemberID: 3, CurrentCapital: 0, CapitalDivision: 30},
	}

	res, err := Allocate(100, members)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if !res.EqualWeight {
		t.Fatal("all-zero scores should trigger the equal-weight fallback")
	}

	for _, a := range res.Allocations {
		if math.Abs(a.Weight-1.0/3.0) > 1e-12 {
			t.Errorf("member %d weight = %v, want 1/3", a.MemberID, a.Weight)
		}
	}
	if got := sumQuantities(res); math.Abs(got-100) > 1e-9 {
		t.Errorf("fallback quantities sum to %v, want exactly 100", got)
	}
}

func TestAllocateDefaultsNonPositiveDivision(t *testing.T) {
	members := []MemberStake{
		{MemberID: 1, CurrentCapital: 1000, CapitalDivision: 0},
		{MemberID: 2, CurrentCapital: 1000, CapitalDivision: -3},
	}

	res, err := Allocate(10, members)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for _, a := range res.Allocations {
		if a.Division != 1 {
			t.Errorf("member %d division = %v, want default 1", a.MemberID, a.Division)
		}
		if math.Abs(a.Quantity-5) > 1e-9 {
			t.Errorf("member %d quantity = %v, want 5", a.MemberID, a.Quantity)
		}
	}
}

func TestAllocateErrors(t *testing.T) {
	if _, err := Allocate(100, nil); !errors.Is(err, ErrNoMembers) {
		t.Errorf("empty member set: err = %v, want ErrNoMembers", err)
	}

	members := []MemberStake{{MemberID: 1, CurrentCapital: 1000, CapitalDivision: 1}}
	if _, err := Allocate(-1, members); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative quantity: err = %v, want ErrInvalidQuantity", err)
	}
}

func TestAllocateOrderIndependentWeights(t *testing.T) {
	a := []MemberStake{
		{MemberID: 1, CurrentCapital: 3000000, CapitalDivision: 36},
		{MemberID: 2, CurrentCapital: 700000, CapitalDivision: 35},
	}
	b := []MemberStake{a[1], a[0]}

	resA, _ := Allocate(100, a)
	resB, _ := Allocate(100, b)

	if resA.Allocations[0].Weight != resB.Allocations[1].Weight {
		t.Error("weights should not depend on input order")
	}
}

func TestWholeUnitsConservation(t *testing.T) {
	members := []MemberStake{
		{MemberID: 1, CurrentCapital: 3000000, CapitalDivision: 36},
		{MemberID: 2, CurrentCapital: 700000, CapitalDivision: 35},
		{MemberID: 3, CurrentCapital: 300000, CapitalDivision: 30},
	}

	for _, quantity := range []float64{1, 7, 100, 999} {
		res, err := Allocate(quantity, members)
		if err != nil {
			t.Fatalf("Allocate(%v): %v", quantity, err)
		}
		WholeUnits(res, quantity)

		total := 0.0
		for _, a := range res.Allocations {
			if a.Quantity != math.Trunc(a.Quantity) {
				t.Errorf("quantity %v not a whole number after WholeUnits", a.Quantity)
			}
			total += a.Quantity
		}
		if total != quantity {
			t.Errorf("WholeUnits(%v): quantities sum to %v", quantity, total)
		}
	}
}

func TestWholeUnitsEqualCapitalZeroScore(t *testing.T) {
	// Equal-weight fallback over 3 members: 33.33... each. The remainder
	// pass must land on exactly 100, with the extra unit going to the
	// lowest member ID since capitals tie.
	members := []MemberStake{
		{MemberID: 3, CurrentCapital: 0},
		{MemberID: 1, CurrentCapital: 0},
		{MemberID: 2, CurrentCapital: 0},
	}

	res, err := Allocate(100, members)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	WholeUnits(res, 100)

	byID := map[int64]float64{}
	total := 0.0
	for _, a := range res.Allocations {
		byID[a.MemberID] = a.Quantity
		total += a.Quantity
	}
	if total != 100 {
		t.Fatalf("quantities sum to %v, want exactly 100", total)
	}
	if byID[1] != 34 || byID[2] != 33 || byID[3] != 33 {
		t.Errorf("tie-break distribution = %v, want extra unit on member 1", byID)
	}
}

func TestWholeUnitsRemainderOrder(t *testing.T) {
	// Capitals 50/30/20 with quantity 4: floors are 2/1/0 and the single
	// leftover unit goes to the largest capital.
	members := []MemberStake{
		{MemberID: 1, CurrentCapital: 20},
		{MemberID: 2, CurrentCapital: 50},
		{MemberID: 3, CurrentCapital: 30},
	}

	res, err := Allocate(4, members)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	WholeUnits(res, 4)

	byID := map[int64]float64{}
	for _, a := range res.Allocations {
		byID[a.MemberID] = a.Quantity
	}
	if byID[2] != 3 {
		t.Errorf("largest-capital member got %v units, want 3 (floor 2 + remainder)", byID[2])
	}
	if byID[1]+byID[2]+byID[3] != 4 {
		t.Errorf("quantities sum to %v, want 4", byID[1]+byID[2]+byID[3])
	}
}
