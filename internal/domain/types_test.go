package domain

import "testing"

func TestSignedAmount(t *testing.T) {
	dep := CapitalTransaction{Amount: 50000, Type: TransactionDeposit}
	if got := dep.SignedAmount(); got != 50000 {
		t.Errorf("deposit SignedAmount = %v, want 50000", got)
	}

	wd := CapitalTransaction{Amount: 20000, Type: TransactionWithdrawal}
	if got := wd.SignedAmount(); got != -20000 {
		t.Errorf("withdrawal SignedAmount = %v, want -20000", got)
	}
}

func TestTradeClosed(t *testing.T) {
	live := Trade{Symbol: "NIFTYBEES", BuyDate: "2025-01-10", BuyPrice: 250, Quantity: 40}
	if live.Closed() {
		t.Error("trade without exit should not be closed")
	}

	sellDate := "2025-01-15"
	sellPrice := 260.0

	// Both exit fields are required for a trade to count as closed.
	half := live
	half.SellDate = &sellDate
	if half.Closed() {
		t.Error("trade with sell date but no sell price should not be closed")
	}

	closed := live
	closed.SellDate = &sellDate
	closed.SellPrice = &sellPrice
	if !closed.Closed() {
		t.Error("trade with sell date and price should be closed")
	}
}

func TestEnumValues(t *testing.T) {
	if ExchangeNSE != "NSE" || ExchangeBSE != "BSE" {
		t.Error("exchange constants have unexpected values")
	}
	if TransactionDeposit != "DEPOSIT" || TransactionWithdrawal != "WITHDRAWAL" {
		t.Error("transaction type constants have unexpected values")
	}
}
