// Package brokerage computes transaction costs and net profit for delivery
// equity trades on Indian exchanges, reproducing the broker's statement
// line items exactly, including per-component rounding.
package brokerage

import (
	"math"

	"etfledger/internal/domain"
)

// Rates for delivery equity. STT applies to both sides, stamp duty to the
// buy side only, GST to the brokerage + exchange + SEBI base.
const (
	sttRate   = 0.001    // 0.1% on buy and sell turnover combined
	sebiRate  = 0.000001 // ₹10 per crore of total turnover
	stampRate = 0.00015  // 0.015% on buy turnover only
	gstRate   = 0.18
	flatFee   = 0 // zero brokerage for delivery equity

	nseTxnRate = 0.0000304
	bseTxnRate = 0.0000376
)

// Charges is the full cost breakdown for a round-trip trade. Every charge
// field is rounded independently before Total is summed; the JSON names are
// rendered line by line in the cost-disclosure UI and are part of the API
// contract.
type Charges struct {
	BuyTurnover   float64 `json:"buyTurnover"`
	SellTurnover  float64 `json:"sellTurnover"`
	TotalTurnover float64 `json:"totalTurnover"`

	STT         float64 `json:"stt"`
	ExchangeTxn float64 `json:"exchangeTxn"`
	SEBI        float64 `json:"sebi"`
	GST         float64 `json:"gst"`
	StampDuty   float64 `json:"stampDuty"`
	Brokerage   float64 `json:"brokerage"`

	Total    float64         `json:"total"`
	Exchange domain.Exchange `json:"exchange"`
}

// NetProfit is the profit summary for a closed round trip.
type NetProfit struct {
	GrossProfit float64 `json:"grossProfit"`
	Brokerage   float64 `json:"brokerage"`
	NetProfit   float64 `json:"netProfit"`
}

// Breakeven is the sell price at which the trade's net profit crosses zero.
type Breakeven struct {
	SellPrice float64 `json:"breakevenSellPrice"`
	Points    float64 `json:"pointsToBreakeven"`
	Converged bool    `json:"converged"`
}

// txnRate returns the exchange transaction charge rate. Unknown exchanges
// fall back to the NSE rate.
func txnRate(exchange domain.Exchange) float64 {
	if exchange == domain.ExchangeBSE {
		return bseTxnRate
	}
	return nseTxnRate
}

// roundRupee rounds to the nearest whole currency unit.
func roundRupee(v float64) float64 {
	return math.Round(v)
}

// roundPaise rounds to two decimal places.
func roundPaise(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeCharges computes the full charge breakdown for a delivery equity
// round trip. Each component is rounded on its own before the total is
// summed; summing unrounded components and rounding once would drift from
// the broker's statement.
//
// Inputs are assumed validated (non-negative) by the caller.
func ComputeCharges(buyPrice, sellPrice, quantity float64, exchange domain.Exchange) Charges {
	buyTurnover := buyPrice * quantity
	sellTurnover := sellPrice * quantity
	totalTurnover := buyTurnover + sellTurnover

	stt := roundRupee((buyTurnover + sellTurnover) * sttRate)
	exchangeTxn := roundPaise(totalTurnover * txnRate(exchange))
	sebi := roundPaise(totalTurnover * sebiRate)
	stampDuty := roundRupee(buyTurnover * stampRate)
	gst := roundPaise((flatFee + exchangeTxn + sebi) * gstRate)

	return Charges{
		BuyTurnover:   buyTurnover,
		SellTurnover:  sellTurnover,
		TotalTurnover: totalTurnover,
		STT:           stt,
		ExchangeTxn:   exchangeTxn,
		SEBI:          sebi,
		GST:           gst,
		StampDuty:     stampDuty,
		Brokerage:     flatFee,
		Total:         stt + exchangeTxn + gst + sebi + stampDuty + flatFee,
		Exchange:      exchange,
	}
}

// ComputeNetProfit returns gross profit, total charges, and net profit for a
// closed round trip.
func ComputeNetProfit(buyPrice, sellPrice, quantity float64, exchange domain.Exchange) NetProfit {
	gross := (sellPrice - buyPrice) * quantity
	total := ComputeCharges(buyPrice, sellPrice, quantity, exchange).Total
	return NetProfit{
		GrossProfit: gross,
		Brokerage:   total,
		NetProfit:   gross - total,
	}
}

// ComputeBreakeven binary-searches [buyPrice, 2*buyPrice] for the sell price
// where net profit is zero within ±0.01. The search is capped at 1000
// iterations; if it does not converge the last estimate is returned with
// Converged=false. Convenience utility only; the allocation path never
// depends on it.
func ComputeBreakeven(buyPrice, quantity float64, exchange domain.Exchange) Breakeven {
	const (
		tolerance     = 0.01
		maxIterations = 1000
	)

	low, high := buyPrice, buyPrice*2
	sellPrice := buyPrice
	net := -1.0

	iterations := 0
	for iterations < maxIterations && math.Abs(net) > tolerance {
		sellPrice = (low + high) / 2
		net = ComputeNetProfit(buyPrice, sellPrice, quantity, exchange).NetProfit
		if net < 0 {
			low = sellPrice
		} else {
			high = sellPrice
		}
		iterations++
	}

	return Breakeven{
		SellPrice: sellPrice,
		Points:    sellPrice - buyPrice,
		Converged: math.Abs(net) <= tolerance,
	}
}
