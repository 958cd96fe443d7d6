// Command etfledger-charges prints the delivery-equity charge breakdown,
// net profit, and breakeven sell price for a hypothetical round trip.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"etfledger/internal/brokerage"
	"etfledger/internal/domain"
)

func main() {
	buy := flag.Float64("buy", 0, "buy price per unit")
	sell := flag.Float64("sell", 0, "sell price per unit (0 previews breakeven only)")
	qty := flag.Float64("qty", 0, "quantity")
	exchange := flag.String("exchange", "NSE", "exchange (NSE or BSE)")
	flag.Parse()

	if *buy <= 0 || *qty <= 0 {
		fmt.Fprintln(os.Stderr, "usage: etfledger-charges -buy PRICE -qty QTY [-sell PRICE] [-exchange NSE|BSE]")
		os.Exit(2)
	}

	ex := domain.Exchange(strings.ToUpper(*exchange))

	be := brokerage.ComputeBreakeven(*buy, *qty, ex)
	fmt.Printf("Breakeven sell price: %.2f (+%.2f points", be.SellPrice, be.Points)
	if !be.Converged {
		fmt.Print(", not converged")
	}
	fmt.Println(")")

	if *sell <= 0 {
		return
	}

	c := brokerage.ComputeCharges(*buy, *sell, *qty, ex)
	p := brokerage.ComputeNetProfit(*buy, *sell, *qty, ex)

	fmt.Printf("\nBuy turnover:      %12.2f\n", c.BuyTurnover)
	fmt.Printf("Sell turnover:     %12.2f\n", c.SellTurnover)
	fmt.Printf("Total turnover:    %12.2f\n", c.TotalTurnover)
	fmt.Printf("STT:               %12.2f\n", c.STT)
	fmt.Printf("Exchange txn:      %12.2f\n", c.ExchangeTxn)
	fmt.Printf("SEBI:              %12.2f\n", c.SEBI)
	fmt.Printf("Stamp duty:        %12.2f\n", c.StampDuty)
	fmt.Printf("GST:               %12.2f\n", c.GST)
	fmt.Printf("Brokerage:         %12.2f\n", c.Brokerage)
	fmt.Printf("Total charges:     %12.2f\n", c.Total)
	fmt.Printf("\nGross profit:      %12.2f\n", p.GrossProfit)
	fmt.Printf("Net profit:        %12.2f\n", p.NetProfit)
}
