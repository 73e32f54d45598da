// Package portfolio holds the pure aggregation engine: grouping purchase
// lots per ticker and computing the dual-currency valuation summary. It
// performs no I/O and never mutates its inputs, so it is safe to call
// concurrently on a snapshot of data.
package portfolio

import "github.com/Miseong-debug/Stock-Portfolio/src/models"

// DefaultUSDKRW is the fallback KRW per USD rate applied when the caller
// has no live or manual exchange rate.
const DefaultUSDKRW = 1350.0

// GroupedHolding is the per-ticker aggregate of one or more purchase lots.
// It is derived on every read and never persisted.
type GroupedHolding struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`

	TotalQuantity float64 `json:"totalQuantity"`
	AvgBuyPrice   float64 `json:"avgBuyPrice"`

	// AvgBuyExchangeRate is cost-weighted, not quantity-weighted:
	// sum(qty*price*rate) / sum(qty*price).
	AvgBuyExchangeRate float64 `json:"avgBuyExchangeRate"`

	Holdings []models.Holding `json:"holdings"`
}

// Summary is the portfolio-wide valuation. Total KRW profit always equals
// StockProfitKRW + ExchangeProfitKRW; the two terms split it into the part
// caused by price moves (valued at purchase-time rates) and the part caused
// by the exchange rate move (valued at current prices).
type Summary struct {
	TotalValueUSD      float64 `json:"totalValueUSD"`
	TotalValueKRW      float64 `json:"totalValueKRW"`
	TotalInvestmentUSD float64 `json:"totalInvestmentUSD"`
	TotalInvestmentKRW float64 `json:"totalInvestmentKRW"`
	TotalProfitUSD     float64 `json:"totalProfitUSD"`
	TotalProfitKRW     float64 `json:"totalProfitKRW"`
	StockProfitKRW     float64 `json:"stockProfit"`
	ExchangeProfitKRW  float64 `json:"exchangeProfit"`
	ReturnRateUSD      float64 `json:"returnRateUSD"`
	ReturnRateKRW      float64 `json:"returnRateKRW"`
	TotalDividendsUSD  float64 `json:"totalDividends"`
}
