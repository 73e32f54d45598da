package portfolio

import "github.com/Miseong-debug/Stock-Portfolio/src/models"

// Summarize computes the portfolio-wide valuation from raw lots, the
// resolved current prices and the current KRW/USD exchange rate.
//
// Sums run over individual lots, not grouped positions, so no rounding from
// weighted averaging leaks into the totals. A ticker missing from prices
// falls back to the lot's own buy price, which makes its unrealized stock
// profit exactly zero until a quote exists. A non-positive currentRate
// falls back to DefaultUSDKRW.
//
// Summarize is a total function: any combination of valid numeric inputs,
// including empty slices and zero quantities, yields finite fields.
func Summarize(holdings []models.Holding, prices map[string]float64, currentRate float64, dividends []models.Dividend) Summary {
	if currentRate <= 0 {
		currentRate = DefaultUSDKRW
	}

	var s Summary

	for _, h := range holdings {
		currentPrice, ok := prices[h.Ticker]
		if !ok || currentPrice <= 0 {
			currentPrice = h.BuyPrice
		}

		investmentUSD := h.Quantity * h.BuyPrice
		s.TotalInvestmentUSD += investmentUSD
		s.TotalInvestmentKRW += investmentUSD * h.BuyExchangeRate

		s.TotalValueUSD += h.Quantity * currentPrice

		// stock profit: price move valued at the purchase-time rate
		s.StockProfitKRW += h.Quantity * (currentPrice - h.BuyPrice) * h.BuyExchangeRate
		// exchange profit: rate move valued at the current price
		s.ExchangeProfitKRW += h.Quantity * currentPrice * (currentRate - h.BuyExchangeRate)
	}

	// Aggregate USD value converted at the single current rate, not a
	// per-lot KRW sum.
	s.TotalValueKRW = s.TotalValueUSD * currentRate
	s.TotalProfitUSD = s.TotalValueUSD - s.TotalInvestmentUSD
	s.TotalProfitKRW = s.TotalValueKRW - s.TotalInvestmentKRW

	if s.TotalInvestmentUSD > 0 {
		s.ReturnRateUSD = s.TotalProfitUSD / s.TotalInvestmentUSD * 100
	}
	if s.TotalInvestmentKRW > 0 {
		s.ReturnRateKRW = s.TotalProfitKRW / s.TotalInvestmentKRW * 100
	}

	for _, d := range dividends {
		s.TotalDividendsUSD += d.Amount
	}

	return s
}
