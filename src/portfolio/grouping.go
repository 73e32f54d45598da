package portfolio

import "github.com/Miseong-debug/Stock-Portfolio/src/models"

// Group collapses lots with the same ticker into one aggregate position.
// Groups appear in first-seen input order; within a group the constituent
// lots keep their input order. Averages are recomputed from scratch over
// the whole group, so the result does not depend on how lots are permuted
// across the input (beyond floating-point summation order).
func Group(holdings []models.Holding) []GroupedHolding {
	var groups []GroupedHolding
	index := make(map[string]int)

	for _, h := range holdings {
		i, ok := index[h.Ticker]
		if !ok {
			index[h.Ticker] = len(groups)
			groups = append(groups, GroupedHolding{
				Ticker:             h.Ticker,
				CompanyName:        h.CompanyName,
				TotalQuantity:      h.Quantity,
				AvgBuyPrice:        h.BuyPrice,
				AvgBuyExchangeRate: h.BuyExchangeRate,
				Holdings:           []models.Holding{h},
			})
			continue
		}

		g := &groups[i]
		g.Holdings = append(g.Holdings, h)
		g.TotalQuantity += h.Quantity

		var totalCost, totalCostKRW float64
		for _, lot := range g.Holdings {
			totalCost += lot.Quantity * lot.BuyPrice
			totalCostKRW += lot.Quantity * lot.BuyPrice * lot.BuyExchangeRate
		}
		if g.TotalQuantity > 0 {
			g.AvgBuyPrice = totalCost / g.TotalQuantity
		} else {
			g.AvgBuyPrice = 0
		}
		if totalCost > 0 {
			g.AvgBuyExchangeRate = totalCostKRW / totalCost
		} else {
			g.AvgBuyExchangeRate = 0
		}
	}

	return groups
}
