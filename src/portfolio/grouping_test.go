package portfolio

import (
	"math"
	"testing"

	"github.com/Miseong-debug/Stock-Portfolio/src/models"
)

func lot(ticker string, qty, price, rate float64) models.Holding {
	return models.Holding{
		ID:              ticker + "-lot",
		Ticker:          ticker,
		Quantity:        qty,
		BuyPrice:        price,
		BuyExchangeRate: rate,
	}
}

func almostEqual(a, b float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	return diff <= 1e-9*scale
}

func TestGroup_Empty(t *testing.T) {
	if got := Group(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d groups", len(got))
	}
	if got := Group([]models.Holding{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %d groups", len(got))
	}
}

func TestGroup_SingleLot(t *testing.T) {
	got := Group([]models.Holding{lot("AAPL", 10, 150, 1300)})
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	g := got[0]
	if g.Ticker != "AAPL" || g.TotalQuantity != 10 || g.AvgBuyPrice != 150 || g.AvgBuyExchangeRate != 1300 {
		t.Errorf("unexpected group: %+v", g)
	}
	if len(g.Holdings) != 1 {
		t.Errorf("expected 1 constituent lot, got %d", len(g.Holdings))
	}
}

func TestGroup_TwoLotsSameTicker(t *testing.T) {
	got := Group([]models.Holding{
		lot("MSFT", 5, 100, 1300),
		lot("MSFT", 5, 120, 1400),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	g := got[0]
	if g.TotalQuantity != 10 {
		t.Errorf("totalQuantity = %v, want 10", g.TotalQuantity)
	}
	if !almostEqual(g.AvgBuyPrice, 110) {
		t.Errorf("avgBuyPrice = %v, want 110", g.AvgBuyPrice)
	}
	// cost-weighted: (5*100*1300 + 5*120*1400) / (5*100 + 5*120) = 1490000/1100
	want := 1490000.0 / 1100.0
	if !almostEqual(g.AvgBuyExchangeRate, want) {
		t.Errorf("avgBuyExchangeRate = %v, want %v", g.AvgBuyExchangeRate, want)
	}
}

func TestGroup_EqualLotsKeepExactAverages(t *testing.T) {
	// Lots sharing one price and one rate must average to those exact
	// values, with no floating-point drift.
	got := Group([]models.Holding{
		lot("VOO", 1.5, 420.42, 1333.33),
		lot("VOO", 2.25, 420.42, 1333.33),
		lot("VOO", 0.75, 420.42, 1333.33),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 group, got %d", len(got))
	}
	g := got[0]
	if g.AvgBuyPrice != 420.42 {
		t.Errorf("avgBuyPrice = %v, want exactly 420.42", g.AvgBuyPrice)
	}
	if g.AvgBuyExchangeRate != 1333.33 {
		t.Errorf("avgBuyExchangeRate = %v, want exactly 1333.33", g.AvgBuyExchangeRate)
	}
}

func TestGroup_OrderIndependence(t *testing.T) {
	lots := []models.Holding{
		lot("AAPL", 3, 150, 1290),
		lot("MSFT", 2, 300, 1310),
		lot("AAPL", 7, 180, 1350),
		lot("VOO", 1.2, 410, 1400),
		lot("AAPL", 0.5, 165.5, 1325),
	}
	base := Group(lots)

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 3, 0, 2, 4},
	}
	for _, perm := range permutations {
		shuffled := make([]models.Holding, len(lots))
		for i, j := range perm {
			shuffled[i] = lots[j]
		}
		got := Group(shuffled)
		if len(got) != len(base) {
			t.Fatalf("permutation %v: got %d groups, want %d", perm, len(got), len(base))
		}
		byTicker := make(map[string]GroupedHolding)
		for _, g := range got {
			byTicker[g.Ticker] = g
		}
		for _, want := range base {
			g, ok := byTicker[want.Ticker]
			if !ok {
				t.Fatalf("permutation %v: missing group %s", perm, want.Ticker)
			}
			if !almostEqual(g.TotalQuantity, want.TotalQuantity) {
				t.Errorf("permutation %v: %s totalQuantity = %v, want %v", perm, want.Ticker, g.TotalQuantity, want.TotalQuantity)
			}
			if !almostEqual(g.AvgBuyPrice, want.AvgBuyPrice) {
				t.Errorf("permutation %v: %s avgBuyPrice = %v, want %v", perm, want.Ticker, g.AvgBuyPrice, want.AvgBuyPrice)
			}
			if !almostEqual(g.AvgBuyExchangeRate, want.AvgBuyExchangeRate) {
				t.Errorf("permutation %v: %s avgBuyExchangeRate = %v, want %v", perm, want.Ticker, g.AvgBuyExchangeRate, want.AvgBuyExchangeRate)
			}
		}
	}
}

func TestGroup_PreservesFirstSeenOrder(t *testing.T) {
	got := Group([]models.Holding{
		lot("NVDA", 1, 500, 1350),
		lot("AAPL", 1, 150, 1300),
		lot("NVDA", 1, 520, 1360),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(got))
	}
	if got[0].Ticker != "NVDA" || got[1].Ticker != "AAPL" {
		t.Errorf("group order = [%s %s], want [NVDA AAPL]", got[0].Ticker, got[1].Ticker)
	}
}

func TestGroup_DoesNotMutateInput(t *testing.T) {
	lots := []models.Holding{
		lot("AAPL", 3, 150, 1290),
		lot("AAPL", 7, 180, 1350),
	}
	before := make([]models.Holding, len(lots))
	copy(before, lots)

	Group(lots)

	for i := range lots {
		if lots[i] != before[i] {
			t.Errorf("input lot %d mutated: %+v != %+v", i, lots[i], before[i])
		}
	}
}
