package services

import (
	"testing"
	"time"
)

func TestQuoteStore_PriceRoundTrip(t *testing.T) {
	q := NewQuoteStore()

	if _, ok := q.Price("AAPL"); ok {
		t.Fatal("expected no cached price initially")
	}

	q.SetPrice(StockPrice{Ticker: "AAPL", Price: 180, LastUpdated: time.Now()})
	p, ok := q.Price("AAPL")
	if !ok || p.Price != 180 {
		t.Fatalf("got %+v, ok=%v, want price 180", p, ok)
	}

	prices := q.Prices()
	if len(prices) != 1 || prices["AAPL"].Price != 180 {
		t.Errorf("Prices() = %+v, want AAPL at 180", prices)
	}
}

func TestQuoteStore_ManualPriceBeatsLive(t *testing.T) {
	q := NewQuoteStore()

	q.SetManualPrice("AAPL", 175.5)

	// A later live fetch must not clobber the manual override.
	q.SetPrice(StockPrice{Ticker: "AAPL", Price: 999, LastUpdated: time.Now()})

	p, ok := q.Price("AAPL")
	if !ok {
		t.Fatal("expected cached price")
	}
	if !p.Manual || p.Price != 175.5 {
		t.Errorf("got %+v, want manual price 175.5", p)
	}

	// An explicit manual replace does take effect.
	q.SetManualPrice("AAPL", 181)
	p, _ = q.Price("AAPL")
	if p.Price != 181 {
		t.Errorf("price after manual replace = %v, want 181", p.Price)
	}
}

func TestQuoteStore_ManualRateBeatsLive(t *testing.T) {
	q := NewQuoteStore()

	q.SetManualExchangeRate(1340)
	q.SetExchangeRate(ExchangeRate{Rate: 1400, Source: "frankfurter", LastUpdated: time.Now()})

	r, ok := q.ExchangeRate()
	if !ok {
		t.Fatal("expected cached rate")
	}
	if !r.Manual || r.Rate != 1340 {
		t.Errorf("got %+v, want manual rate 1340", r)
	}
}

func TestQuoteStore_ExchangeRateStaleness(t *testing.T) {
	q := NewQuoteStore()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return current }

	if !q.ExchangeRateStale() {
		t.Error("missing rate should count as stale")
	}

	q.SetExchangeRate(ExchangeRate{Rate: 1360, Source: "frankfurter", LastUpdated: current})
	if q.ExchangeRateStale() {
		t.Error("freshly stored rate should not be stale")
	}

	current = current.Add(59 * time.Minute)
	if q.ExchangeRateStale() {
		t.Error("rate within the one-hour window should not be stale")
	}

	current = current.Add(2 * time.Minute)
	if !q.ExchangeRateStale() {
		t.Error("rate past the one-hour window should be stale")
	}
}

func TestQuoteStore_ManualRateNeverStale(t *testing.T) {
	q := NewQuoteStore()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return current }

	q.SetManualExchangeRate(1340)

	current = current.Add(48 * time.Hour)
	if q.ExchangeRateStale() {
		t.Error("manual rate must never go stale")
	}
}

func TestQuoteStore_ResolveRate(t *testing.T) {
	q := NewQuoteStore()

	if got := q.ResolveRate(1350); got != 1350 {
		t.Errorf("ResolveRate with empty cache = %v, want default 1350", got)
	}

	q.SetExchangeRate(ExchangeRate{Rate: 1372.5, Source: "frankfurter", LastUpdated: time.Now()})
	if got := q.ResolveRate(1350); got != 1372.5 {
		t.Errorf("ResolveRate = %v, want cached 1372.5", got)
	}
}

func TestQuoteStore_Clear(t *testing.T) {
	q := NewQuoteStore()
	q.SetManualPrice("AAPL", 180)
	q.SetManualExchangeRate(1340)

	q.Clear()

	if _, ok := q.Price("AAPL"); ok {
		t.Error("expected prices cleared")
	}
	if _, ok := q.ExchangeRate(); ok {
		t.Error("expected rate cleared")
	}
}
