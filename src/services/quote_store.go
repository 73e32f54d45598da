package services

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	quotePriceKeyPrefix = "price_"
	quoteExchangeKey    = "exchange_rate"

	// ExchangeRateTTL is the freshness window for a live-fetched rate.
	// A stale rate is still served; staleness only signals that the next
	// refresh request should refetch.
	ExchangeRateTTL = time.Hour

	quoteCacheCleanupInterval = 10 * time.Minute
)

// QuoteStore holds the current prices and exchange rate behind an explicit
// get/set/clear interface, so nothing reads ambient global state. Live
// prices never expire until replaced; a live exchange rate carries a
// one-hour freshness window. Manual overrides never expire.
type QuoteStore struct {
	c   *cache.Cache
	now func() time.Time
}

func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		c:   cache.New(cache.NoExpiration, quoteCacheCleanupInterval),
		now: time.Now,
	}
}

// Price returns the cached quote for a ticker, if any.
func (q *QuoteStore) Price(ticker string) (StockPrice, bool) {
	v, ok := q.c.Get(quotePriceKeyPrefix + ticker)
	if !ok {
		return StockPrice{}, false
	}
	return v.(StockPrice), true
}

// Prices returns every cached quote keyed by ticker.
func (q *QuoteStore) Prices() map[string]StockPrice {
	out := make(map[string]StockPrice)
	for key, item := range q.c.Items() {
		if strings.HasPrefix(key, quotePriceKeyPrefix) {
			out[strings.TrimPrefix(key, quotePriceKeyPrefix)] = item.Object.(StockPrice)
		}
	}
	return out
}

// SetPrice stores a live-fetched quote. It never overwrites a manual
// override; manual prices hold until explicitly replaced by the user.
func (q *QuoteStore) SetPrice(p StockPrice) {
	if existing, ok := q.Price(p.Ticker); ok && existing.Manual {
		return
	}
	q.c.Set(quotePriceKeyPrefix+p.Ticker, p, cache.NoExpiration)
}

// SetManualPrice stores a user-entered price that takes precedence over
// live quotes and does not expire.
func (q *QuoteStore) SetManualPrice(ticker string, price float64) {
	q.c.Set(quotePriceKeyPrefix+ticker, StockPrice{
		Ticker:      ticker,
		Price:       price,
		LastUpdated: q.now(),
		Manual:      true,
	}, cache.NoExpiration)
}

// ExchangeRate returns the cached rate, if any.
func (q *QuoteStore) ExchangeRate() (ExchangeRate, bool) {
	v, ok := q.c.Get(quoteExchangeKey)
	if !ok {
		return ExchangeRate{}, false
	}
	return v.(ExchangeRate), true
}

// SetExchangeRate stores a live-fetched rate. It never overwrites a
// manual override. The rate is kept past its freshness window so a
// provider outage degrades to a stale value rather than the default.
func (q *QuoteStore) SetExchangeRate(r ExchangeRate) {
	if existing, ok := q.ExchangeRate(); ok && existing.Manual {
		return
	}
	q.c.Set(quoteExchangeKey, r, cache.NoExpiration)
}

// SetManualExchangeRate stores a user-entered rate that does not expire.
func (q *QuoteStore) SetManualExchangeRate(rate float64) {
	q.c.Set(quoteExchangeKey, ExchangeRate{
		Rate:        rate,
		Source:      "manual",
		LastUpdated: q.now(),
		Manual:      true,
	}, cache.NoExpiration)
}

// ExchangeRateStale reports whether a live rate is past its freshness
// window. A missing rate counts as stale; a manual rate never does.
func (q *QuoteStore) ExchangeRateStale() bool {
	r, ok := q.ExchangeRate()
	if !ok {
		return true
	}
	if r.Manual {
		return false
	}
	return q.now().Sub(r.LastUpdated) > ExchangeRateTTL
}

// ResolveRate returns the cached rate or the given default when none is
// cached. The default also covers a cached non-positive rate.
func (q *QuoteStore) ResolveRate(defaultRate float64) float64 {
	if r, ok := q.ExchangeRate(); ok && r.Rate > 0 {
		return r.Rate
	}
	return defaultRate
}

// Clear drops every cached price and rate, including manual overrides.
func (q *QuoteStore) Clear() {
	q.c.Flush()
}
