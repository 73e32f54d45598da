package services

import "time"

// StockPrice is a point-in-time quote for one ticker. Quotes have
// unlimited validity until replaced; Manual marks a user-entered price
// that takes precedence over live fetches.
type StockPrice struct {
	Ticker        string    `json:"ticker"`
	Price         float64   `json:"price"`
	PreviousClose float64   `json:"previousClose,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"changePercent,omitempty"`
	LastUpdated   time.Time `json:"lastUpdated"`
	Manual        bool      `json:"manual,omitempty"`
}

// ExchangeRate is the current KRW per USD rate with its provenance.
type ExchangeRate struct {
	Rate        float64   `json:"rate"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"lastUpdated"`
	Manual      bool      `json:"manual,omitempty"`
}

// PriceFetcher resolves live prices for a set of tickers. Failed tickers
// are simply absent from the result; they never fail the whole batch.
type PriceFetcher interface {
	FetchPrices(tickers []string) map[string]StockPrice
}

// RateFetcher resolves the current USD to KRW exchange rate from an
// external provider chain.
type RateFetcher interface {
	FetchRate() (ExchangeRate, error)
}
