package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Miseong-debug/Stock-Portfolio/src/config"
	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"github.com/Miseong-debug/Stock-Portfolio/src/models"
	"github.com/Miseong-debug/Stock-Portfolio/src/portfolio"
)

// RefreshResult reports what a quote refresh actually updated.
type RefreshResult struct {
	Prices        map[string]StockPrice `json:"prices"`
	ExchangeRate  *ExchangeRate         `json:"exchangeRate,omitempty"`
	RateFromCache bool                  `json:"rateFromCache"`
	RateError     string                `json:"rateError,omitempty"`
}

// PortfolioService wires the lot store, the quote cache and the
// aggregation engine together.
type PortfolioService struct {
	db     *sql.DB
	quotes *QuoteStore
	prices PriceFetcher
	fx     RateFetcher
}

func NewPortfolioService(db *sql.DB, quotes *QuoteStore, prices PriceFetcher, fx RateFetcher) *PortfolioService {
	return &PortfolioService{
		db:     db,
		quotes: quotes,
		prices: prices,
		fx:     fx,
	}
}

// Summary loads the user's lots and dividends and runs the valuation
// against the currently cached quotes.
func (s *PortfolioService) Summary(userID int64) (portfolio.Summary, error) {
	startTime := time.Now()

	holdings, err := models.ListHoldings(s.db, userID)
	if err != nil {
		return portfolio.Summary{}, fmt.Errorf("error loading holdings for userID %d: %w", userID, err)
	}
	dividends, err := models.ListDividends(s.db, userID)
	if err != nil {
		return portfolio.Summary{}, fmt.Errorf("error loading dividends for userID %d: %w", userID, err)
	}

	summary := portfolio.Summarize(holdings, s.priceMap(), s.currentRate(), dividends)

	logger.L.Debug("Computed portfolio summary",
		"userID", userID, "lots", len(holdings), "duration", time.Since(startTime))
	return summary, nil
}

// GroupedHoldings returns the user's lots collapsed into one aggregate
// position per ticker.
func (s *PortfolioService) GroupedHoldings(userID int64) ([]portfolio.GroupedHolding, error) {
	holdings, err := models.ListHoldings(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading holdings for userID %d: %w", userID, err)
	}
	return portfolio.Group(holdings), nil
}

// RefreshQuotes fetches live prices for every distinct ticker the user
// holds and refetches the exchange rate when it is stale or force is set.
// Price failures are independent; a total exchange rate failure is
// reported in the result rather than failing the refresh.
func (s *PortfolioService) RefreshQuotes(userID int64, force bool) (*RefreshResult, error) {
	holdings, err := models.ListHoldings(s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading holdings for userID %d: %w", userID, err)
	}

	tickers := make([]string, 0, len(holdings))
	seen := make(map[string]bool)
	for _, h := range holdings {
		if !seen[h.Ticker] {
			seen[h.Ticker] = true
			tickers = append(tickers, h.Ticker)
		}
	}

	result := &RefreshResult{Prices: make(map[string]StockPrice)}

	if len(tickers) > 0 {
		fetched := s.prices.FetchPrices(tickers)
		for _, quote := range fetched {
			s.quotes.SetPrice(quote)
			if stored, ok := s.quotes.Price(quote.Ticker); ok {
				result.Prices[quote.Ticker] = stored
			}
		}
		logger.L.Info("Refreshed prices", "userID", userID, "requested", len(tickers), "fetched", len(fetched))
	}

	if force || s.quotes.ExchangeRateStale() {
		rate, err := s.fx.FetchRate()
		if err != nil {
			logger.L.Warn("Exchange rate refresh failed, keeping cached value", "userID", userID, "error", err)
			result.RateError = err.Error()
			if cached, ok := s.quotes.ExchangeRate(); ok {
				result.ExchangeRate = &cached
				result.RateFromCache = true
			}
		} else {
			s.quotes.SetExchangeRate(rate)
			if stored, ok := s.quotes.ExchangeRate(); ok {
				result.ExchangeRate = &stored
			}
		}
	} else if cached, ok := s.quotes.ExchangeRate(); ok {
		result.ExchangeRate = &cached
		result.RateFromCache = true
	}

	return result, nil
}

// SetManualPrice records a user-entered price for a ticker. It holds
// until explicitly replaced.
func (s *PortfolioService) SetManualPrice(ticker string, price float64) StockPrice {
	s.quotes.SetManualPrice(ticker, price)
	p, _ := s.quotes.Price(ticker)
	return p
}

// SetManualExchangeRate records a user-entered KRW/USD rate.
func (s *PortfolioService) SetManualExchangeRate(rate float64) ExchangeRate {
	s.quotes.SetManualExchangeRate(rate)
	r, _ := s.quotes.ExchangeRate()
	return r
}

// RefreshExchangeRate consults the provider chain and caches the result.
func (s *PortfolioService) RefreshExchangeRate() (ExchangeRate, error) {
	rate, err := s.fx.FetchRate()
	if err != nil {
		return ExchangeRate{}, err
	}
	s.quotes.SetExchangeRate(rate)
	stored, _ := s.quotes.ExchangeRate()
	return stored, nil
}

// CurrentExchangeRate exposes the cached rate, if any.
func (s *PortfolioService) CurrentExchangeRate() (ExchangeRate, bool) {
	return s.quotes.ExchangeRate()
}

// CachedPrices exposes every cached quote.
func (s *PortfolioService) CachedPrices() map[string]StockPrice {
	return s.quotes.Prices()
}

func (s *PortfolioService) priceMap() map[string]float64 {
	out := make(map[string]float64)
	for ticker, quote := range s.quotes.Prices() {
		out[ticker] = quote.Price
	}
	return out
}

func (s *PortfolioService) currentRate() float64 {
	defaultRate := portfolio.DefaultUSDKRW
	if config.Cfg != nil && config.Cfg.DefaultExchangeRate > 0 {
		defaultRate = config.Cfg.DefaultExchangeRate
	}
	return s.quotes.ResolveRate(defaultRate)
}
