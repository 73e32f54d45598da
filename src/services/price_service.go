package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"golang.org/x/net/publicsuffix"
)

const priceServiceUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// yahooChartResponse is the relevant slice of the Yahoo Finance v8 chart
// endpoint payload.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// priceServiceImpl fetches current prices from the Yahoo Finance chart
// endpoint, one request per ticker, requests for a batch running
// concurrently and failing independently.
type priceServiceImpl struct {
	httpClient *http.Client
	baseURL    string
}

// NewPriceService creates a price service against the given chart base URL
// (e.g. https://query1.finance.yahoo.com/v8/finance/chart).
func NewPriceService(baseURL string) PriceFetcher {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &priceServiceImpl{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 20 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchPrices fetches quotes for all tickers in parallel. Tickers that
// fail are logged and omitted from the result.
func (s *priceServiceImpl) FetchPrices(tickers []string) map[string]StockPrice {
	results := make(map[string]StockPrice)
	seen := make(map[string]bool)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		wg.Add(1)
		go func(ticker string) {
			defer wg.Done()
			price, err := s.fetchPrice(ticker)
			if err != nil {
				logger.L.Warn("Failed to fetch price", "ticker", ticker, "error", err)
				return
			}
			mu.Lock()
			results[ticker] = price
			mu.Unlock()
		}(ticker)
	}

	wg.Wait()
	return results
}

func (s *priceServiceImpl) fetchPrice(ticker string) (StockPrice, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", s.baseURL, ticker)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return StockPrice{}, err
	}
	req.Header.Set("User-Agent", priceServiceUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return StockPrice{}, fmt.Errorf("failed to call chart API for ticker %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StockPrice{}, fmt.Errorf("chart API returned non-OK status %d for ticker %s", resp.StatusCode, ticker)
	}

	var chartData yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chartData); err != nil {
		return StockPrice{}, fmt.Errorf("failed to decode chart response for ticker %s: %w", ticker, err)
	}

	if chartData.Chart.Error != nil || len(chartData.Chart.Result) == 0 {
		return StockPrice{}, fmt.Errorf("chart API returned an error or no result for ticker %s", ticker)
	}

	meta := chartData.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	if price <= 0 {
		return StockPrice{}, fmt.Errorf("chart API returned no usable price for ticker %s", ticker)
	}

	previousClose := meta.PreviousClose
	if previousClose == 0 {
		previousClose = meta.ChartPreviousClose
	}

	quote := StockPrice{
		Ticker:      ticker,
		Price:       price,
		LastUpdated: time.Now(),
	}
	if previousClose > 0 {
		quote.PreviousClose = previousClose
		quote.Change = price - previousClose
		quote.ChangePercent = quote.Change / previousClose * 100
	}
	return quote, nil
}
