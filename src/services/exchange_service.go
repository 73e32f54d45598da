package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
)

// ErrExchangeRateUnavailable is returned when every provider in the chain
// fails. Callers fall back to the cached or default rate.
var ErrExchangeRateUnavailable = errors.New("all exchange rate providers failed")

// exchangeRateServiceImpl resolves USD to KRW by consulting two free
// providers in order: Frankfurter first, Open ER API second. First
// success wins.
type exchangeRateServiceImpl struct {
	httpClient      *http.Client
	frankfurterBase string
	openERAPIBase   string
}

func NewExchangeRateService(frankfurterBase, openERAPIBase string) RateFetcher {
	return &exchangeRateServiceImpl{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		frankfurterBase: strings.TrimRight(frankfurterBase, "/"),
		openERAPIBase:   strings.TrimRight(openERAPIBase, "/"),
	}
}

func (s *exchangeRateServiceImpl) FetchRate() (ExchangeRate, error) {
	if rate, err := s.fetchFromFrankfurter(); err == nil {
		return ExchangeRate{Rate: rate, Source: "frankfurter", LastUpdated: time.Now()}, nil
	} else {
		logger.L.Warn("Frankfurter exchange rate fetch failed", "error", err)
	}

	if rate, err := s.fetchFromOpenERAPI(); err == nil {
		return ExchangeRate{Rate: rate, Source: "open.er-api", LastUpdated: time.Now()}, nil
	} else {
		logger.L.Warn("Open ER API exchange rate fetch failed", "error", err)
	}

	return ExchangeRate{}, ErrExchangeRateUnavailable
}

func (s *exchangeRateServiceImpl) fetchFromFrankfurter() (float64, error) {
	url := s.frankfurterBase + "/latest?from=USD&to=KRW"
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("frankfurter returned non-OK status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode frankfurter response: %w", err)
	}

	rate, ok := payload.Rates["KRW"]
	if !ok || rate <= 0 {
		return 0, errors.New("frankfurter response has no KRW rate")
	}
	return rate, nil
}

func (s *exchangeRateServiceImpl) fetchFromOpenERAPI() (float64, error) {
	url := s.openERAPIBase + "/v6/latest/USD"
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("open.er-api returned non-OK status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode open.er-api response: %w", err)
	}

	rate, ok := payload.Rates["KRW"]
	if !ok || rate <= 0 {
		return 0, errors.New("open.er-api response has no KRW rate")
	}
	return rate, nil
}
