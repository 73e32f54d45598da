package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestExchangeRateService_FrankfurterWins(t *testing.T) {
	frankfurter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"KRW":1365.42}}`))
	}))
	defer frankfurter.Close()

	openER := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("second provider must not be consulted when the first succeeds")
	}))
	defer openER.Close()

	svc := NewExchangeRateService(frankfurter.URL, openER.URL)
	rate, err := svc.FetchRate()
	if err != nil {
		t.Fatalf("FetchRate failed: %v", err)
	}
	if rate.Rate != 1365.42 {
		t.Errorf("rate = %v, want 1365.42", rate.Rate)
	}
	if rate.Source != "frankfurter" {
		t.Errorf("source = %q, want frankfurter", rate.Source)
	}
	if rate.LastUpdated.IsZero() {
		t.Error("lastUpdated not set")
	}
}

func TestExchangeRateService_FallsBackToOpenERAPI(t *testing.T) {
	frankfurter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer frankfurter.Close()

	openER := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6/latest/USD" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":"success","rates":{"KRW":1359.1}}`))
	}))
	defer openER.Close()

	svc := NewExchangeRateService(frankfurter.URL, openER.URL)
	rate, err := svc.FetchRate()
	if err != nil {
		t.Fatalf("FetchRate failed: %v", err)
	}
	if rate.Rate != 1359.1 {
		t.Errorf("rate = %v, want 1359.1", rate.Rate)
	}
	if rate.Source != "open.er-api" {
		t.Errorf("source = %q, want open.er-api", rate.Source)
	}
}

func TestExchangeRateService_AllProvidersFail(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer failing.Close()

	svc := NewExchangeRateService(failing.URL, failing.URL)
	_, err := svc.FetchRate()
	if !errors.Is(err, ErrExchangeRateUnavailable) {
		t.Errorf("err = %v, want ErrExchangeRateUnavailable", err)
	}
}

func TestExchangeRateService_MissingKRWRate(t *testing.T) {
	noKRW := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates":{"EUR":0.91}}`))
	}))
	defer noKRW.Close()

	svc := NewExchangeRateService(noKRW.URL, noKRW.URL)
	_, err := svc.FetchRate()
	if !errors.Is(err, ErrExchangeRateUnavailable) {
		t.Errorf("err = %v, want ErrExchangeRateUnavailable", err)
	}
}
