package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Miseong-debug/Stock-Portfolio/src/database"
	"github.com/Miseong-debug/Stock-Portfolio/src/models"
	"github.com/Miseong-debug/Stock-Portfolio/src/portfolio"
	"github.com/Miseong-debug/Stock-Portfolio/src/services"
)

func newTestPortfolioHandler(t *testing.T) (*PortfolioHandler, *services.PortfolioService) {
	t.Helper()
	database.InitDB(":memory:")
	t.Cleanup(func() { database.DB.Close() })
	svc := services.NewPortfolioService(database.DB, services.NewQuoteStore(), noopPriceFetcher{}, noopRateFetcher{})
	return NewPortfolioHandler(svc), svc
}

func TestGetSummary(t *testing.T) {
	h, svc := newTestPortfolioHandler(t)

	lot := models.Holding{UserID: 1, Ticker: "AAPL", Quantity: 10, BuyPrice: 150, BuyExchangeRate: 1300, BuyDate: "2024-01-01"}
	if err := models.CreateHolding(database.DB, &lot); err != nil {
		t.Fatal(err)
	}
	svc.SetManualPrice("AAPL", 180)
	svc.SetManualExchangeRate(1350)

	rec := httptest.NewRecorder()
	h.HandleGetSummary(rec, authedRequest(http.MethodGet, "/api/portfolio/summary", nil, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rec.Code, rec.Body.String())
	}
	var got portfolio.Summary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if got.TotalProfitKRW != 480000 || got.StockProfitKRW != 390000 || got.ExchangeProfitKRW != 90000 {
		t.Errorf("summary mismatch: %+v", got)
	}
}

func TestGetSummaryConditionalGet(t *testing.T) {
	h, svc := newTestPortfolioHandler(t)

	lot := models.Holding{UserID: 1, Ticker: "AAPL", Quantity: 10, BuyPrice: 150, BuyExchangeRate: 1300, BuyDate: "2024-01-01"}
	if err := models.CreateHolding(database.DB, &lot); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.HandleGetSummary(rec, authedRequest(http.MethodGet, "/api/portfolio/summary", nil, 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header on summary response")
	}

	req := authedRequest(http.MethodGet, "/api/portfolio/summary", nil, 1)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.HandleGetSummary(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("matching If-None-Match: got status %d, want 304", rec.Code)
	}

	// A quote change moves the summary, so the tag must miss.
	svc.SetManualPrice("AAPL", 200)
	req = authedRequest(http.MethodGet, "/api/portfolio/summary", nil, 1)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.HandleGetSummary(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("stale If-None-Match: got status %d, want 200", rec.Code)
	}
}
