package models

import (
	"testing"

	"github.com/Miseong-debug/Stock-Portfolio/src/database"
)

func TestDividendRoundTrip(t *testing.T) {
	newTestDB(t)

	rate := 1335.5
	entries := []Dividend{
		{UserID: 1, Ticker: "AAPL", Amount: 12.5, ExchangeRate: &rate, ReceivedDate: "2024-02-15"},
		{UserID: 1, Ticker: "MSFT", Amount: 8.0, ReceivedDate: "2024-03-10"},
	}
	for i := range entries {
		if err := CreateDividend(database.DB, &entries[i]); err != nil {
			t.Fatalf("CreateDividend %d: %v", i, err)
		}
	}

	list, err := ListDividends(database.DB, 1)
	if err != nil {
		t.Fatalf("ListDividends: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d dividends, want 2", len(list))
	}

	// Most recent first; MSFT has no captured rate.
	if list[0].Ticker != "MSFT" {
		t.Errorf("got %s first, want MSFT", list[0].Ticker)
	}
	if list[0].ExchangeRate != nil {
		t.Errorf("MSFT rate: got %v, want nil", *list[0].ExchangeRate)
	}
	if list[1].ExchangeRate == nil || *list[1].ExchangeRate != 1335.5 {
		t.Errorf("AAPL rate not preserved: %+v", list[1].ExchangeRate)
	}
}

func TestDividendScopedByUser(t *testing.T) {
	newTestDB(t)

	if err := CreateDividend(database.DB, &Dividend{UserID: 1, Ticker: "AAPL", Amount: 5, ReceivedDate: "2024-01-01"}); err != nil {
		t.Fatal(err)
	}
	if err := CreateDividend(database.DB, &Dividend{UserID: 2, Ticker: "TSLA", Amount: 7, ReceivedDate: "2024-01-01"}); err != nil {
		t.Fatal(err)
	}

	list, _ := ListDividends(database.DB, 1)
	if len(list) != 1 || list[0].Ticker != "AAPL" {
		t.Errorf("user 1 sees %+v", list)
	}
}
