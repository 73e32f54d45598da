package models

import (
	"errors"
	"testing"

	"github.com/Miseong-debug/Stock-Portfolio/src/database"
)

func newTestDB(t *testing.T) {
	t.Helper()
	database.InitDB(":memory:")
	t.Cleanup(func() { database.DB.Close() })
}

func TestHoldingCRUD(t *testing.T) {
	newTestDB(t)

	h := &Holding{
		UserID:          1,
		Ticker:          "AAPL",
		CompanyName:     "Apple Inc.",
		Quantity:        10,
		BuyPrice:        150,
		BuyExchangeRate: 1300,
		BuyDate:         "2024-01-15",
		Memo:            "first lot",
	}
	if err := CreateHolding(database.DB, h); err != nil {
		t.Fatalf("CreateHolding: %v", err)
	}
	if h.ID == "" {
		t.Fatal("CreateHolding did not assign an id")
	}

	holdings, err := ListHoldings(database.DB, 1)
	if err != nil {
		t.Fatalf("ListHoldings: %v", err)
	}
	if len(holdings) != 1 {
		t.Fatalf("got %d holdings, want 1", len(holdings))
	}
	got := holdings[0]
	if got.Ticker != "AAPL" || got.Quantity != 10 || got.BuyPrice != 150 || got.BuyExchangeRate != 1300 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.CompanyName != "Apple Inc." || got.Memo != "first lot" {
		t.Errorf("text fields mismatch: %+v", got)
	}

	got.Quantity = 12
	got.Memo = "topped up"
	if err := UpdateHolding(database.DB, &got); err != nil {
		t.Fatalf("UpdateHolding: %v", err)
	}
	holdings, _ = ListHoldings(database.DB, 1)
	if holdings[0].Quantity != 12 || holdings[0].Memo != "topped up" {
		t.Errorf("update not persisted: %+v", holdings[0])
	}

	if err := DeleteHolding(database.DB, 1, got.ID); err != nil {
		t.Fatalf("DeleteHolding: %v", err)
	}
	holdings, _ = ListHoldings(database.DB, 1)
	if len(holdings) != 0 {
		t.Errorf("got %d holdings after delete, want 0", len(holdings))
	}
}

func TestHoldingListOrder(t *testing.T) {
	newTestDB(t)

	lots := []Holding{
		{UserID: 1, Ticker: "MSFT", Quantity: 1, BuyPrice: 400, BuyExchangeRate: 1350, BuyDate: "2024-03-01"},
		{UserID: 1, Ticker: "AAPL", Quantity: 1, BuyPrice: 160, BuyExchangeRate: 1350, BuyDate: "2024-02-01"},
		{UserID: 1, Ticker: "AAPL", Quantity: 1, BuyPrice: 150, BuyExchangeRate: 1300, BuyDate: "2024-01-01"},
	}
	for i := range lots {
		if err := CreateHolding(database.DB, &lots[i]); err != nil {
			t.Fatalf("CreateHolding %d: %v", i, err)
		}
	}

	holdings, err := ListHoldings(database.DB, 1)
	if err != nil {
		t.Fatalf("ListHoldings: %v", err)
	}
	wantDates := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	wantTickers := []string{"AAPL", "AAPL", "MSFT"}
	for i, h := range holdings {
		if h.Ticker != wantTickers[i] || h.BuyDate != wantDates[i] {
			t.Errorf("position %d: got %s/%s, want %s/%s", i, h.Ticker, h.BuyDate, wantTickers[i], wantDates[i])
		}
	}
}

func TestHoldingScopedByUser(t *testing.T) {
	newTestDB(t)

	mine := &Holding{UserID: 1, Ticker: "AAPL", Quantity: 1, BuyPrice: 150, BuyExchangeRate: 1300, BuyDate: "2024-01-01"}
	theirs := &Holding{UserID: 2, Ticker: "TSLA", Quantity: 1, BuyPrice: 200, BuyExchangeRate: 1300, BuyDate: "2024-01-01"}
	if err := CreateHolding(database.DB, mine); err != nil {
		t.Fatal(err)
	}
	if err := CreateHolding(database.DB, theirs); err != nil {
		t.Fatal(err)
	}

	holdings, _ := ListHoldings(database.DB, 1)
	if len(holdings) != 1 || holdings[0].Ticker != "AAPL" {
		t.Errorf("user 1 sees %+v", holdings)
	}

	// A user cannot touch another user's lot.
	if err := UpdateHolding(database.DB, &Holding{ID: theirs.ID, UserID: 1, Ticker: "TSLA", Quantity: 99, BuyPrice: 1, BuyExchangeRate: 1, BuyDate: "2024-01-01"}); !errors.Is(err, ErrHoldingNotFound) {
		t.Errorf("cross-user update: got %v, want ErrHoldingNotFound", err)
	}
	if err := DeleteHolding(database.DB, 1, theirs.ID); !errors.Is(err, ErrHoldingNotFound) {
		t.Errorf("cross-user delete: got %v, want ErrHoldingNotFound", err)
	}
}

func TestUpdateMissingHolding(t *testing.T) {
	newTestDB(t)

	h := &Holding{ID: "no-such-id", UserID: 1, Ticker: "AAPL", Quantity: 1, BuyPrice: 1, BuyExchangeRate: 1, BuyDate: "2024-01-01"}
	if err := UpdateHolding(database.DB, h); !errors.Is(err, ErrHoldingNotFound) {
		t.Errorf("got %v, want ErrHoldingNotFound", err)
	}
	if err := DeleteHolding(database.DB, 1, "no-such-id"); !errors.Is(err, ErrHoldingNotFound) {
		t.Errorf("got %v, want ErrHoldingNotFound", err)
	}
}
