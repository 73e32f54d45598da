package models

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrHoldingNotFound = errors.New("holding not found")

// Holding is one purchase lot of a ticker. Each lot carries the exchange
// rate captured at purchase time; the KRW cost basis of the lot is
// quantity * buy_price * buy_exchange_rate and is never recomputed.
type Holding struct {
	ID              string    `json:"id"`
	UserID          int64     `json:"user_id"`
	Ticker          string    `json:"ticker"`
	CompanyName     string    `json:"company_name"`
	Quantity        float64   `json:"quantity"`
	BuyPrice        float64   `json:"buy_price"`
	BuyExchangeRate float64   `json:"buy_exchange_rate"`
	BuyDate         string    `json:"buy_date"`
	Memo            string    `json:"memo"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateHolding inserts a new lot, assigning a fresh id if none is set.
func CreateHolding(db *sql.DB, h *Holding) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now

	query := `
	INSERT INTO holdings (id, user_id, ticker, company_name, quantity, buy_price, buy_exchange_rate, buy_date, memo, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		h.ID, h.UserID, h.Ticker, h.CompanyName, h.Quantity,
		h.BuyPrice, h.BuyExchangeRate, h.BuyDate, h.Memo, h.CreatedAt, h.UpdatedAt)
	return err
}

// UpdateHolding replaces all editable fields of an existing lot.
func UpdateHolding(db *sql.DB, h *Holding) error {
	h.UpdatedAt = time.Now().UTC()
	query := `
	UPDATE holdings
	SET ticker = ?, company_name = ?, quantity = ?, buy_price = ?, buy_exchange_rate = ?, buy_date = ?, memo = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	res, err := db.Exec(query,
		h.Ticker, h.CompanyName, h.Quantity, h.BuyPrice,
		h.BuyExchangeRate, h.BuyDate, h.Memo, h.UpdatedAt, h.ID, h.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

func DeleteHolding(db *sql.DB, userID int64, id string) error {
	res, err := db.Exec(`DELETE FROM holdings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

// ListHoldings returns all lots for a user ordered by ticker, then buy date.
func ListHoldings(db *sql.DB, userID int64) ([]Holding, error) {
	rows, err := db.Query(`
	SELECT id, user_id, ticker, company_name, quantity, buy_price, buy_exchange_rate, buy_date, memo, created_at, updated_at
	FROM holdings
	WHERE user_id = ?
	ORDER BY ticker ASC, buy_date ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		var h Holding
		var companyName, memo sql.NullString
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.Ticker, &companyName, &h.Quantity,
			&h.BuyPrice, &h.BuyExchangeRate, &h.BuyDate, &memo,
			&h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		h.CompanyName = companyName.String
		h.Memo = memo.String
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
