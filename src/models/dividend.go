package models

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDividendNotFound = errors.New("dividend not found")

// Dividend is a cash receipt tied to a ticker. ExchangeRate is the KRW/USD
// rate captured at receipt time; nil means the current rate applies at
// display time.
type Dividend struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Ticker       string    `json:"ticker"`
	CompanyName  string    `json:"company_name"`
	Amount       float64   `json:"amount"`
	ExchangeRate *float64  `json:"exchange_rate"`
	ReceivedDate string    `json:"received_date"`
	Memo         string    `json:"memo"`
	CreatedAt    time.Time `json:"created_at"`
}

func CreateDividend(db *sql.DB, d *Dividend) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()

	query := `
	INSERT INTO dividends (id, user_id, ticker, company_name, amount, exchange_rate, received_date, memo, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		d.ID, d.UserID, d.Ticker, d.CompanyName, d.Amount,
		d.ExchangeRate, d.ReceivedDate, d.Memo, d.CreatedAt)
	return err
}

func DeleteDividend(db *sql.DB, userID int64, id string) error {
	res, err := db.Exec(`DELETE FROM dividends WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDividendNotFound
	}
	return nil
}

// ListDividends returns dividend receipts for a user, most recent first.
func ListDividends(db *sql.DB, userID int64) ([]Dividend, error) {
	rows, err := db.Query(`
	SELECT id, user_id, ticker, company_name, amount, exchange_rate, received_date, memo, created_at
	FROM dividends
	WHERE user_id = ?
	ORDER BY received_date DESC, created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dividends []Dividend
	for rows.Next() {
		var d Dividend
		var companyName, memo sql.NullString
		var rate sql.NullFloat64
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Ticker, &companyName, &d.Amount,
			&rate, &d.ReceivedDate, &memo, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.CompanyName = companyName.String
		d.Memo = memo.String
		if rate.Valid {
			d.ExchangeRate = &rate.Float64
		}
		dividends = append(dividends, d)
	}
	return dividends, rows.Err()
}
