package models

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrTransactionNotFound = errors.New("transaction not found")

const (
	TxTypeBuy  = "buy"
	TxTypeSell = "sell"
)

// Transaction is an immutable log entry of a buy or sell event. It is an
// independent ledger: inserting or deleting a transaction never adjusts
// holdings quantities.
type Transaction struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	Ticker       string    `json:"ticker"`
	CompanyName  string    `json:"company_name"`
	TxType       string    `json:"tx_type"`
	Quantity     float64   `json:"quantity"`
	Price        float64   `json:"price"`
	ExchangeRate float64   `json:"exchange_rate"`
	TxDate       string    `json:"tx_date"`
	Memo         string    `json:"memo"`
	CreatedAt    time.Time `json:"created_at"`
}

func CreateTransaction(db *sql.DB, t *Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now().UTC()

	query := `
	INSERT INTO transactions (id, user_id, ticker, company_name, tx_type, quantity, price, exchange_rate, tx_date, memo, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.Exec(query,
		t.ID, t.UserID, t.Ticker, t.CompanyName, t.TxType,
		t.Quantity, t.Price, t.ExchangeRate, t.TxDate, t.Memo, t.CreatedAt)
	return err
}

func DeleteTransaction(db *sql.DB, userID int64, id string) error {
	res, err := db.Exec(`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListTransactions returns the log for a user, most recent first.
func ListTransactions(db *sql.DB, userID int64) ([]Transaction, error) {
	rows, err := db.Query(`
	SELECT id, user_id, ticker, company_name, tx_type, quantity, price, exchange_rate, tx_date, memo, created_at
	FROM transactions
	WHERE user_id = ?
	ORDER BY tx_date DESC, created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		var companyName, memo sql.NullString
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Ticker, &companyName, &t.TxType,
			&t.Quantity, &t.Price, &t.ExchangeRate, &t.TxDate, &memo,
			&t.CreatedAt); err != nil {
			return nil, err
		}
		t.CompanyName = companyName.String
		t.Memo = memo.String
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
