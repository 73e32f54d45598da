package models

import (
	"database/sql"
	"time"
)

// StateStore is a per-user key/value store with explicit get/set/delete.
// The PIN gate keeps its hash, activity timestamp and lockout counters
// here instead of in ambient global state.
type StateStore interface {
	Get(userID int64, key string) (string, bool, error)
	Set(userID int64, key, value string) error
	Delete(userID int64, key string) error
}

// SQLStateStore backs StateStore with the app_state table.
type SQLStateStore struct {
	db *sql.DB
}

func NewSQLStateStore(db *sql.DB) *SQLStateStore {
	return &SQLStateStore{db: db}
}

func (s *SQLStateStore) Get(userID int64, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStateStore) Set(userID int64, key, value string) error {
	_, err := s.db.Exec(`
	INSERT INTO app_state (user_id, key, value, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		userID, key, value, time.Now().UTC())
	return err
}

func (s *SQLStateStore) Delete(userID int64, key string) error {
	_, err := s.db.Exec(`DELETE FROM app_state WHERE user_id = ? AND key = ?`, userID, key)
	return err
}
