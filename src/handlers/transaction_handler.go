package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Miseong-debug/Stock-Portfolio/src/database"
	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"github.com/Miseong-debug/Stock-Portfolio/src/models"
	"github.com/Miseong-debug/Stock-Portfolio/src/security/validation"
	"github.com/Miseong-debug/Stock-Portfolio/src/utils"
)

type TransactionHandler struct {
}

func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	transactions, err := models.ListTransactions(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing transactions", "userID", userID, "error", err)
		sendJSONError(w, fmt.Sprintf("Error retrieving transactions for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	utils.SendJSON(w, http.StatusOK, transactions)
}

func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Ticker       string  `json:"ticker"`
		CompanyName  string  `json:"company_name"`
		TxType       string  `json:"tx_type"`
		Quantity     float64 `json:"quantity"`
		Price        float64 `json:"price"`
		ExchangeRate float64 `json:"exchange_rate"`
		TxDate       string  `json:"tx_date"`
		Memo         string  `json:"memo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ticker, err := validation.NormalizeTicker(req.Ticker)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateTxType(req.TxType); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositive(req.Quantity, validation.ErrInvalidQuantity); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositive(req.Price, validation.ErrInvalidPrice); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositive(req.ExchangeRate, validation.ErrInvalidRate); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateDate(req.TxDate); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	// The transaction log is independent of holdings: recording a buy or
	// sell does not touch the lots.
	tx := &models.Transaction{
		UserID:       userID,
		Ticker:       ticker,
		CompanyName:  validation.StripUnprintable(req.CompanyName),
		TxType:       req.TxType,
		Quantity:     req.Quantity,
		Price:        req.Price,
		ExchangeRate: req.ExchangeRate,
		TxDate:       req.TxDate,
		Memo:         validation.StripUnprintable(req.Memo),
	}
	if err := models.CreateTransaction(database.DB, tx); err != nil {
		logger.L.Error("Error creating transaction", "userID", userID, "ticker", ticker, "error", err)
		sendJSONError(w, "Error creating transaction", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Transaction recorded", "userID", userID, "ticker", ticker, "txType", tx.TxType, "id", tx.ID)
	utils.SendJSON(w, http.StatusCreated, tx)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		sendJSONError(w, "Transaction id is required", http.StatusBadRequest)
		return
	}

	if err := models.DeleteTransaction(database.DB, userID, id); err != nil {
		if errors.Is(err, models.ErrTransactionNotFound) {
			sendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting transaction", "userID", userID, "id", id, "error", err)
		sendJSONError(w, "Error deleting transaction", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}
