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

type DividendHandler struct {
}

func NewDividendHandler() *DividendHandler {
	return &DividendHandler{}
}

func (h *DividendHandler) HandleListDividends(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	dividends, err := models.ListDividends(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing dividends", "userID", userID, "error", err)
		sendJSONError(w, fmt.Sprintf("Error retrieving dividends for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if dividends == nil {
		dividends = []models.Dividend{}
	}
	utils.SendJSON(w, http.StatusOK, dividends)
}

func (h *DividendHandler) HandleCreateDividend(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Ticker       string   `json:"ticker"`
		CompanyName  string   `json:"company_name"`
		Amount       float64  `json:"amount"`
		ExchangeRate *float64 `json:"exchange_rate"`
		ReceivedDate string   `json:"received_date"`
		Memo         string   `json:"memo"`
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
	if err := validation.ValidatePositive(req.Amount, validation.ErrInvalidAmount); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ExchangeRate != nil {
		if err := validation.ValidatePositive(*req.ExchangeRate, validation.ErrInvalidRate); err != nil {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := validation.ValidateDate(req.ReceivedDate); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	d := &models.Dividend{
		UserID:       userID,
		Ticker:       ticker,
		CompanyName:  validation.StripUnprintable(req.CompanyName),
		Amount:       req.Amount,
		ExchangeRate: req.ExchangeRate,
		ReceivedDate: req.ReceivedDate,
		Memo:         validation.StripUnprintable(req.Memo),
	}
	if err := models.CreateDividend(database.DB, d); err != nil {
		logger.L.Error("Error creating dividend", "userID", userID, "ticker", ticker, "error", err)
		sendJSONError(w, "Error creating dividend", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Dividend recorded", "userID", userID, "ticker", ticker, "id", d.ID)
	utils.SendJSON(w, http.StatusCreated, d)
}

func (h *DividendHandler) HandleDeleteDividend(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		sendJSONError(w, "Dividend id is required", http.StatusBadRequest)
		return
	}

	if err := models.DeleteDividend(database.DB, userID, id); err != nil {
		if errors.Is(err, models.ErrDividendNotFound) {
			sendJSONError(w, "Dividend not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting dividend", "userID", userID, "id", id, "error", err)
		sendJSONError(w, "Error deleting dividend", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "dividend deleted"})
}
