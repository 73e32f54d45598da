package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Miseong-debug/Stock-Portfolio/src/database"
	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"github.com/Miseong-debug/Stock-Portfolio/src/models"
	"github.com/Miseong-debug/Stock-Portfolio/src/security/validation"
	"github.com/Miseong-debug/Stock-Portfolio/src/services"
	"github.com/Miseong-debug/Stock-Portfolio/src/utils"
)

type HoldingHandler struct {
	portfolioService *services.PortfolioService
}

func NewHoldingHandler(portfolioService *services.PortfolioService) *HoldingHandler {
	return &HoldingHandler{
		portfolioService: portfolioService,
	}
}

// holdingRequest is the request shape for create and update.
type holdingRequest struct {
	Ticker          string  `json:"ticker"`
	CompanyName     string  `json:"company_name"`
	Quantity        float64 `json:"quantity"`
	BuyPrice        float64 `json:"buy_price"`
	BuyExchangeRate float64 `json:"buy_exchange_rate"`
	BuyDate         string  `json:"buy_date"`
	Memo            string  `json:"memo"`
}

func (req *holdingRequest) validate() (string, error) {
	ticker, err := validation.NormalizeTicker(req.Ticker)
	if err != nil {
		return "", err
	}
	if err := validation.ValidatePositive(req.Quantity, validation.ErrInvalidQuantity); err != nil {
		return "", err
	}
	if err := validation.ValidatePositive(req.BuyPrice, validation.ErrInvalidPrice); err != nil {
		return "", err
	}
	if err := validation.ValidatePositive(req.BuyExchangeRate, validation.ErrInvalidRate); err != nil {
		return "", err
	}
	if err := validation.ValidateDate(req.BuyDate); err != nil {
		return "", err
	}
	return ticker, nil
}

func (h *HoldingHandler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	holdings, err := models.ListHoldings(database.DB, userID)
	if err != nil {
		logger.L.Error("Error listing holdings", "userID", userID, "error", err)
		sendJSONError(w, fmt.Sprintf("Error retrieving holdings for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}

	currentETag, etagErr := utils.GenerateETag(holdings)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for holdings", "userID", userID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, http.StatusOK, holdings)
}

func (h *HoldingHandler) HandleGetGroupedHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	grouped, err := h.portfolioService.GroupedHoldings(userID)
	if err != nil {
		logger.L.Error("Error grouping holdings", "userID", userID, "error", err)
		sendJSONError(w, fmt.Sprintf("Error grouping holdings for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, grouped)
}

func (h *HoldingHandler) HandleCreateHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req holdingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ticker, err := req.validate()
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	holding := &models.Holding{
		UserID:          userID,
		Ticker:          ticker,
		CompanyName:     validation.StripUnprintable(req.CompanyName),
		Quantity:        req.Quantity,
		BuyPrice:        req.BuyPrice,
		BuyExchangeRate: req.BuyExchangeRate,
		BuyDate:         req.BuyDate,
		Memo:            validation.StripUnprintable(req.Memo),
	}
	if err := models.CreateHolding(database.DB, holding); err != nil {
		logger.L.Error("Error creating holding", "userID", userID, "ticker", ticker, "error", err)
		sendJSONError(w, "Error creating holding", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Holding created", "userID", userID, "ticker", ticker, "id", holding.ID)
	utils.SendJSON(w, http.StatusCreated, holding)
}

func (h *HoldingHandler) HandleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		sendJSONError(w, "Holding id is required", http.StatusBadRequest)
		return
	}

	var req holdingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	ticker, err := req.validate()
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	holding := &models.Holding{
		ID:              id,
		UserID:          userID,
		Ticker:          ticker,
		CompanyName:     validation.StripUnprintable(req.CompanyName),
		Quantity:        req.Quantity,
		BuyPrice:        req.BuyPrice,
		BuyExchangeRate: req.BuyExchangeRate,
		BuyDate:         req.BuyDate,
		Memo:            validation.StripUnprintable(req.Memo),
	}
	if err := models.UpdateHolding(database.DB, holding); err != nil {
		if errors.Is(err, models.ErrHoldingNotFound) {
			sendJSONError(w, "Holding not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error updating holding", "userID", userID, "id", id, "error", err)
		sendJSONError(w, "Error updating holding", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, holding)
}

func (h *HoldingHandler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	id := r.PathValue("id")
	if id == "" {
		sendJSONError(w, "Holding id is required", http.StatusBadRequest)
		return
	}

	if err := models.DeleteHolding(database.DB, userID, id); err != nil {
		if errors.Is(err, models.ErrHoldingNotFound) {
			sendJSONError(w, "Holding not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Error deleting holding", "userID", userID, "id", id, "error", err)
		sendJSONError(w, "Error deleting holding", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "holding deleted"})
}
