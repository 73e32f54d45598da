package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"github.com/Miseong-debug/Stock-Portfolio/src/security/validation"
	"github.com/Miseong-debug/Stock-Portfolio/src/services"
	"github.com/Miseong-debug/Stock-Portfolio/src/utils"
)

type PortfolioHandler struct {
	portfolioService *services.PortfolioService
}

func NewPortfolioHandler(portfolioService *services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// HandleGetSummary runs the dual-currency valuation over the user's lots
// using whatever quotes are currently cached.
func (h *PortfolioHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	summary, err := h.portfolioService.Summary(userID)
	if err != nil {
		logger.L.Error("Error computing portfolio summary", "userID", userID, "error", err)
		sendJSONError(w, "Error computing portfolio summary", http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(summary)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for portfolio summary", "userID", userID, "error", etagErr)
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

	utils.SendJSON(w, http.StatusOK, summary)
}

// HandleRefreshQuotes pulls live prices for every ticker the user holds.
// The exchange rate is refetched when stale, or always with ?force=true.
func (h *PortfolioHandler) HandleRefreshQuotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	force := r.URL.Query().Get("force") == "true"
	result, err := h.portfolioService.RefreshQuotes(userID, force)
	if err != nil {
		logger.L.Error("Error refreshing quotes", "userID", userID, "error", err)
		sendJSONError(w, "Error refreshing quotes", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}

// HandleSetManualPrice records a user-entered price override for one
// ticker. The override beats any live quote until it is replaced.
func (h *PortfolioHandler) HandleSetManualPrice(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Ticker string  `json:"ticker"`
		Price  float64 `json:"price"`
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
	if err := validation.ValidatePositive(req.Price, validation.ErrInvalidPrice); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	quote := h.portfolioService.SetManualPrice(ticker, req.Price)
	logger.L.Info("Manual price set", "ticker", ticker, "price", req.Price)
	utils.SendJSON(w, http.StatusOK, quote)
}

// HandleSetManualExchangeRate records a user-entered KRW/USD rate.
func (h *PortfolioHandler) HandleSetManualExchangeRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePositive(req.Rate, validation.ErrInvalidRate); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rate := h.portfolioService.SetManualExchangeRate(req.Rate)
	logger.L.Info("Manual exchange rate set", "rate", req.Rate)
	utils.SendJSON(w, http.StatusOK, rate)
}

// HandleGetExchangeRate serves the USD to KRW rate. A cached value is
// returned directly; otherwise the provider chain is consulted and a
// total failure answers 503.
func (h *PortfolioHandler) HandleGetExchangeRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if cached, ok := h.portfolioService.CurrentExchangeRate(); ok {
		utils.SendJSON(w, http.StatusOK, cached)
		return
	}

	rate, err := h.portfolioService.RefreshExchangeRate()
	if err != nil {
		if errors.Is(err, services.ErrExchangeRateUnavailable) {
			sendJSONError(w, "Exchange rate providers unavailable", http.StatusServiceUnavailable)
			return
		}
		logger.L.Error("Error fetching exchange rate", "error", err)
		sendJSONError(w, "Error fetching exchange rate", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, rate)
}
