package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"github.com/Miseong-debug/Stock-Portfolio/src/security"
	"github.com/Miseong-debug/Stock-Portfolio/src/security/validation"
	"github.com/Miseong-debug/Stock-Portfolio/src/utils"
)

type PinHandler struct {
	pinService *security.PinService
}

func NewPinHandler(pinService *security.PinService) *PinHandler {
	return &PinHandler{pinService: pinService}
}

type pinStatusResponse struct {
	PinSet         bool `json:"pin_set"`
	SessionExpired bool `json:"session_expired"`
	LockedOut      bool `json:"locked_out"`
	LockoutSeconds int  `json:"lockout_seconds"`
	FailedAttempts int  `json:"failed_attempts"`
}

// HandlePinStatus reports whether a PIN exists, whether the inactivity
// window has elapsed, and the current lockout state.
func (h *PinHandler) HandlePinStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	pinSet, err := h.pinService.IsPinSet(userID)
	if err != nil {
		logger.L.Error("Error reading pin state", "userID", userID, "error", err)
		sendJSONError(w, "Error reading pin state", http.StatusInternalServerError)
		return
	}
	expired, err := h.pinService.SessionExpired(userID)
	if err != nil {
		logger.L.Error("Error reading pin session state", "userID", userID, "error", err)
		sendJSONError(w, "Error reading pin state", http.StatusInternalServerError)
		return
	}
	locked, err := h.pinService.IsLockedOut(userID)
	if err != nil {
		logger.L.Error("Error reading pin lockout state", "userID", userID, "error", err)
		sendJSONError(w, "Error reading pin state", http.StatusInternalServerError)
		return
	}
	remaining, err := h.pinService.LockoutRemaining(userID)
	if err != nil {
		remaining = 0
	}
	attempts, err := h.pinService.FailedAttempts(userID)
	if err != nil {
		attempts = 0
	}

	utils.SendJSON(w, http.StatusOK, pinStatusResponse{
		PinSet:         pinSet,
		SessionExpired: expired,
		LockedOut:      locked,
		LockoutSeconds: remaining,
		FailedAttempts: attempts,
	})
}

func (h *PinHandler) HandleSetupPin(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Pin string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePin(req.Pin); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	alreadySet, err := h.pinService.IsPinSet(userID)
	if err != nil {
		logger.L.Error("Error reading pin state", "userID", userID, "error", err)
		sendJSONError(w, "Error saving pin", http.StatusInternalServerError)
		return
	}
	if alreadySet {
		sendJSONError(w, "A PIN is already set. Use the change endpoint instead.", http.StatusConflict)
		return
	}

	if err := h.pinService.SavePin(userID, req.Pin); err != nil {
		logger.L.Error("Error saving pin", "userID", userID, "error", err)
		sendJSONError(w, "Error saving pin", http.StatusInternalServerError)
		return
	}
	if err := h.pinService.UpdateLastActivity(userID); err != nil {
		logger.L.Warn("Error updating pin activity", "userID", userID, "error", err)
	}

	logger.L.Info("PIN set up", "userID", userID)
	utils.SendJSON(w, http.StatusCreated, map[string]string{"message": "pin set"})
}

func (h *PinHandler) HandleVerifyPin(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		Pin string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePin(req.Pin); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	valid, err := h.pinService.VerifyPin(userID, req.Pin)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrPinLockedOut):
			remaining, _ := h.pinService.LockoutRemaining(userID)
			utils.SendJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":           "Too many failed attempts. Try again later.",
				"lockout_seconds": remaining,
			})
		case errors.Is(err, security.ErrPinNotSet):
			sendJSONError(w, "No PIN is set", http.StatusNotFound)
		default:
			logger.L.Error("Error verifying pin", "userID", userID, "error", err)
			sendJSONError(w, "Error verifying pin", http.StatusInternalServerError)
		}
		return
	}

	if !valid {
		attempts, _ := h.pinService.FailedAttempts(userID)
		utils.SendJSON(w, http.StatusUnauthorized, map[string]any{
			"error":           "Incorrect PIN",
			"failed_attempts": attempts,
		})
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "pin verified"})
}

func (h *PinHandler) HandleChangePin(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPin string `json:"current_pin"`
		NewPin     string `json:"new_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePin(req.NewPin); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	changed, err := h.pinService.ChangePin(userID, req.CurrentPin, req.NewPin)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrPinLockedOut):
			remaining, _ := h.pinService.LockoutRemaining(userID)
			utils.SendJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":           "Too many failed attempts. Try again later.",
				"lockout_seconds": remaining,
			})
		case errors.Is(err, security.ErrPinNotSet):
			sendJSONError(w, "No PIN is set", http.StatusNotFound)
		default:
			logger.L.Error("Error changing pin", "userID", userID, "error", err)
			sendJSONError(w, "Error changing pin", http.StatusInternalServerError)
		}
		return
	}
	if !changed {
		sendJSONError(w, "Incorrect PIN", http.StatusUnauthorized)
		return
	}

	logger.L.Info("PIN changed", "userID", userID)
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "pin changed"})
}

func (h *PinHandler) HandleDeletePin(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.pinService.ClearPin(userID); err != nil {
		logger.L.Error("Error clearing pin", "userID", userID, "error", err)
		sendJSONError(w, "Error clearing pin", http.StatusInternalServerError)
		return
	}

	logger.L.Info("PIN removed", "userID", userID)
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "pin removed"})
}

// HandlePinActivity refreshes the inactivity timer. The client calls
// this on user interaction so an active session does not re-prompt.
func (h *PinHandler) HandlePinActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := h.pinService.UpdateLastActivity(userID); err != nil {
		logger.L.Error("Error updating pin activity", "userID", userID, "error", err)
		sendJSONError(w, "Error updating activity", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "activity recorded"})
}
