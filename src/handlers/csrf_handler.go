package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"

	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"github.com/Miseong-debug/Stock-Portfolio/src/utils"
)

const csrfCookieName = "_csrf_token"

// GetCSRFToken issues a fresh CSRF token, set both as a cookie and in the
// response body/header. Clients echo it back in the X-CSRF-Token header on
// mutating requests.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := generateRandomToken()
	if err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		sendJSONError(w, "Failed to generate CSRF token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // set to true behind HTTPS
		MaxAge:   3600,
	})

	w.Header().Set("X-CSRF-Token", token)
	utils.SendJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// CSRFMiddleware verifies that the token from the X-CSRF-Token header
// matches the one in the CSRF cookie for state-changing methods. Safe
// methods pass through.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)
			if err != nil || headerToken == "" {
				logger.L.Warn("CSRF validation failed: missing token", "method", r.Method, "path", r.URL.Path)
				sendJSONError(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			// HMAC either side with the auth key so the comparison is
			// constant time regardless of token lengths.
			mac := hmac.New(sha256.New, authKey)
			mac.Write([]byte(headerToken))
			headerMAC := mac.Sum(nil)
			mac.Reset()
			mac.Write([]byte(cookie.Value))
			cookieMAC := mac.Sum(nil)

			if !hmac.Equal(headerMAC, cookieMAC) {
				logger.L.Warn("CSRF validation failed: token mismatch", "method", r.Method, "path", r.URL.Path)
				sendJSONError(w, "CSRF token invalid", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
