package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Miseong-debug/Stock-Portfolio/src/config"
	"github.com/Miseong-debug/Stock-Portfolio/src/database"
	"github.com/Miseong-debug/Stock-Portfolio/src/handlers"
	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	"github.com/Miseong-debug/Stock-Portfolio/src/models"
	"github.com/Miseong-debug/Stock-Portfolio/src/security"
	"github.com/Miseong-debug/Stock-Portfolio/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Stock-Portfolio backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	stateStore := models.NewSQLStateStore(database.DB)
	pinService := security.NewPinService(
		stateStore,
		config.Cfg.PinMaxFailedAttempts,
		config.Cfg.PinLockoutDuration,
		config.Cfg.PinSessionTimeout,
	)

	quoteStore := services.NewQuoteStore()
	priceService := services.NewPriceService(config.Cfg.YahooChartBaseURL)
	rateService := services.NewExchangeRateService(config.Cfg.FrankfurterBaseURL, config.Cfg.OpenERAPIBaseURL)
	portfolioService := services.NewPortfolioService(database.DB, quoteStore, priceService, rateService)

	userHandler := handlers.NewUserHandler(authService)
	pinHandler := handlers.NewPinHandler(pinService)
	holdingHandler := handlers.NewHoldingHandler(portfolioService)
	txHandler := handlers.NewTransactionHandler()
	dividendHandler := handlers.NewDividendHandler()
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)

	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.Handle("POST /logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.LogoutUserHandler)))

	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)(authActionRouter)))

	csrfProtection := handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)
	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}

	apiRouter.Handle("GET /api/pin/status", applyCsrfAndAuth(pinHandler.HandlePinStatus))
	apiRouter.Handle("POST /api/pin/setup", applyCsrfAndAuth(pinHandler.HandleSetupPin))
	apiRouter.Handle("POST /api/pin/verify", applyCsrfAndAuth(pinHandler.HandleVerifyPin))
	apiRouter.Handle("POST /api/pin/change", applyCsrfAndAuth(pinHandler.HandleChangePin))
	apiRouter.Handle("POST /api/pin/activity", applyCsrfAndAuth(pinHandler.HandlePinActivity))
	apiRouter.Handle("DELETE /api/pin", applyCsrfAndAuth(pinHandler.HandleDeletePin))

	apiRouter.Handle("GET /api/holdings", applyCsrfAndAuth(holdingHandler.HandleListHoldings))
	apiRouter.Handle("POST /api/holdings", applyCsrfAndAuth(holdingHandler.HandleCreateHolding))
	apiRouter.Handle("GET /api/holdings/grouped", applyCsrfAndAuth(holdingHandler.HandleGetGroupedHoldings))
	apiRouter.Handle("PUT /api/holdings/{id}", applyCsrfAndAuth(holdingHandler.HandleUpdateHolding))
	apiRouter.Handle("DELETE /api/holdings/{id}", applyCsrfAndAuth(holdingHandler.HandleDeleteHolding))

	apiRouter.Handle("GET /api/transactions", applyCsrfAndAuth(txHandler.HandleListTransactions))
	apiRouter.Handle("POST /api/transactions", applyCsrfAndAuth(txHandler.HandleCreateTransaction))
	apiRouter.Handle("DELETE /api/transactions/{id}", applyCsrfAndAuth(txHandler.HandleDeleteTransaction))

	apiRouter.Handle("GET /api/dividends", applyCsrfAndAuth(dividendHandler.HandleListDividends))
	apiRouter.Handle("POST /api/dividends", applyCsrfAndAuth(dividendHandler.HandleCreateDividend))
	apiRouter.Handle("DELETE /api/dividends/{id}", applyCsrfAndAuth(dividendHandler.HandleDeleteDividend))

	apiRouter.Handle("GET /api/portfolio/summary", applyCsrfAndAuth(portfolioHandler.HandleGetSummary))
	apiRouter.Handle("POST /api/portfolio/refresh", applyCsrfAndAuth(portfolioHandler.HandleRefreshQuotes))
	apiRouter.Handle("PUT /api/portfolio/price", applyCsrfAndAuth(portfolioHandler.HandleSetManualPrice))
	apiRouter.Handle("PUT /api/portfolio/exchange-rate", applyCsrfAndAuth(portfolioHandler.HandleSetManualExchangeRate))
	apiRouter.Handle("GET /api/exchange-rate", applyCsrfAndAuth(portfolioHandler.HandleGetExchangeRate))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Stock-Portfolio backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
