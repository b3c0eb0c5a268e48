package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/fintrack/internal/api/handlers"
	"github.com/dvloznov/fintrack/internal/api/middleware"
	"github.com/dvloznov/fintrack/internal/config"
	"github.com/dvloznov/fintrack/internal/identity"
	"github.com/dvloznov/fintrack/internal/infra/postgres"
	"github.com/dvloznov/fintrack/internal/ledger"
	"github.com/dvloznov/fintrack/internal/logger"
	"github.com/dvloznov/fintrack/internal/receipt"
	"github.com/dvloznov/fintrack/internal/seeder"
	"github.com/dvloznov/fintrack/internal/views"
)

func main() {
	port := flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	log := logger.New()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}
	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - receipt archival is disabled")
	}

	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	viewRegistry := views.NewRegistry()
	resolver := identity.NewResolver(store, log)
	ledgerSvc := ledger.NewService(store, viewRegistry, log)
	demoSeeder := seeder.New(store, log)
	scanner := receipt.NewScanner(cfg.GeminiModel)

	transactionsHandler := handlers.NewTransactionsHandler(ledgerSvc, resolver, log)
	accountsHandler := handlers.NewAccountsHandler(store, resolver, log)
	receiptsHandler := handlers.NewReceiptsHandler(scanner, resolver, cfg.GCSBucket, log)
	seedHandler := handlers.NewSeedHandler(demoSeeder, resolver, log)

	rl := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/transactions", transactionsHandler.Create)
	api.HandleFunc("GET /api/transactions", transactionsHandler.List)
	api.HandleFunc("GET /api/transactions/{id}", transactionsHandler.Get)
	api.HandleFunc("PUT /api/transactions/{id}", transactionsHandler.Update)
	api.HandleFunc("DELETE /api/transactions/{id}", transactionsHandler.Delete)

	api.HandleFunc("POST /api/accounts", accountsHandler.Create)
	api.HandleFunc("GET /api/accounts", accountsHandler.List)
	api.HandleFunc("GET /api/accounts/{id}", accountsHandler.Get)

	// Receipt scans and seeding are expensive; they draw down the quota
	// faster than ordinary requests.
	api.Handle("POST /api/receipts/scan", rl.Middleware(5)(http.HandlerFunc(receiptsHandler.Scan)))
	api.Handle("POST /api/accounts/{id}/seed", rl.Middleware(10)(http.HandlerFunc(seedHandler.Seed)))

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.Auth([]byte(cfg.JWTSecret))(rl.Middleware(1)(api)))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Database unreachable")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
