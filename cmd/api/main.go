package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/homescope/homescope-api/internal/config"
	"github.com/homescope/homescope-api/internal/domain/account"
	"github.com/homescope/homescope-api/internal/domain/credit"
	"github.com/homescope/homescope-api/internal/domain/listing"
	"github.com/homescope/homescope-api/internal/domain/payment"
	"github.com/homescope/homescope-api/internal/domain/pin"
	"github.com/homescope/homescope-api/internal/domain/search"
	"github.com/homescope/homescope-api/internal/middleware"
	"github.com/homescope/homescope-api/internal/pkg/database"
	"github.com/homescope/homescope-api/internal/pkg/jwt"
	"github.com/homescope/homescope-api/internal/pkg/paylink"
	"github.com/homescope/homescope-api/internal/pkg/propertydata"
	"github.com/homescope/homescope-api/internal/pkg/response"
	"github.com/homescope/homescope-api/internal/pkg/storage"
	"github.com/homescope/homescope-api/internal/realtime"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting HomeScope API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	r2Storage, err := storage.NewR2Storage(storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 storage")
	}

	propertyClient := propertydata.NewClient(propertydata.Config{
		BaseURL: cfg.PropertyDataBaseURL,
		APIKey:  cfg.PropertyDataAPIKey,
		Timeout: cfg.PropertyDataTimeout,
	})

	paylinkClient := paylink.NewClient(paylink.Config{
		BaseURL:    cfg.PaylinkBaseURL,
		MerchantID: cfg.PaylinkMerchantID,
		SecretKey:  cfg.PaylinkSecretKey,
	})

	// ---------- WebSocket hub ----------
	hub := realtime.NewHub(redis)
	go hub.Run()

	// ---------- Repositories ----------
	accountRepo := account.NewRepository(db)
	creditRepo := credit.NewRepository(db)
	searchRepo := search.NewRepository(db)
	pinRepo := pin.NewRepository(db)
	listingRepo := listing.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	// ---------- Services ----------
	creditService := credit.NewService(creditRepo, hub)
	accountService := account.NewService(accountRepo, jwtService, redis, creditService, cfg.SignupCreditGrant)
	searchService := search.NewService(searchRepo, creditService, propertyClient)
	listingService := listing.NewService(listingRepo, r2Storage, redis)
	paymentService := payment.NewService(paymentRepo, paylinkClient, creditService,
		cfg.PaylinkSecretKey, cfg.FrontendURL, cfg.BackendURL)

	// ---------- Handlers ----------
	accountHandler := account.NewHandler(accountService)
	creditHandler := credit.NewHandler(creditService)
	searchHandler := search.NewHandler(searchService, creditService)
	pinHandler := pin.NewHandler(pinRepo)
	listingHandler := listing.NewHandler(listingService)
	paymentHandler := payment.NewHandler(paymentService)
	realtimeHandler := realtime.NewHandler(hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)
	optionalAuth := middleware.OptionalAuth(jwtService)
	requireAgent := middleware.RequireAgent()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(realtimeHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Route("/api/v1", func(r chi.Router) {
			r.Mount("/auth", accountHandler.Routes(authMiddleware))
			r.Mount("/credits", creditHandler.Routes(authMiddleware))
			r.Mount("/searches", searchHandler.Routes(authMiddleware, optionalAuth))
			r.Mount("/search", searchHandler.UtilityRoutes(optionalAuth))
			r.Mount("/pins", pinHandler.Routes(authMiddleware))
			r.Mount("/listings", listingHandler.Routes(authMiddleware, requireAgent))
			r.Mount("/payments", paymentHandler.Routes(authMiddleware))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Shutdown()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
