package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wescape-backend/internal/auth"
	"wescape-backend/internal/config"
	"wescape-backend/internal/handlers"
	"wescape-backend/internal/middleware"
	"wescape-backend/internal/repository"
	"wescape-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	configPath := os.Getenv("WESCAPE_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Identity gateway
	gateway := auth.NewGateway(cfg.Auth)

	// Initialize repositories
	tripRepo := repository.NewTripRepository(db)
	cardRepo := repository.NewCardRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Initialize services
	tripService := services.NewTripService(tripRepo, cardRepo, connRepo)
	cardService := services.NewCardService(cardRepo, tripRepo)
	connService := services.NewConnectionService(connRepo, tripRepo)
	profileService := services.NewProfileService(profileRepo)
	coverService, err := services.NewCoverService(
		tripRepo,
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cover service")
	}
	hub := services.NewCanvasHub()

	// Initialize handlers
	debug := cfg.API.Debug
	authHandler := handlers.NewAuthHandler(gateway, debug)
	profileHandler := handlers.NewProfileHandler(profileService, debug)
	tripHandler := handlers.NewTripHandler(tripService, coverService, hub, debug)
	cardHandler := handlers.NewCardHandler(cardService, hub, debug)
	connHandler := handlers.NewConnectionHandler(connService, hub, debug)
	wsHandler := handlers.NewWebSocketHandler(hub, gateway, tripService, debug)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Recoverer(debug))
	r.Use(corsMiddleware(cfg.API.CORSOrigins))

	// Routes
	r.Route(cfg.API.Prefix, func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(gateway))

			r.Get("/users/me", profileHandler.Me)
			r.Put("/users/me", profileHandler.UpdateMe)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", tripHandler.Create)
				r.Get("/", tripHandler.List)

				// Static segments must come before {trip_id}.
				r.Put("/cards/bulk-update", cardHandler.BulkUpdate)
				r.Get("/cards/{card_id}", cardHandler.Get)
				r.Put("/cards/{card_id}", cardHandler.Update)
				r.Delete("/cards/{card_id}", cardHandler.Delete)

				r.Get("/connections/{connection_id}", connHandler.Get)
				r.Put("/connections/{connection_id}", connHandler.Update)
				r.Delete("/connections/{connection_id}", connHandler.Delete)

				r.Route("/{trip_id}", func(r chi.Router) {
					r.Get("/", tripHandler.Get)
					r.Put("/", tripHandler.Update)
					r.Delete("/", tripHandler.Delete)
					r.Get("/full", tripHandler.GetFull)
					r.Post("/duplicate", tripHandler.Duplicate)
					r.Post("/cover-upload", tripHandler.CoverUpload)

					r.Post("/cards", cardHandler.Create)
					r.Get("/cards", cardHandler.List)

					r.Post("/connections", connHandler.Create)
					r.Get("/connections", connHandler.List)
				})
			})
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleCanvas)

	// Health endpoints
	r.Get("/", healthHandler)
	r.Get("/health", healthHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("prefix", cfg.API.Prefix).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"wescape-backend"}`))
}

// corsMiddleware allows the configured origins only
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
