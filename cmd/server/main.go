package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/config"
	"github.com/learnhub/backend/internal/content"
	"github.com/learnhub/backend/internal/database"
	"github.com/learnhub/backend/internal/gamification"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	catalog, err := content.Load()
	if err != nil {
		log.Fatalf("Failed to load content catalog: %v", err)
	}

	authenticator, err := middleware.NewAuthenticator(cfg.AuthJWTSecret, cfg.AuthJWTPublicKey)
	if err != nil {
		log.Fatalf("Failed to configure auth: %v", err)
	}

	// Initialize services and handlers
	gamStore := gamification.NewStore(db)
	gamService := gamification.NewService(gamStore, catalog, cfg.DailyGoalTarget)
	gamHandler := gamification.NewHandler(gamService)
	authHandler := auth.NewHandler(db)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Logger)
	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/badges/catalog", gamHandler.BadgeCatalog).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authenticator.Middleware)
	protected.HandleFunc("/users/sync", authHandler.SyncUser).Methods("POST")
	protected.HandleFunc("/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/me/summary", gamHandler.GetSummary).Methods("GET")
	protected.HandleFunc("/quiz/complete", gamHandler.CompleteQuiz).Methods("POST")
	protected.HandleFunc("/tracks/{slug}/complete-module", gamHandler.CompleteTrackModule).Methods("POST")
	protected.HandleFunc("/progress", gamHandler.RecordProgress).Methods("POST")
	protected.HandleFunc("/progress", gamHandler.ListProgress).Methods("GET")
	protected.HandleFunc("/badges", gamHandler.ListBadges).Methods("GET")
	protected.HandleFunc("/daily-goal", gamHandler.GetDailyGoal).Methods("GET")
	protected.HandleFunc("/leaderboard", gamHandler.Leaderboard).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	if cfg.StreakSweep {
		worker, err := gamification.NewStreakWorker(gamService)
		if err != nil {
			log.Fatalf("Failed to start streak worker: %v", err)
		}
		worker.Start()
		defer worker.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[server] starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[server] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[server] forced shutdown: %v", err)
	}
}
