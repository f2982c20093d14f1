package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/learnpath/backend/internal/auth"
	"github.com/learnpath/backend/internal/catalog"
	"github.com/learnpath/backend/internal/database"
	"github.com/learnpath/backend/internal/generator"
	"github.com/learnpath/backend/internal/middleware"
	"github.com/learnpath/backend/internal/progress"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	catalogStore := catalog.NewStore(db)
	if err := catalogStore.SeedBadges(context.Background()); err != nil {
		log.Fatalf("Failed to seed badges: %v", err)
	}

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	catalogHandler := catalog.NewHandler(catalogStore)
	progressService := progress.NewService(progress.NewStore(db), catalogStore, catalogStore)
	progressHandler := progress.NewHandler(progressService)
	generatorHandler := generator.NewHandler(generator.NewGenerator(), catalogStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/themes", catalogHandler.ListThemes).Methods("GET")
	protected.HandleFunc("/themes/{id}/sections", catalogHandler.ListSections).Methods("GET")
	protected.HandleFunc("/sections/{id}/modules", catalogHandler.ListModules).Methods("GET")
	protected.HandleFunc("/modules/{id}", catalogHandler.GetModule).Methods("GET")
	protected.HandleFunc("/badges", catalogHandler.ListBadges).Methods("GET")

	protected.HandleFunc("/progress", progressHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/progress/ranking", progressHandler.GetRanking).Methods("GET")
	protected.HandleFunc("/progress/ranking/me", progressHandler.GetMyRanking).Methods("GET")
	protected.HandleFunc("/progress/modules/{id}/complete", progressHandler.CompleteModule).Methods("POST")
	protected.HandleFunc("/progress/modules/{id}/quiz", progressHandler.RecordQuizScore).Methods("POST")
	protected.HandleFunc("/progress/modules/{id}/quick-review", progressHandler.RecordQuickReviewScore).Methods("POST")
	protected.HandleFunc("/progress/modules/{id}/feedback", progressHandler.SubmitFeedback).Methods("POST")

	protected.HandleFunc("/modules/{id}/quiz/generate", generatorHandler.GenerateQuiz).Methods("POST")
	protected.HandleFunc("/modules/{id}/flashcards/generate", generatorHandler.GenerateFlashcards).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
