package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/stylefit/tryon-server/api"
	"github.com/stylefit/tryon-server/config"
	"github.com/stylefit/tryon-server/inference"
	"github.com/stylefit/tryon-server/repositories"
	"github.com/stylefit/tryon-server/services"
	"github.com/stylefit/tryon-server/storage"
	"github.com/stylefit/tryon-server/utils"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repositories.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	blobs, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	users := repositories.NewUserRepository(db)
	garments := repositories.NewGarmentRepository(db)
	tryonRepo := repositories.NewTryOnRepository(db)
	logs := repositories.NewLogRepository(db)

	ai := inference.NewClient(cfg)
	mailer := utils.NewMailer(cfg.SendGridAPIKey, cfg.EmailFromName, cfg.EmailFromAddr)

	tryons := services.NewTryOnService(tryonRepo, garments, logs, blobs, ai)
	analytics := services.NewAnalyticsService(users, garments, tryonRepo, logs)

	middleware := api.NewMiddleware(users, cfg.JWTSecret, cfg.CORSOrigin)
	router := api.NewRouter(api.Handlers{
		Auth:    api.NewAuthHandler(users, logs, mailer, cfg),
		User:    api.NewUserHandler(users, garments, logs, blobs, tryons),
		Garment: api.NewGarmentHandler(garments),
		TryOn:   api.NewTryOnHandler(tryons),
		Admin:   api.NewAdminHandler(users, garments, logs, blobs, analytics),
	}, middleware)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Try-on requests block on the inference call; the write timeout
		// must outlast it.
		WriteTimeout: cfg.InferenceTimeout + 30*time.Second,
	}

	log.Printf("Server starting on port %s...", cfg.Port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
