package main

import (
	"log"
	"net/http"

	"kilnlog-backend/internal/config"
	"kilnlog-backend/internal/database"
	"kilnlog-backend/internal/handlers"
	"kilnlog-backend/internal/middleware"
	"kilnlog-backend/internal/services"
	"kilnlog-backend/internal/supabase"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		logger.Warn("DATABASE_URL not set; migrations and database operations will be skipped")
	}

	// Initialize Supabase clients
	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logger.Fatal("failed to initialize Supabase client", zap.Error(err))
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", zap.Error(err))
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// Direct database connection for queries and migrations
	var dbClient *supabase.DatabaseClient
	if dbURL != "" {
		dbClient, err = supabase.NewDatabaseClient(dbURL)
		if err != nil {
			logger.Warn("failed to initialize database client; database operations will be limited", zap.Error(err))
		} else {
			defer dbClient.Close()

			migrator, err := database.NewMigrator(dbURL, logger)
			if err != nil {
				logger.Warn("failed to initialize migrator", zap.Error(err))
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					logger.Warn("migration failed", zap.Error(err))
				} else {
					logger.Info("migrations completed")
				}
			}
		}
	}

	// Services (dbClient might be nil; handlers guard against this)
	var pieceService *services.PieceService
	var linkService *services.LinkService
	var migrationService *services.MigrationService
	if dbClient != nil {
		pieceService = services.NewPieceService(dbClient)
		linkService = services.NewLinkService(dbClient, logger)
		migrationService = services.NewMigrationService(dbClient, logger)
	}

	piecesHandler := handlers.NewPiecesHandler(pieceService, dbClient, realtimeClient)
	inspirationsHandler := handlers.NewInspirationsHandler(dbClient)
	linksHandler := handlers.NewLinksHandler(linkService, realtimeClient)
	photosHandler := handlers.NewPhotosHandler(dbClient, storageClient)
	migrateHandler := handlers.NewMigrateHandler(migrationService, realtimeClient)

	// Setup router
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Piece routes
	api.POST("/pieces", piecesHandler.UpsertPiece)
	api.GET("/pieces", piecesHandler.ListPieces)
	api.GET("/pieces/:piece_id", piecesHandler.GetPiece)
	api.POST("/pieces/:piece_id/advance", piecesHandler.AdvancePiece)
	api.POST("/pieces/:piece_id/photos", photosHandler.UploadPiecePhotos)

	// Piece <-> inspiration links
	api.GET("/pieces/:piece_id/inspirations", linksHandler.GetPieceInspirations)
	api.PUT("/pieces/:piece_id/inspirations", linksHandler.SetPieceInspirations)

	// Inspiration routes
	api.POST("/inspirations", inspirationsHandler.CreateInspiration)
	api.GET("/inspirations", inspirationsHandler.ListInspirations)
	api.GET("/inspirations/:inspiration_id", inspirationsHandler.GetInspiration)
	api.POST("/inspirations/:inspiration_id/photos", photosHandler.UploadInspirationPhotos)
	api.GET("/inspirations/:inspiration_id/pieces", linksHandler.GetInspirationPieces)
	api.PUT("/inspirations/:inspiration_id/pieces", linksHandler.SetInspirationPieces)

	// Guest data migration
	api.POST("/migrate", migrateHandler.Migrate)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
