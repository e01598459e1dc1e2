package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/securevault/securevault-backend/audit"
	"github.com/securevault/securevault-backend/auth"
	"github.com/securevault/securevault-backend/auth/middleware"
	"github.com/securevault/securevault-backend/encryption"
	"github.com/securevault/securevault-backend/handlers"
	"github.com/securevault/securevault-backend/initializers"
	"github.com/securevault/securevault-backend/jobs"
	"github.com/securevault/securevault-backend/repository"
	"github.com/securevault/securevault-backend/routes"
	"github.com/securevault/securevault-backend/storage"
	"github.com/securevault/securevault-backend/vault"
)

const cleanupInterval = time.Hour

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run() error {
	cfg, err := initializers.LoadConfig()
	if err != nil {
		return err
	}

	db, err := initializers.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	log.Info().Msg("database connected and migrated")

	store, err := newObjectStore(cfg)
	if err != nil {
		return err
	}

	codec, err := encryption.NewCodec(cfg.EncryptionSecret)
	if err != nil {
		return err
	}
	tmp, err := vault.NewTempDir("")
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	shareRepo := repository.NewShareLinkRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	recorder := audit.NewRecorder(auditRepo)
	fileService := vault.NewFileService(fileRepo, shareRepo, codec, store, recorder, tmp)
	shareService := vault.NewShareService(shareRepo, fileRepo, codec, store, recorder, tmp, cfg.BaseURL)
	tokens := auth.NewService(cfg.JWTSecret)

	jobs.StartShareLinkCleanup(shareRepo, cleanupInterval)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimit())

	routes.RegisterAuthRoutes(router, handlers.NewAuthHandler(userRepo, tokens))
	routes.RegisterFileRoutes(
		router,
		tokens,
		handlers.NewFileHandler(fileService),
		handlers.NewShareHandler(shareService),
		handlers.NewAuditHandler(recorder),
	)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "SecureVault API running")
	})

	log.Info().Str("port", cfg.Port).Msg("starting server")
	return router.Run(":" + cfg.Port)
}

func newObjectStore(cfg *initializers.Config) (storage.ObjectStore, error) {
	switch cfg.StorageBackend {
	case "supabase":
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket), nil
	case "s3":
		client, err := initializers.NewS3Client(context.Background(), cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(client, cfg.S3Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
