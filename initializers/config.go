package initializers

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the process-wide configuration, read once at startup and passed
// by handle into the components that need it.
type Config struct {
	Port             string
	DatabaseURL      string
	JWTSecret        string
	EncryptionSecret string
	BaseURL          string

	StorageBackend string // "s3" or "supabase"
	AWSRegion      string
	S3Bucket       string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// LoadConfig reads .env (when present) and the environment. The process
// must fail fast when the encryption secret is missing: without it no blob
// can ever be decrypted again.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DB_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		EncryptionSecret: os.Getenv("FILE_ENCRYPTION_KEY"),
		BaseURL:          getEnv("BASE_URL", "http://localhost:8080"),
		StorageBackend:   getEnv("STORAGE_BACKEND", "s3"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		S3Bucket:         os.Getenv("AWS_BUCKET_NAME"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_KEY"),
		SupabaseBucket:   getEnv("SUPABASE_BUCKET", "securevault"),
	}

	if cfg.EncryptionSecret == "" {
		return nil, errors.New("FILE_ENCRYPTION_KEY is not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DB_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
