package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	APIBase   string
	Secret    string
	DBPath    string
	UploadDir string
	Env       string
}

// Load reads configuration from the environment, with an optional .env
// overlay for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		APIBase:   getEnv("API_URL", "/api/v1"),
		Secret:    os.Getenv("SECRET"),
		DBPath:    getEnv("DB_PATH", "database.db"),
		UploadDir: getEnv("UPLOAD_DIR", "public/uploads"),
		Env:       getEnv("ENV", "development"),
	}

	if cfg.Secret == "" {
		if cfg.Production() {
			return nil, errors.New("SECRET must be set in production")
		}
		cfg.Secret = "dev_fallback_secret"
	}

	return cfg, nil
}

func (c *Config) Production() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
