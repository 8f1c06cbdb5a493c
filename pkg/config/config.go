package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	// Persistence. When DatabaseURL is set the ledger is stored in
	// Postgres; otherwise it lives in the JSON file at DataFile.
	DatabaseURL string
	DataFile    string

	// APIKey guards /api/v1 when non-empty.
	APIKey string

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string

	// FX quote behavior.
	FXRefreshInterval time.Duration
	FXQuoteTTL        time.Duration
	FXRequestTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist.
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("DATA_FILE", "ledger.json")
	viper.SetDefault("API_KEY", "")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("FX_REFRESH_INTERVAL", "30m")
	viper.SetDefault("FX_QUOTE_TTL", "2h")
	viper.SetDefault("FX_REQUEST_TIMEOUT", "10s")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:         viper.GetString("PORT"),
		IsProduction: viper.GetBool("IS_PRODUCTION"),
		DatabaseURL:  viper.GetString("PGSQL_URL"),
		DataFile:     viper.GetString("DATA_FILE"),
		APIKey:       viper.GetString("API_KEY"),
		RateLimit:    viper.GetString("RATE_LIMIT"),
	}

	cfg.FXRefreshInterval = durationOrDefault("FX_REFRESH_INTERVAL", 30*time.Minute)
	cfg.FXQuoteTTL = durationOrDefault("FX_QUOTE_TTL", 2*time.Hour)
	cfg.FXRequestTimeout = durationOrDefault("FX_REQUEST_TIMEOUT", 10*time.Second)

	if cfg.DatabaseURL == "" {
		log.Printf("PGSQL_URL not set, ledger will be stored in %s\n", cfg.DataFile)
	}
	if cfg.APIKey == "" {
		log.Println("Warning: API_KEY not set. The API is unauthenticated.")
	}

	return cfg, nil
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}
