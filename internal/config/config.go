package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store drivers understood by Load.
const (
	StoreMongo    = "mongo"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the application configuration.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"`
	ServerPort int    `envconfig:"PORT" default:"5000"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"placeit"`
	DatabasePath  string `envconfig:"DATABASE_PATH" default:"./placeit.db"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`

	JWTSecret  string        `envconfig:"JWT_SECRET" default:"default_secret"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"10"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,https://se-project-rishi.vercel.app"`

	PredictorURL      string        `envconfig:"PREDICTOR_URL" default:"http://127.0.0.1:8000"`
	GeocoderURL       string        `envconfig:"GEOCODER_URL" default:"https://nominatim.openstreetmap.org"`
	GeocoderUserAgent string        `envconfig:"GEOCODER_USER_AGENT" default:"placeit-be/1.0"`
	UpstreamTimeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"20s"`
	MapTilerKey       string        `envconfig:"MAPTILER_API_KEY"`

	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	GeocodeCacheTTL time.Duration `envconfig:"GEOCODE_CACHE_TTL" default:"24h"`

	AnalyzeRateLimit int           `envconfig:"ANALYZE_RATE_LIMIT" default:"30"`
	HealthSchedule   string        `envconfig:"HEALTH_SCHEDULE" default:"@every 1m"`
	StatInterval     time.Duration `envconfig:"STAT_INTERVAL" default:"15s"`
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo, StoreSQLite, StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == "default_secret") {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.StatInterval <= 0 {
		return errors.New("STAT_INTERVAL must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
