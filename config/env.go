package config

import (
	"os"
	"shop-cart/models"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	CacheSQLite   = "sqlite"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
	CacheMemory   = "memory"
)

type Config struct {
	AppEnv          string
	Port            string
	APIBaseURL      string
	APITimeout      time.Duration
	CartCache       string
	SQLitePath      string
	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	DatabaseURL     string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	PointsPerBlock  int64
	ValuePerBlock   decimal.Decimal
	DisplayDecimals int32
	OriginURL       string
	LogLevel        string
	Serverless      bool
	EnvFileLoaded   bool
}

func LoadConfig() (*Config, error) {
	loaded := godotenv.Load() == nil

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "15s"))
	if err != nil {
		return nil, errors.Wrap(err, "API_TIMEOUT")
	}

	pointsPerBlock, err := strconv.ParseInt(getEnv("POINTS_PER_BLOCK", "100"), 10, 64)
	if err != nil || pointsPerBlock <= 0 {
		return nil, errors.Errorf("POINTS_PER_BLOCK must be a positive integer, got %q", os.Getenv("POINTS_PER_BLOCK"))
	}

	valuePerBlock, err := decimal.NewFromString(getEnv("VALUE_PER_BLOCK", "5"))
	if err != nil || !valuePerBlock.IsPositive() {
		return nil, errors.Errorf("VALUE_PER_BLOCK must be a positive amount, got %q", os.Getenv("VALUE_PER_BLOCK"))
	}

	displayDecimals, err := strconv.ParseInt(getEnv("DISPLAY_DECIMALS", "2"), 10, 32)
	if err != nil || displayDecimals < 0 {
		return nil, errors.Errorf("DISPLAY_DECIMALS must be >= 0, got %q", os.Getenv("DISPLAY_DECIMALS"))
	}

	serverless := os.Getenv("VERCEL") != ""
	defaultSQLitePath := "./data/cart.db"
	if serverless {
		defaultSQLitePath = "/tmp/shop-cart/cart.db"
	}

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("APP_PORT", getEnv("PORT", "8082")),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:5000"),
		APITimeout:      timeout,
		CartCache:       getEnv("CART_CACHE", CacheSQLite),
		SQLitePath:      getEnv("SQLITE_PATH", defaultSQLitePath),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "shop_cart"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		PointsPerBlock:  pointsPerBlock,
		ValuePerBlock:   valuePerBlock,
		DisplayDecimals: int32(displayDecimals),
		OriginURL:       os.Getenv("ORIGIN_URL"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Serverless:      serverless,
		EnvFileLoaded:   loaded,
	}

	switch cfg.CartCache {
	case CacheSQLite, CacheRedis, CachePostgres, CacheMemory:
	default:
		return nil, errors.Errorf("CART_CACHE must be one of sqlite, redis, postgres, memory, got %q", cfg.CartCache)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) PointsRate() models.PointsRate {
	return models.PointsRate{PointsPerBlock: c.PointsPerBlock, ValuePerBlock: c.ValuePerBlock}
}

// AllowedOrigins splits ORIGIN_URL, which may list several comma separated
// frontends.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.OriginURL, ",") {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *Config) Redis() models.RedisOptions {
	return models.RedisOptions{URL: c.RedisURL, Addr: c.RedisAddr, Password: c.RedisPassword}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
