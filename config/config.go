package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the process configuration read from the environment
type Config struct {
	Env               string
	Port              string
	MongoURI          string
	DBName            string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	JWTSecret         string
	LogLevel          string
	PublicBaseURL     string
	ReferralPrefix    string
	ReferralCookieTTL time.Duration
	TreeCacheTTL      time.Duration
	CORSOrigins       []string
}

// Load reads the configuration. Call godotenv.Load first if a .env file is used.
func Load() *Config {
	cfg := &Config{
		Env:               os.Getenv("ENV"),
		Port:              getEnv("PORT", "8080"),
		MongoURI:          os.Getenv("MONGO_URI"),
		DBName:            getEnv("DB_NAME", "skillnera"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		ReferralPrefix:    getEnv("REFERRAL_CODE_PREFIX", "TN"),
		ReferralCookieTTL: getDuration("REFERRAL_COOKIE_TTL", 30*24*time.Hour),
		TreeCacheTTL:      getDuration("TREE_CACHE_TTL", 30*time.Second),
	}

	// check both MONGO_URI and MONGODB_URI
	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGODB_URI")
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = db
		}
	}

	return cfg
}

// IsDevelopment reports whether ENV is a development value
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
