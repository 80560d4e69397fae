package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned by Load when no JWT signing secret is configured.
var ErrMissingSecret = errors.New("JWT_SECRET is required")

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	AppEnv         string
	LogLevel       string
	DatabasePath   string
	UserStore      string // "sqlite" or "mongo"
	MongoURI       string
	MongoDatabase  string
	RedisURL       string // empty disables the identity cache
	UserCacheTTL   time.Duration
	JWTSecret      string
	JWTExpire      time.Duration
	BcryptCost     int
	AllowedOrigins []string
	EventRetention time.Duration
	EventPruneCron string
}

// fileConfig mirrors Config for the optional YAML overlay. Durations are kept
// as strings so they share the env parser.
type fileConfig struct {
	Port           string   `yaml:"port"`
	AppEnv         string   `yaml:"app_env"`
	LogLevel       string   `yaml:"log_level"`
	DatabasePath   string   `yaml:"database_path"`
	UserStore      string   `yaml:"user_store"`
	MongoURI       string   `yaml:"mongo_uri"`
	MongoDatabase  string   `yaml:"mongo_database"`
	RedisURL       string   `yaml:"redis_url"`
	UserCacheTTL   string   `yaml:"user_cache_ttl"`
	JWTSecret      string   `yaml:"jwt_secret"`
	JWTExpire      string   `yaml:"jwt_expire"`
	BcryptCost     string   `yaml:"bcrypt_cost"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	EventRetention string   `yaml:"event_retention"`
	EventPruneCron string   `yaml:"event_prune_cron"`
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables, in that order, falling back to defaults.
func Load() (*Config, error) {
	file := fileConfig{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	port, err := strconv.Atoi(getEnv("PORT", file.Port, "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	cacheTTL, err := parsePositiveDuration("USER_CACHE_TTL", getEnv("USER_CACHE_TTL", file.UserCacheTTL, "30s"))
	if err != nil {
		return nil, err
	}

	expire, err := parsePositiveDuration("JWT_EXPIRE", getEnv("JWT_EXPIRE", file.JWTExpire, "24h"))
	if err != nil {
		return nil, err
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", file.BcryptCost, "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	retention, err := parsePositiveDuration("EVENT_RETENTION", getEnv("EVENT_RETENTION", file.EventRetention, "720h"))
	if err != nil {
		return nil, err
	}

	origins := parseCSV(os.Getenv("ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = file.AllowedOrigins
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	cfg := &Config{
		ServerPort:     port,
		AppEnv:         getEnv("APP_ENV", file.AppEnv, "development"),
		LogLevel:       getEnv("LOG_LEVEL", file.LogLevel, "info"),
		DatabasePath:   getEnv("DATABASE_PATH", file.DatabasePath, "./blog.db"),
		UserStore:      strings.ToLower(getEnv("USER_STORE", file.UserStore, "sqlite")),
		MongoURI:       getEnv("MONGO_URI", file.MongoURI, "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", file.MongoDatabase, "blog"),
		RedisURL:       getEnv("REDIS_URL", file.RedisURL, ""),
		UserCacheTTL:   cacheTTL,
		JWTSecret:      getEnv("JWT_SECRET", file.JWTSecret, ""),
		JWTExpire:      expire,
		BcryptCost:     cost,
		AllowedOrigins: origins,
		EventRetention: retention,
		EventPruneCron: getEnv("EVENT_PRUNE_CRON", file.EventPruneCron, "0 3 * * *"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.UserStore != "sqlite" && cfg.UserStore != "mongo" {
		return nil, fmt.Errorf("invalid USER_STORE %q: want sqlite or mongo", cfg.UserStore)
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable, then the file value, then a default.
func getEnv(key, fileValue, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

// parseDuration accepts Go durations plus a whole-day form such as "30d".
func parseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// parsePositiveDuration parses s and rejects zero or negative values.
func parsePositiveDuration(key, s string) (time.Duration, error) {
	d, err := parseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %q", key, s)
	}
	return d, nil
}

func parseCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
