package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	DBDSN        string
	RedisURL     string
	AMQPURL      string
	LogFile      string
	TemplatesDir string
	StaticDir    string

	AdminKey       string
	AdminKeyBcrypt string

	OrdersStrict     bool
	RateLimitEnabled bool
	RateLimitMax     int
	RateLimitWindow  time.Duration
	SweepInterval    time.Duration
}

func Load() Config {
	cfg := Config{
		Port:         env("PORT", "8080"),
		DBDSN:        env("DB_DSN", "glowcart.db"), // sqlite file in project root
		RedisURL:     os.Getenv("REDIS_URL"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		LogFile:      env("LOG_FILE", "./glowcart.log"),
		TemplatesDir: env("TEMPLATES_DIR", "./web/templates"),
		StaticDir:    env("STATIC_DIR", "./web/static"),

		AdminKey:       os.Getenv("ADMIN_KEY"),
		AdminKeyBcrypt: os.Getenv("ADMIN_KEY_BCRYPT"),

		OrdersStrict:     envBool("ORDERS_STRICT", true),
		RateLimitEnabled: envBool("RATE_LIMIT_ENABLED", true),
		RateLimitMax:     envInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:  envDuration("RATE_LIMIT_WINDOW", time.Minute),
		SweepInterval:    envDuration("ORDER_SWEEP_INTERVAL", 10*time.Minute),
	}
	store := "sql"
	if cfg.RedisURL != "" {
		store = "redis"
	}
	// never print the admin secrets
	log.Printf("[config] PORT=%s STORE=%s DB_DSN=%s ORDERS_STRICT=%t RATE_LIMIT=%t(%d/%s) LOG_FILE=%s admin_key_set=%t",
		cfg.Port, store, cfg.DBDSN, cfg.OrdersStrict, cfg.RateLimitEnabled, cfg.RateLimitMax, cfg.RateLimitWindow,
		cfg.LogFile, cfg.AdminKey != "" || cfg.AdminKeyBcrypt != "")
	return cfg
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// envDuration accepts Go durations ("90s") or plain seconds ("90"). Zero is allowed.
func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
