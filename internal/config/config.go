package config

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress  string
	DatabaseURI string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	StaffPasswordHash string
	AllowedOrigins    []string

	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string
	KafkaBrokers     []string
	KafkaTopic       string
	AlertInterval    time.Duration
	Currency         string
}

// New reads flags, then lets environment variables (including those from an
// optional .env file) override them. An empty DATABASE_URI selects the
// in-memory store, an empty REDIS_ADDR keeps sessions in process.
func New() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}
	return parse(flag.CommandLine, os.Args[1:])
}

func parse(fs *flag.FlagSet, args []string) *Config {
	cfg := &Config{}

	fs.StringVar(&cfg.RunAddress, "a", "localhost:8080", "server address and port")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	fs.StringVar(&cfg.RedisAddr, "r", "", "redis address")
	fs.StringVar(&cfg.JWTSecret, "s", "super-secret-jwt-key", "jwt signing key")
	fs.DurationVar(&cfg.AlertInterval, "i", 5*time.Second, "order alert poll interval")
	_ = fs.Parse(args)

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.DatabaseURI = getEnv("DATABASE_URI", cfg.DatabaseURI)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.SessionTTL = getDuration("SESSION_TTL", 7*24*time.Hour)

	cfg.StaffPasswordHash = getEnv("STAFF_PASSWORD_HASH", "")
	cfg.AllowedOrigins = getList("ALLOWED_ORIGINS", []string{"*"})

	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")
	cfg.TelegramAPIURL = getEnv("TELEGRAM_API_URL", "https://api.telegram.org")
	cfg.KafkaBrokers = getList("KAFKA_BROKERS", nil)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "order.placed")
	cfg.AlertInterval = getDuration("ALERT_INTERVAL", cfg.AlertInterval)
	cfg.Currency = getEnv("CURRENCY", "YER")

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("ignoring invalid duration", "key", key, "value", raw)
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
