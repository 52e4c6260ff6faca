package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	DB     DatabaseConfig
	JWT    JWTConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Mpesa  MpesaConfig
	SMTP   SMTPConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	DSN string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// HoldTTL bounds how long a room lock is held around a booking insert.
	HoldTTL time.Duration
}

type KafkaConfig struct {
	Brokers            []string
	NotificationsTopic string
	GroupID            string
}

type MpesaConfig struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
}

type SMTPConfig struct {
	Host string
	Port string
	From string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	holdSeconds, _ := strconv.Atoi(getEnv("ROOM_HOLD_TTL_SECONDS", "30"))
	jwtTTL, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		jwtTTL = 24 * time.Hour
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		DB: DatabaseConfig{
			DSN: getEnv("DATABASE_URL", "resort.db"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-jwt-secret"),
			TTL:    jwtTTL,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			HoldTTL:  time.Duration(holdSeconds) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:            splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			NotificationsTopic: getEnv("KAFKA_NOTIFICATIONS_TOPIC", "booking-notifications"),
			GroupID:            getEnv("KAFKA_CONSUMER_GROUP", "resort-notifier"),
		},
		Mpesa: MpesaConfig{
			BaseURL:        getEnv("MPESA_BASE_URL", "https://sandbox.safaricom.co.ke"),
			ConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
			ConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
			ShortCode:      getEnv("MPESA_SHORTCODE", "174379"),
			Passkey:        os.Getenv("MPESA_PASSKEY"),
			CallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnv("SMTP_PORT", "587"),
			From: getEnv("SMTP_FROM", "bookings@resort.local"),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
