package config

import (
	"crypto/ecdsa"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mkurbatov/jobhub/internal/models"
)

type Config struct {
	LOG_LEVEL   string
	SERVER_PORT int

	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	REDIS_ADDR     string
	REDIS_DB       int
	REDIS_PASSWORD string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	KAFKA_BROKERS []string

	JWT_PRIVATE_KEY_PATH string
	JWT_PUBLIC_KEY_PATH  string
	JWT_ISSUER           string
	JWT_METHOD           string // "cookies", "headers" or "all"
	JWT_HEADER_PREFIX    string
	JWT_ACCESS_HEADER    string
	JWT_REFRESH_HEADER   string

	ACCESS_TOKEN_TTL  time.Duration
	REFRESH_TOKEN_TTL time.Duration

	COOKIE_DOMAIN  string
	SECURE_COOKIES bool

	HH_URL   string
	HH_TOKEN string

	COLLECT_INTERVAL time.Duration
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		LOG_LEVEL:   EnvDefault("LOG_LEVEL", "info"),
		SERVER_PORT: EnvIntDefault("SERVER_PORT", 8080),

		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_NAME:     os.Getenv("DB_NAME"),

		REDIS_ADDR:     os.Getenv("REDIS_ADDR"),
		REDIS_DB:       EnvIntDefault("REDIS_DB", 0),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		KAFKA_BROKERS: CSV(os.Getenv("KAFKA_BROKERS")),

		JWT_PRIVATE_KEY_PATH: EnvDefault("JWT_PRIVATE_KEY_PATH", "./secrets/ec_private.pem"),
		JWT_PUBLIC_KEY_PATH:  EnvDefault("JWT_PUBLIC_KEY_PATH", "./secrets/ec_public.pem"),
		JWT_ISSUER:           EnvDefault("JWT_ISSUER", "jobhub"),
		JWT_METHOD:           EnvDefault("JWT_METHOD", "all"),
		JWT_HEADER_PREFIX:    EnvDefault("JWT_HEADER_PREFIX", "Bearer"),
		JWT_ACCESS_HEADER:    EnvDefault("JWT_ACCESS_HEADER", "Authorization"),
		JWT_REFRESH_HEADER:   EnvDefault("JWT_REFRESH_HEADER", "X-Refresh-Token"),

		ACCESS_TOKEN_TTL:  EnvSecondsDefault("ACCESS_TOKEN_TTL_SECONDS", 15*60),
		REFRESH_TOKEN_TTL: EnvSecondsDefault("REFRESH_TOKEN_TTL_SECONDS", 30*24*60*60),

		COOKIE_DOMAIN:  os.Getenv("COOKIE_DOMAIN"),
		SECURE_COOKIES: EnvBoolDefault("SECURE_COOKIES", true),

		HH_URL:   EnvDefault("HH_URL", "https://api.hh.ru"),
		HH_TOKEN: os.Getenv("HH_TOKEN"),

		COLLECT_INTERVAL: EnvSecondsDefault("COLLECT_INTERVAL_SECONDS", 0),
	}

	return config, nil
}

// LoadECKeys reads the PEM key pair used for signing and verifying tokens.
func (c *Config) LoadECKeys() (*ecdsa.PrivateKey, *ecdsa.PublicKey, error) {
	privPEM, err := os.ReadFile(c.JWT_PRIVATE_KEY_PATH)
	if err != nil {
		return nil, nil, fmt.Errorf("read private key: %w", err)
	}
	private, err := jwt.ParseECPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("parse private key: %w", err)
	}

	pubPEM, err := os.ReadFile(c.JWT_PUBLIC_KEY_PATH)
	if err != nil {
		return nil, nil, fmt.Errorf("read public key: %w", err)
	}
	public, err := jwt.ParseECPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("parse public key: %w", err)
	}

	return private, public, nil
}

func InitDB(c *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Vacancy{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvSecondsDefault(key string, def int) time.Duration {
	return time.Duration(EnvIntDefault(key, def)) * time.Second
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}
