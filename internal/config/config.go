package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type App struct {
	Env          string
	CacheBackend string
}

type HTTP struct {
	Port string
}

type DB struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type Kafka struct {
	Brokers []string
	Topic   string
	Group   string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// Carrier — доступ к API перевозчика. FromCityCode — код города склада,
// откуда уходят все отправления.
type Carrier struct {
	BaseURL      string
	AuthURL      string
	ClientID     string
	ClientSecret string
	FromCityCode int
	Timeout      time.Duration
}

type Geocoder struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Config struct {
	App      App
	HTTP     HTTP
	DB       DB
	Kafka    Kafka
	Redis    Redis
	Carrier  Carrier
	Geocoder Geocoder
}

func Load() Config {
	// .env удобен локально; в проде переменные приходят из окружения
	_ = godotenv.Load()

	return Config{
		App: App{
			Env:          getenv("APP_ENV", "dev"),
			CacheBackend: getenv("CACHE_BACKEND", "lru"),
		},
		HTTP: HTTP{
			Port: getenv("PORT", "8080"),
		},
		DB: DB{
			Host:     getenv("DB_HOST", "127.0.0.1"),
			Port:     getenv("DB_PORT", "5432"),
			Name:     getenv("DB_NAME", "shop_db"),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
		Kafka: Kafka{
			Brokers: splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getenv("ORDERS_EVENTS_TOPIC", "orders-events"),
			Group:   getenv("ORDERS_CONSUMER_GROUP", "storefront-cache-projector"),
		},
		Redis: Redis{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       atoi(getenv("REDIS_DB", "0")),
			TTL:      parseDuration(getenv("REDIS_TTL", "30m")),
			Prefix:   getenv("REDIS_PREFIX", "pvz:"),
		},
		Carrier: Carrier{
			BaseURL:      getenv("CARRIER_BASE_URL", "https://api.cdek.ru/v2"),
			AuthURL:      getenv("CARRIER_AUTH_URL", "https://api.cdek.ru/v2/oauth/token"),
			ClientID:     getenv("CARRIER_CLIENT_ID", ""),
			ClientSecret: getenv("CARRIER_CLIENT_SECRET", ""),
			FromCityCode: atoi(getenv("CARRIER_FROM_CITY_CODE", "44")),
			Timeout:      parseDuration(getenv("CARRIER_TIMEOUT", "10s")),
		},
		Geocoder: Geocoder{
			BaseURL: getenv("GEOCODER_BASE_URL", "https://suggestions.dadata.ru/suggestions/api/4_1/rs"),
			APIKey:  getenv("GEOCODER_API_KEY", ""),
			Timeout: parseDuration(getenv("GEOCODER_TIMEOUT", "10s")),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
