package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds every setting the API reads from the environment.
type Config struct {
	Port         string
	DatabaseURL  string
	Storage      string
	JWTSecret    string
	JWTTTL       time.Duration
	LogJSON      bool
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
	ServiceName  string

	ShippingCents    int64
	RepoTimeout      time.Duration
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
}

// Load reads .env files (if present) into the process environment and builds a Config.
// Variables already set in the environment win over the files.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	c := Config{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Storage:     strings.ToLower(getenv("STORAGE", StoragePostgres)),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		KafkaTopic:  getenv("KAFKA_ORDER_TOPIC", "framecraft.orders"),
		ServiceName: getenv("SERVICE_NAME", "framecraft-api"),
	}
	c.KafkaBrokers = splitCSV(os.Getenv("KAFKA_BROKERS"))

	var err error
	if c.JWTTTL, err = durationEnv("JWT_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if c.RepoTimeout, err = durationEnv("REPO_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if c.RetryBaseDelay, err = durationEnv("RETRY_BASE_DELAY", 100*time.Millisecond); err != nil {
		return Config{}, err
	}
	if c.RetryMaxAttempts, err = intEnv("RETRY_MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	shipping, err := intEnv("SHIPPING_CENTS", 1500)
	if err != nil {
		return Config{}, err
	}
	c.ShippingCents = int64(shipping)
	if c.LogJSON, err = boolEnv("LOG_JSON", true); err != nil {
		return Config{}, err
	}

	return c, c.validate()
}

func (c Config) validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unsupported STORAGE %q", c.Storage)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RetryMaxAttempts < 1 {
		return errors.New("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.ShippingCents < 0 {
		return errors.New("SHIPPING_CENTS must not be negative")
	}
	return nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}

func intEnv(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func boolEnv(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", k, err)
	}
	return b, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
