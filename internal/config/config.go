package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr     string
	TLSCert        string
	TLSKey         string
	DatabaseDriver string
	DatabaseURL    string
	TokenKey       []byte
	StaticDir      string
	RateLimitRPS   float64
	RateLimitBurst int
	Debug          bool
}

// Load reads an optional .env file and then the environment. TOKEN_KEY is
// the only required variable.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		ListenAddr:     getenv("LISTEN_ADDR", ":8443"),
		TLSCert:        os.Getenv("TLS_CERT"),
		TLSKey:         os.Getenv("TLS_KEY"),
		DatabaseDriver: getenv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StaticDir:      getenv("STATIC_DIR", "./static/main"),
	}

	key := os.Getenv("TOKEN_KEY")
	if key == "" {
		return Config{}, errors.New("TOKEN_KEY environment variable is not set")
	}
	cfg.TokenKey = []byte(key)

	var err error
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "1"), 64); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getenv("RATE_LIMIT_BURST", "3")); err != nil {
		return Config{}, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	if cfg.Debug, err = strconv.ParseBool(getenv("DEBUG", "false")); err != nil {
		return Config{}, fmt.Errorf("DEBUG: %w", err)
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "user=postgres dbname=postgres password=password sslmode=disable"
		}
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "geosuite.db"
		}
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	return cfg, nil
}

// TLS reports whether both certificate and key are configured.
func (c Config) TLS() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
