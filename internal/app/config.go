package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DSN            string
	Port           string
	SessionKey     string
	PriceMode      string
	CatalogBackend string
	SeedCatalog    bool
	CartTTL        time.Duration
}

// ConfigFromEnv lee la configuración del entorno. DB_DSN tiene prioridad; si
// falta se arma con DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME y
// DB_SSLMODE.
func ConfigFromEnv() Config {
	c := Config{
		DSN:            strings.TrimSpace(os.Getenv("DB_DSN")),
		Port:           envOr("PORT", "8080"),
		SessionKey:     os.Getenv("SESSION_KEY"),
		PriceMode:      os.Getenv("PRICE_MODE"),
		CatalogBackend: strings.ToLower(envOr("CATALOG_BACKEND", "postgres")),
		CartTTL:        7 * 24 * time.Hour,
	}
	if c.SessionKey == "" {
		c.SessionKey = os.Getenv("SECRET_KEY")
	}
	c.SeedCatalog, _ = strconv.ParseBool(os.Getenv("SEED_CATALOG"))
	if d, err := time.ParseDuration(os.Getenv("CART_TTL")); err == nil {
		c.CartTTL = d
	}
	if c.DSN == "" {
		user := envOr("DB_USER", envOr("POSTGRES_USER", "postgres"))
		pass := envOr("DB_PASSWORD", envOr("POSTGRES_PASSWORD", "postgres"))
		name := envOr("DB_NAME", envOr("POSTGRES_DB", "nutristore"))
		c.DSN = "host=" + envOr("DB_HOST", "localhost") + " user=" + user + " password=" + pass +
			" dbname=" + name + " port=" + envOr("DB_PORT", "5432") + " sslmode=" + envOr("DB_SSLMODE", "disable")
	}
	return c
}

func (c Config) Memory() bool { return c.CatalogBackend == "memory" }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
