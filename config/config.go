package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	PostgresURL    string
	MongoURI       string
	StoreBackend   string
	MaxRooms       int
	RoomRetention  time.Duration
	SweepInterval  time.Duration
	LogLevel       string
	LogPretty      bool
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the process environment, after filling it from a .env file
// in the working directory when one exists.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

func FromLookup(lookup LookupFunc) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Port:         get("PORT", "3000"),
		PostgresURL:  get("POSTGRES_URL", ""),
		MongoURI:     get("MONGO_URI", ""),
		StoreBackend: strings.ToLower(get("STORE_BACKEND", "")),
		LogLevel:     get("LOG_LEVEL", "info"),
	}

	for _, origin := range strings.Split(get("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.MaxRooms, err = strconv.Atoi(get("MAX_ROOMS", "1000")); err != nil || cfg.MaxRooms <= 0 {
		return Config{}, fmt.Errorf("invalid MAX_ROOMS %q", get("MAX_ROOMS", ""))
	}
	if cfg.RoomRetention, err = time.ParseDuration(get("ROOM_RETENTION", "10m")); err != nil {
		return Config{}, fmt.Errorf("invalid ROOM_RETENTION: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(get("SWEEP_INTERVAL", "1m")); err != nil || cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("invalid SWEEP_INTERVAL %q", get("SWEEP_INTERVAL", ""))
	}
	if cfg.LogPretty, err = strconv.ParseBool(get("LOG_PRETTY", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_PRETTY: %w", err)
	}

	if cfg.StoreBackend == "" {
		switch {
		case cfg.PostgresURL != "":
			cfg.StoreBackend = "postgres"
		case cfg.MongoURI != "":
			cfg.StoreBackend = "mongo"
		}
	}
	switch cfg.StoreBackend {
	case "", "postgres", "mongo":
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "postgres" && cfg.PostgresURL == "" {
		return Config{}, fmt.Errorf("STORE_BACKEND=postgres requires POSTGRES_URL")
	}
	if cfg.StoreBackend == "mongo" && cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("STORE_BACKEND=mongo requires MONGO_URI")
	}

	return cfg, nil
}
