package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, with a .env file as
// fallback. Everything has a sane default; the server runs with no env at
// all.
func Load() Config {
	_ = godotenv.Load()

	addr := os.Getenv("SCOREBOARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	level := os.Getenv("SCOREBOARD_LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	return Config{
		Addr:     addr,
		LogLevel: level,
		LogJSON:  os.Getenv("SCOREBOARD_LOG_JSON") == "true",
	}
}
