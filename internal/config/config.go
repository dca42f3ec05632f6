package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates the service's configuration.
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Rooms  RoomConfig
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

// RedisConfig describes the backing store connection.
type RedisConfig struct {
	Addr string
}

// RoomConfig carries the session/message lifetimes and the sweep cadence.
type RoomConfig struct {
	SessionTTL    time.Duration
	MessageTTL    time.Duration
	SweepInterval time.Duration
}

// Sweeps reclaim storage only; reads filter on expiry themselves. The
// cap keeps reclamation latency inside the documented bound.
const maxSweepInterval = 30 * time.Second

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	rooms, err := loadRoomConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Redis:  RedisConfig{Addr: getEnvOrDefault("REDIS_ADDR", "localhost:6379")},
		Rooms:  rooms,
	}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadRoomConfig() (RoomConfig, error) {
	sessionTTL, err := parseDurationEnv("SESSION_TTL", 5*time.Minute)
	if err != nil {
		return RoomConfig{}, err
	}

	messageTTL, err := parseDurationEnv("MESSAGE_TTL", 5*time.Minute)
	if err != nil {
		return RoomConfig{}, err
	}

	sweep, err := parseDurationEnv("SWEEP_INTERVAL", 15*time.Second)
	if err != nil {
		return RoomConfig{}, err
	}
	if sweep > maxSweepInterval {
		return RoomConfig{}, fmt.Errorf("SWEEP_INTERVAL %s exceeds the %s bound", sweep, maxSweepInterval)
	}

	return RoomConfig{
		SessionTTL:    sessionTTL,
		MessageTTL:    messageTTL,
		SweepInterval: sweep,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}
