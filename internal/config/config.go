package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GameServer holds all configuration for the game server.
type GameServer struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Snapshot cache (optional; empty addr disables it)
	Cache CacheConfig `yaml:"cache"`

	// Gameplay loops
	RegenIntervalMs     int `yaml:"regen_interval_ms"`     // regen tick period (default: 1000)
	AutosaveIntervalSec int `yaml:"autosave_interval_sec"` // dirty-entity flush period (default: 30)

	// Entities spawned at boot and despawned at shutdown. Session-driven
	// entities are spawned by the connection layer instead.
	BootEntities []string `yaml:"boot_entities"`
}

// RegenInterval returns the regen tick period as a duration.
func (g GameServer) RegenInterval() time.Duration {
	return time.Duration(g.RegenIntervalMs) * time.Millisecond
}

// AutosaveInterval returns the autosave period as a duration.
func (g GameServer) AutosaveInterval() time.Duration {
	return time.Duration(g.AutosaveIntervalSec) * time.Second
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// CacheConfig holds Redis snapshot-cache parameters.
type CacheConfig struct {
	Addr   string `yaml:"addr"`    // host:port; empty disables the cache
	TTLSec int    `yaml:"ttl_sec"` // snapshot expiry (default: 600)
}

// TTL returns the snapshot expiry as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// DefaultGameServer returns GameServer config with sensible defaults.
func DefaultGameServer() GameServer {
	return GameServer{
		LogLevel:            "info",
		RegenIntervalMs:     1000,
		AutosaveIntervalSec: 30,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "heavensworn",
			Password: "heavensworn",
			DBName:   "heavensworn",
			SSLMode:  "disable",
		},
		Cache: CacheConfig{
			TTLSec: 600,
		},
	}
}

// LoadGameServer loads game server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGameServer(path string) (GameServer, error) {
	cfg := DefaultGameServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
