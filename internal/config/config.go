package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Session     SessionConfig     `toml:"session"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port           int    `toml:"port"`
	FrontendOrigin string `toml:"frontend_origin"`
}

type SessionConfig struct {
	// Secret signs session tokens. It is required; the process refuses to
	// start without it, and rotating it logs every user out.
	Secret string `toml:"secret"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type MaintenanceConfig struct {
	// Schedule is a standard 5-field cron expression.
	Schedule string `toml:"schedule"`
}

// Load reads the TOML config file (if present), applies environment variable
// overrides, and validates required values.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", configPath, err)
		}
	}

	overrideByEnv(cfg)

	if cfg.Session.Secret == "" {
		return nil, errors.New("session secret is required (set SESSION_SECRET)")
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			FrontendOrigin: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Path: "./tasklist.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Maintenance: MaintenanceConfig{
			Schedule: "0 4 * * *",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.Server.Port = getEnvAsInt("PORT", cfg.Server.Port)
	cfg.Server.FrontendOrigin = getEnv("FRONTEND_ORIGIN", cfg.Server.FrontendOrigin)
	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Maintenance.Schedule = getEnv("MAINTENANCE_SCHEDULE", cfg.Maintenance.Schedule)
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
