/*
Package config loads server settings from the environment.

SOURCES (later wins):
  1. Built-in defaults
  2. .env file in the working directory (optional)
  3. Process environment
  4. Command-line flags (applied by cmd/server)

VARIABLES:
  PORT             HTTP port (8080)
  DB_PATH          SQLite database path (payroll.db)
  LOG_LEVEL        debug | info | warn | error (info)
  APP_ENV          development | production (development)
  CORS_ORIGINS     Comma-separated allowed origins (*)
  POLICY_FILE      Optional YAML/JSON tax policy registered at startup
  RUN_CONCURRENCY  Worker limit for payroll runs (4)
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds application configuration.
type Config struct {
	Port           int
	DBPath         string
	LogLevel       string
	Env            string
	CORSOrigins    []string
	PolicyFile     string
	RunConcurrency int
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:           8080,
		DBPath:         "payroll.db",
		LogLevel:       "info",
		Env:            EnvDevelopment,
		CORSOrigins:    []string{"*"},
		RunConcurrency: 4,
	}
}

// Load reads .env (if present) and the environment over the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the process environment over the defaults.
func FromEnv() (*Config, error) {
	cfg := Default()
	var errs []error

	if v := getEnv("PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid PORT: %w", err))
		}
		cfg.Port = port
	}
	if v := getEnv("RUN_CONCURRENCY", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid RUN_CONCURRENCY: %w", err))
		}
		cfg.RunConcurrency = n
	}

	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.Env = strings.ToLower(getEnv("APP_ENV", cfg.Env))
	cfg.PolicyFile = getEnv("POLICY_FILE", "")
	if origins := getEnvSlice("CORS_ORIGINS"); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("unknown APP_ENV %q", c.Env))
	}
	if c.RunConcurrency < 1 {
		errs = append(errs, fmt.Errorf("run concurrency must be positive, got %d", c.RunConcurrency))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string) []string {
	value := getEnv(key, "")
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
