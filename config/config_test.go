package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "LOG_LEVEL", "APP_ENV", "CORS_ORIGINS", "POLICY_FILE", "RUN_CONCURRENCY"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "payroll.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 4, cfg.RunConcurrency)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/p.db")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("POLICY_FILE", "policies/fy2025.yaml")
	t.Setenv("RUN_CONCURRENCY", "8")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/p.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "policies/fy2025.yaml", cfg.PolicyFile)
	assert.Equal(t, 8, cfg.RunConcurrency)
}

func TestFromEnv_BadNumbers(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("RUN_CONCURRENCY", "many")

	_, err := FromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "RUN_CONCURRENCY")
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := &Config{Port: 0, DBPath: "", LogLevel: "loud", Env: "staging", RunConcurrency: 0}

	err := cfg.Validate()

	require.Error(t, err)
	for _, want := range []string{"port", "db path", "log level", "APP_ENV", "concurrency"} {
		assert.Contains(t, err.Error(), want)
	}
}
