// Copyright (c) 2026 Inkwell. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/inkwell/internal/platform/config"
)

// unset clears a variable for the duration of the test.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unset(t, "SERVER_PORT", "ENVIRONMENT", "DEBUG", "MIGRATION_PATH", "REDIS_URL",
		"JWT_PRIVATE_KEY_PATH", "PURCHASE_CACHE_TTL", "CASCADE_TRANSACTIONAL", "EXTRA_ORIGINS")
	t.Setenv("DATABASE_URL", "postgres://inkwell@localhost/inkwell")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "./data/migrations", cfg.MigrationPath)
	assert.Equal(t, 10*time.Minute, cfg.PurchaseCacheTTL)
	assert.True(t, cfg.CascadeTransactional)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.CacheEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://inkwell@localhost/inkwell")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PURCHASE_CACHE_TTL", "90s")
	t.Setenv("CASCADE_TRANSACTIONAL", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 90*time.Second, cfg.PurchaseCacheTTL)
	assert.False(t, cfg.CascadeTransactional)
}

func TestLoad_MissingRequired(t *testing.T) {
	unset(t, "DATABASE_URL")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/keys/public.pem")

	_, err := config.Load()
	assert.Error(t, err)
}
