package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:3001/api", cfg.APIBaseURL)
		assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, "https://www.casperwallet.io/", cfg.WalletInstallURL)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CASPOOL_API_URL", "https://pool.example/api")
		t.Setenv("CASPOOL_HTTP_TIMEOUT", "30s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://pool.example/api", cfg.APIBaseURL)
		assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	})
}
