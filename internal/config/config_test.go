package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSecret(t *testing.T) {
	dir := t.TempDir()
	old := secretsDir
	secretsDir = dir
	t.Cleanup(func() { secretsDir = old })

	t.Run("file wins over env", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "stripe_secret_key"), []byte(" sk_file\n"), 0o600))
		t.Setenv("STRIPE_SECRET_KEY", "sk_env")

		v, err := ReadSecret("stripe_secret_key", "STRIPE_SECRET_KEY")
		require.NoError(t, err)
		assert.Equal(t, "sk_file", v)
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("AI_API_KEY", "key")
		v, err := ReadSecret("ai_api_key", "AI_API_KEY")
		require.NoError(t, err)
		assert.Equal(t, "key", v)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := ReadSecret("nothing_here", "FIRSTLOOK_UNSET_VAR")
		assert.Error(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	old := secretsDir
	secretsDir = t.TempDir()
	t.Cleanup(func() { secretsDir = old })

	t.Setenv("FIREBASE_PROJECT_ID", "firstlook-test")
	t.Setenv("AI_API_KEY", "sk-ai")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "firstlook-test", cfg.FirebaseProjectID)
	assert.Equal(t, "sk-ai", cfg.AIAPIKey)
	assert.Equal(t, "sk-ai", cfg.ImageAPIKey, "image key falls back to the text key")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 90*time.Second, cfg.AnalyticsTTL)
	assert.Equal(t, uint(30), cfg.UnlockRateLimit)

	assert.Error(t, cfg.Validate(), "stripe keys are required by the server")
	cfg.StripeSecretKey, cfg.StripeWebhookSecret = "sk", "whsec"
	assert.NoError(t, cfg.Validate())
}
