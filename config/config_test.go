package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "demo-procure")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "https://api.line.me/v2/bot/message/push", cfg.Line.PushEndpoint)
	assert.Equal(t, 10*time.Second, cfg.Line.Timeout)
	assert.Equal(t, "https://api.line.me/oauth2/v2.1/certs", cfg.Line.JWKSURL)
	assert.Equal(t, "@every 15s", cfg.Outbox.Schedule)
	assert.Equal(t, 8, cfg.Outbox.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Outbox.BaseBackoff)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FIREBASE_PROJECT_ID", "demo-procure")
	t.Setenv("PORT", "9090")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Outbox.MaxAttempts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Firebase: FirebaseConfig{ProjectID: "demo"},
			Redis:    RedisConfig{Addr: "localhost:6379"},
			Outbox:   OutboxConfig{MaxAttempts: 1},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing firebase settings", func(t *testing.T) {
		cfg := valid()
		cfg.Firebase.ProjectID = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("id token required without channel", func(t *testing.T) {
		cfg := valid()
		cfg.Line.RequireIDToken = true
		assert.Error(t, cfg.Validate())

		cfg.Line.ChannelID = "1650000000"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("outbox attempts must be positive", func(t *testing.T) {
		cfg := valid()
		cfg.Outbox.MaxAttempts = 0
		assert.Error(t, cfg.Validate())
	})
}
