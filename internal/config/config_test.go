package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://blog@localhost/blog")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 60*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, RegistrationAdmin, cfg.RegistrationMode)
	assert.False(t, cfg.UniqueUsernames)
	assert.False(t, cfg.AllowSelfRead)
	assert.Equal(t, "gmail.com", cfg.EmailDomain)
	assert.Equal(t, 5*time.Second, cfg.GoogleTimeout)
	assert.Equal(t, "blog_events", cfg.KafkaTopic)
	assert.Equal(t, "posts", cfg.ESIndex)
	assert.Equal(t, 8080, cfg.ServerPort)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("TOKEN_TTL_MINUTES", "15")
	t.Setenv("REGISTRATION_MODE", "PUBLIC")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, RegistrationPublic, cfg.RegistrationMode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}},
		{name: "missing database", env: map[string]string{"DATABASE_URL": ""}},
		{name: "rsa algorithm", env: map[string]string{"JWT_ALGORITHM": "RS256"}},
		{name: "zero ttl", env: map[string]string{"TOKEN_TTL_MINUTES": "0"}},
		{name: "bad registration", env: map[string]string{"REGISTRATION_MODE": "open"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}
