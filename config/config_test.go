package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("MEDUSA_BACKEND_URL", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:9000", cfg.MedusaBackendURL)
	assert.Equal(t, 3, cfg.MedusaMaxRetries)
	assert.Equal(t, "fittinglab-media", cfg.GCSBucket)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("MEDUSA_TIMEOUT", "3s")
	t.Setenv("MEDUSA_MAX_RETRIES", "not-a-number")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()

	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 3*time.Second, cfg.MedusaTimeout)
	assert.Equal(t, 3, cfg.MedusaMaxRetries, "invalid ints fall back to the default")
	assert.True(t, cfg.CookieSecure)
}

func TestCORSOriginsSkipsBlanks(t *testing.T) {
	cfg := &Config{StoreCORS: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "db", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/db?sslmode=disable", cfg.PostgresDSN())
}

func TestValidateRejectsDevSecretsOutsideDevelopment(t *testing.T) {
	cfg := &Config{Env: "development", JWTAccessSecret: devAccessSecret, JWTRefreshSecret: devRefreshSecret}
	assert.NoError(t, cfg.Validate())

	cfg.Env = "production"
	assert.Error(t, cfg.Validate())

	cfg.JWTAccessSecret = "a-long-access-secret"
	assert.Error(t, cfg.Validate(), "refresh secret still the default")

	cfg.JWTRefreshSecret = "a-long-access-secret"
	assert.Error(t, cfg.Validate(), "secrets must differ")

	cfg.JWTRefreshSecret = "a-long-refresh-secret"
	assert.NoError(t, cfg.Validate())
}

func TestTrustedProxyList(t *testing.T) {
	assert.Nil(t, (&Config{}).TrustedProxyList())
	cfg := &Config{TrustedProxies: "10.0.0.0/8, 127.0.0.1"}
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxyList())
}
