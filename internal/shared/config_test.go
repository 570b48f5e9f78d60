package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"reviewhub/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	c := shared.Load()
	assert.Equal(t, "prod", c.AppEnv)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "mysql", c.StoreDriver)
	assert.Equal(t, time.Duration(0), c.StatsCacheTTL)
	assert.Equal(t, 720*time.Hour, c.JWTTTL)
	assert.Equal(t, []string{"*"}, c.CORSOrigins)
	assert.Equal(t, 300, c.RateLimit)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.False(t, c.Blob.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("STATS_CACHE_TTL_SECONDS", "60")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("BLOB_CLOUD_NAME", "demo")
	t.Setenv("BLOB_API_KEY", "k")
	t.Setenv("BLOB_API_SECRET", "s")

	c := shared.Load()
	assert.Equal(t, "memory", c.StoreDriver)
	assert.Equal(t, time.Minute, c.StatsCacheTTL)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, c.CORSOrigins)
	assert.True(t, c.Blob.Enabled())
}
