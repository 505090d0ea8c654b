package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgen-api", cfg.ServiceName)
	assert.Equal(t, 5000, cfg.HTTPPort)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "0 */10 * * * *", cfg.StatsCron)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.StatsEnabled())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("STATS_CRON", "off")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr())
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.False(t, cfg.StatsEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "端口越界", key: "HTTP_PORT", value: "70000"},
		{name: "端口非数字", key: "HTTP_PORT", value: "abc"},
		{name: "超时为 0", key: "SHUTDOWN_TIMEOUT", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://example.test/api/")
	t.Setenv("CLIENT_TIMEOUT", "5s")

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/api", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, ".", cfg.ExportDir)
}
