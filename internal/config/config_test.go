package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "caseflow", cfg.Database.DBName)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 2, cfg.Workflow.EventWorkers)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Empty(t, cfg.Auth.TokenSecret)
	assert.False(t, IsProduction(cfg))
}

func TestLoadFromFile(t *testing.T) {
	content := `
env: production
server:
  host: 127.0.0.1
  port: 9090
database:
  dbname: caseflow_prod
auth:
  token_secret: super-secret
  roles:
    admin:
      members: ["admin-01"]
      permissions: ["workflow:override", "workflow:back"]
workflow:
  event_workers: 4
  webhooks:
    - url: https://hooks.example.com/approval
      method: POST
rate_limit:
  rps: 50
  burst: 100
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, IsProduction(cfg))
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "caseflow_prod", cfg.Database.DBName)
	assert.Equal(t, "super-secret", cfg.Auth.TokenSecret)
	assert.Equal(t, 4, cfg.Workflow.EventWorkers)
	require.Len(t, cfg.Workflow.Webhooks, 1)
	assert.Equal(t, "https://hooks.example.com/approval", cfg.Workflow.Webhooks[0].URL)
	assert.Equal(t, float64(50), cfg.RateLimit.RPS)

	role, ok := cfg.Auth.Roles["admin"]
	require.True(t, ok)
	assert.Equal(t, []string{"admin-01"}, role.Members)
	assert.Contains(t, role.Permissions, "workflow:back")

	// 未覆盖的字段保持默认值
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "18080")
	t.Setenv("APP_DATABASE_DBNAME", "caseflow_test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 18080, cfg.Server.Port)
	assert.Equal(t, "caseflow_test", cfg.Database.DBName)
}

func TestConfigWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("env: development\n"), 0o644))

	cfg := Default()
	watcher := NewConfigWatcher(cfg, path)
	defer watcher.Stop()

	changed := make(chan *Config, 1)
	watcher.OnConfigChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	require.NoError(t, watcher.Start())
	assert.Equal(t, cfg, watcher.GetConfig())
}
