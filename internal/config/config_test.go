package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/peo")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "peo_admin", cfg.JWT.Issuer)
	assert.Equal(t, 720, cfg.JWT.ExpireMinutes)
	assert.Equal(t, 60, cfg.Cache.TTLSec)
	assert.Equal(t, 20, cfg.Upload.MaxMB)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.SessionSweeper.Enabled)
	assert.True(t, cfg.WS.Enabled)
	assert.False(t, cfg.Migrate)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing dsn", map[string]string{"MYSQL_DSN": ""}, "MYSQL_DSN"},
		{"missing secret", map[string]string{"JWT_SECRET": ""}, "JWT_SECRET"},
		{"zero expiry", map[string]string{"JWT_EXPIRE_MINUTES": "0"}, "JWT_EXPIRE_MINUTES"},
		{"negative upload limit", map[string]string{"UPLOAD_MAX_MB": "-1"}, "UPLOAD_MAX_MB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_PASS", "secret")
	t.Setenv("REDIS_DB", "5")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("UPLOAD_MAX_MB", "50")
	t.Setenv("SESSION_SWEEPER_ENABLED", "0")
	t.Setenv("MIGRATE", "true")
	t.Setenv("CACHE_TTL_SEC", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "redis.example.com:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 5, cfg.Redis.DB)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 50, cfg.Upload.MaxMB)
	assert.False(t, cfg.SessionSweeper.Enabled)
	assert.True(t, cfg.Migrate)
	assert.Equal(t, 60, cfg.Cache.TTLSec, "unparsable values fall back to the default")
}

func TestLoadFromINI_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peo.ini")
	content := `[mysql]
dsn = ini:dsn@tcp(db:3306)/peo

[jwt]
secret = ini-secret
expire_minutes = 60

[http]
addr = :7070

[upload]
dir = /srv/peo/uploads

[session_sweeper]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("HTTP_ADDR", ":6060")

	cfg, err := LoadFromINI(path)
	require.NoError(t, err)
	assert.Equal(t, "ini:dsn@tcp(db:3306)/peo", cfg.MySQL.DSN)
	assert.Equal(t, "ini-secret", cfg.JWT.Secret)
	assert.Equal(t, 60, cfg.JWT.ExpireMinutes)
	assert.Equal(t, "/srv/peo/uploads", cfg.Upload.Dir)
	assert.Equal(t, ":6060", cfg.HTTPAddr, "env wins over INI")
	assert.False(t, cfg.SessionSweeper.Enabled)
}

func TestLoadFromINI_MissingFile(t *testing.T) {
	_, err := LoadFromINI(filepath.Join(t.TempDir(), "absent.ini"))
	assert.Error(t, err)
}
