package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odpem/drims/pkg/authz"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "sqlite", cfg.DB.Type)
	assert.Equal(t, "drims.db", cfg.DB.DSN)
	assert.Equal(t, "header", cfg.Auth.Mode)
	assert.Equal(t, authz.DefaultRolesClaim, cfg.Auth.JWT.RolesClaim)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, 365, cfg.Audit.RetentionDays)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "America/Jamaica", cfg.Display.Timezone)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drims.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9000"
db:
  type: postgres
  dsn: postgres://drims@localhost/drims
  max_open_conns: 3
auth:
  mode: jwt
  jwt:
    issuer: https://sso.odpem.gov.jm/realms/drims
cache:
  ttl: 30s
cors:
  allowed_origins: [https://drims.odpem.gov.jm]
`), 0o600))
	t.Setenv("DRIMS_LISTEN", ":9100")
	t.Setenv("DRIMS_AUDIT_RETENTION_DAYS", "90")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Listen, "environment wins over the file")
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, "postgres", cfg.DB.Type)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)

	dbc := cfg.Database()
	assert.Equal(t, 3, dbc.MaxOpenConns)
	assert.Equal(t, 3, dbc.MaxIdleConns)

	sc, err := cfg.Server()
	require.NoError(t, err)
	assert.Equal(t, authz.ModeJWT, sc.Auth.Mode)
	assert.Equal(t, "https://sso.odpem.gov.jm/realms/drims", sc.Auth.JWT.Issuer)
	assert.Equal(t, []string{"https://drims.odpem.gov.jm"}, sc.CORSAllowedOrigins)
	assert.Equal(t, "America/Jamaica", sc.Location.String())
}

func TestLoad_FlagsWin(t *testing.T) {
	v := viper.New()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	require.NoError(t, BindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--db-dsn", "file:test.db", "--log-format", "json"}))
	t.Setenv("DRIMS_DB_DSN", "from-env.db")

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "file:test.db", cfg.DB.DSN)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name, key, value, message string
	}{
		{"database type", "DRIMS_DB_TYPE", "oracle", "db.type"},
		{"auth mode", "DRIMS_AUTH_MODE", "saml", "auth.mode"},
		{"log level", "DRIMS_LOG_LEVEL", "loud", "log.level"},
		{"log format", "DRIMS_LOG_FORMAT", "xml", "log.format"},
		{"timezone", "DRIMS_DISPLAY_TIMEZONE", "Mars/Olympus", "display.timezone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(viper.New(), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLogger(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "warehouse", "Marcus Garvey Drive")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"warehouse":"Marcus Garvey Drive"`)
}
