package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
logLevel: debug
server:
  address: ":9090"
  readTimeout: 5s
  writeTimeout: 10s
auth:
  token:
    source: embedded
    value: bridge-token
gitea:
  baseURL: https://gitea.example.com/api/v1
  token:
    source: embedded
    value: admin-token
  insecureSkipVerify: true
provisioning:
  userVisibility: private
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout.Std())
	assert.Equal(t, "https://gitea.example.com/api/v1", cfg.Gitea.BaseURL)
	assert.True(t, cfg.Gitea.InsecureSkipVerify)
	assert.Equal(t, "private", cfg.Provisioning.UserVisibility)

	// Untouched fields fall back to their defaults.
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, config.DefaultTeamUnits, cfg.Provisioning.DefaultTeamUnits)

	giteaToken, err := cfg.Gitea.ResolveToken()
	require.NoError(t, err)
	assert.Equal(t, "admin-token", giteaToken)

	authToken, err := cfg.Auth.ResolveToken()
	require.NoError(t, err)
	assert.Equal(t, "bridge-token", authToken)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  token:
    source: embedded
    value: bridge-token
gitea:
  baseURL: http://gitea:3000/api/v1
  token:
    source: embedded
    value: admin-token
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout.Std())
	assert.Equal(t, "limited", cfg.Provisioning.UserVisibility)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "missing base URL",
			content: `
auth:
  token:
    source: embedded
    value: bridge-token
gitea:
  token:
    source: embedded
    value: admin-token
`,
			wantErr: config.ErrMissingBaseURL,
		},
		{
			name: "missing gitea token",
			content: `
auth:
  token:
    source: embedded
    value: bridge-token
gitea:
  baseURL: http://gitea:3000/api/v1
`,
			wantErr: config.ErrMissingToken,
		},
		{
			name: "missing inbound token",
			content: `
gitea:
  baseURL: http://gitea:3000/api/v1
  token:
    source: embedded
    value: admin-token
`,
			wantErr: config.ErrMissingScimAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, config.ErrReadConfig)
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "not: [valid"))
	require.ErrorIs(t, err, config.ErrParseConfig)
}

func TestDurationRejectsGarbage(t *testing.T) {
	_, err := config.Load(writeConfig(t, `
server:
  readTimeout: soon
auth:
  token:
    source: embedded
    value: bridge-token
gitea:
  baseURL: http://gitea:3000/api/v1
  token:
    source: embedded
    value: admin-token
`))
	require.ErrorIs(t, err, config.ErrParseConfig)
}
