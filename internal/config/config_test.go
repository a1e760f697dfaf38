package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/docvault/internal/backend"
	"github.com/taigrr/docvault/internal/vaulterr"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data", "docvault", "docvaults"), cfg.BaseDir)
	assert.Equal(t, filepath.Join("/data", "docvault", "docvault.db"), cfg.Database)
	assert.Equal(t, backend.ModeFilesystem, cfg.BackendMode())
	assert.Equal(t, vaulterr.English, cfg.VaultLocale())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DOCVAULT_BASE_DIR", "/srv/vaults")
	t.Setenv("DOCVAULT_MODE", "legacy")
	t.Setenv("DOCVAULT_LOCALE", "zh-CN")
	t.Setenv("DOCVAULT_LOG_LEVEL", "debug")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "/srv/vaults", cfg.BaseDir)
	assert.Equal(t, backend.ModeLegacy, cfg.BackendMode())
	assert.Equal(t, vaulterr.Chinese, cfg.VaultLocale())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	content := `
base_dir = "/tmp/vaults"
locale = "zh"
ignore = ["*.tmp", ".git/**"]
metrics_addr = ":9090"

[log]
level = "warn"
format = "console"
output = "/var/log/docvault.log"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, err := Load(NewViper(), file)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/vaults", cfg.BaseDir)
	assert.Equal(t, []string{"*.tmp", ".git/**"}, cfg.Ignore)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Logging().Format)
	assert.Equal(t, "/var/log/docvault.log", cfg.Log.Logging().Output)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"filesystem", Config{BaseDir: "/v", Mode: "filesystem"}, false},
		{"legacy", Config{Mode: "legacy", Database: "/d.db"}, false},
		{"missing base dir", Config{Mode: "filesystem"}, true},
		{"legacy without database", Config{Mode: "legacy"}, true},
		{"unknown mode", Config{BaseDir: "/v", Mode: "cloud"}, true},
		{"mixed case legacy needs database", Config{BaseDir: "/v", Mode: " Legacy "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
