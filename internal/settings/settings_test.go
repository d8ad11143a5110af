package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config dir and working directory at a temp dir
// and clears every SQLCOPILOT_* variable the tests touch.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{
		EnvConfigFile,
		"SQLCOPILOT_STORE_BACKEND",
		"SQLCOPILOT_STORE_PATH",
		"SQLCOPILOT_STORE_REDIS_ADDR",
		"SQLCOPILOT_SERVER_ADDR",
		"SQLCOPILOT_LOG_LEVEL",
		"SQLCOPILOT_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendFile, settings.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "sqlcopilot", "store.json"), settings.Store.Path)
	assert.Equal(t, "sqlcopilot:", settings.Store.RedisPrefix)
	assert.Equal(t, "127.0.0.1:8765", settings.Server.Addr)
	assert.Equal(t, "release", settings.Server.Mode)
	assert.Equal(t, "info", settings.Log.Level)
	assert.Equal(t, "compact", settings.Log.Format)
}

func TestLoad_YAMLInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	yaml := `
store:
  backend: sqlite
server:
  addr: 0.0.0.0:9000
log:
  level: debug
  format: JSON
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlcopilot.yaml"), []byte(yaml), 0o600))

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, settings.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "sqlcopilot", "store.db"), settings.Store.Path)
	assert.Equal(t, "0.0.0.0:9000", settings.Server.Addr)
	assert.Equal(t, "debug", settings.Log.Level)
	assert.Equal(t, "json", settings.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("store:\n  backend: memory\n"), 0o600))

	t.Setenv(EnvConfigFile, file)
	t.Setenv("SQLCOPILOT_STORE_BACKEND", "redis")
	t.Setenv("SQLCOPILOT_STORE_REDIS_ADDR", "localhost:6379")
	t.Setenv("SQLCOPILOT_LOG_LEVEL", "warn")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, settings.Store.Backend)
	assert.Equal(t, "localhost:6379", settings.Store.RedisAddr)
	assert.Empty(t, settings.Store.Path)
	assert.Equal(t, "warn", settings.Log.Level)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"SQLCOPILOT_STORE_BACKEND": "etcd"}},
		{name: "redis without address", env: map[string]string{"SQLCOPILOT_STORE_BACKEND": "redis"}},
		{name: "bad log level", env: map[string]string{"SQLCOPILOT_LOG_LEVEL": "loud"}},
		{name: "bad log format", env: map[string]string{"SQLCOPILOT_LOG_FORMAT": "xml"}},
		{name: "bad listen address", env: map[string]string{"SQLCOPILOT_SERVER_ADDR": "localhost"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load("")
			assert.ErrorContains(t, err, "invalid settings")
		})
	}
}
