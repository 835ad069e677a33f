package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(prev)
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	config, err := Load()
	require.NoError(t, err)
	require.Equal(t, "info", config.Log.Level)
	require.Equal(t, "console", config.Log.Encoding)
	require.Equal(t, "30s", config.HTTP.Timeout)
	require.NotEmpty(t, config.Store.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := `
log:
  level: debug
store:
  path: /tmp/test-credentials.json
http:
  timeout: 10s
providers:
  codex:
    client_id: override-client
    callback_port: 9999
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o600))

	config, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", config.Log.Level)
	require.Equal(t, "/tmp/test-credentials.json", config.Store.Path)
	require.Equal(t, "10s", config.HTTP.Timeout)
	require.Equal(t, "override-client", config.Providers["codex"].ClientID)
	require.Equal(t, 9999, config.Providers["codex"].CallbackPort)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTHHUB_LOG_LEVEL", "debug")

	config, err := Load()
	require.NoError(t, err)
	require.Equal(t, "debug", config.Log.Level)
}

func TestLoadInvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("http:\n  timeout: nope\n"), 0o600))

	_, err := Load()
	require.Error(t, err)
}
