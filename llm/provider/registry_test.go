package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryNames(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.Equal(t, []string{"antigravity", "claudecode", "codex", "copilot", "geminicli"}, registry.Names())
}

func TestRegistryGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	cfg, ok := registry.Get("codex")
	require.True(t, ok)
	require.Equal(t, "codex", cfg.Name)
	require.NotEmpty(t, cfg.ClientID)
	require.NotEmpty(t, cfg.AuthorizeURL)
	require.NotEmpty(t, cfg.TokenURL)

	_, ok = registry.Get("unknown")
	require.False(t, ok)
}

func TestRegistryFlowShapes(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	// Copilot is device-flow only; everything else runs the browser flow.
	copilot, _ := registry.Get("copilot")
	require.Empty(t, copilot.AuthorizeURL)
	require.NotEmpty(t, copilot.DeviceCodeURL)

	for _, name := range []string{"codex", "claudecode", "antigravity", "geminicli"} {
		cfg, ok := registry.Get(name)
		require.True(t, ok, name)
		require.NotEmpty(t, cfg.AuthorizeURL, name)
		require.NotZero(t, cfg.CallbackPort, name)
	}
}

func TestRegistryApplyOverrides(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Apply(map[string]Override{
		"codex": {
			APIKey:       "sk-config",
			ClientID:     "override-client",
			CallbackPort: 9999,
			ExtraHeaders: map[string]string{"X-Test": "1"},
		},
		"unknown": {ClientID: "ignored"},
	})

	cfg, _ := registry.Get("codex")
	require.Equal(t, "sk-config", cfg.APIKey)
	require.Equal(t, "override-client", cfg.ClientID)
	require.Equal(t, 9999, cfg.CallbackPort)
	require.Equal(t, "1", cfg.ExtraHeaders["X-Test"])

	// Untouched fields keep their built-in values.
	require.NotEmpty(t, cfg.AuthorizeURL)

	other, _ := registry.Get("claudecode")
	require.NotEqual(t, "override-client", other.ClientID)
}
