package provider

import (
	"sort"

	"github.com/samber/lo"

	"github.com/looplj/authhub/llm/oauth"
	"github.com/looplj/authhub/llm/provider/antigravity"
	"github.com/looplj/authhub/llm/provider/claudecode"
	"github.com/looplj/authhub/llm/provider/codex"
	"github.com/looplj/authhub/llm/provider/copilot"
	"github.com/looplj/authhub/llm/provider/geminicli"
)

// Registry holds the provider configurations the broker can authenticate
// against. It satisfies oauth.Registry.
type Registry struct {
	configs map[string]*oauth.ProviderConfig
}

// NewRegistry builds a registry over the built-in providers.
func NewRegistry() *Registry {
	configs := lo.SliceToMap(
		[]*oauth.ProviderConfig{
			codex.Config(),
			claudecode.Config(),
			copilot.Config(),
			antigravity.Config(),
			geminicli.Config(),
		},
		func(cfg *oauth.ProviderConfig) (string, *oauth.ProviderConfig) {
			return cfg.Name, cfg
		},
	)

	return &Registry{configs: configs}
}

// Get returns the configuration for the named provider.
func (r *Registry) Get(name string) (*oauth.ProviderConfig, bool) {
	cfg, ok := r.configs[name]

	return cfg, ok
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := lo.Keys(r.configs)
	sort.Strings(names)

	return names
}

// Override carries the per-provider settings configuration may change.
// Zero fields leave the built-in value untouched.
type Override struct {
	APIKey       string            `mapstructure:"api_key"`
	ClientID     string            `mapstructure:"client_id"`
	ClientSecret string            `mapstructure:"client_secret"`
	CallbackPort int               `mapstructure:"callback_port"`
	Scopes       []string          `mapstructure:"scopes"`
	ExtraHeaders map[string]string `mapstructure:"extra_headers"`
}

// Apply merges overrides into the registry's configurations. Unknown
// provider names are ignored.
func (r *Registry) Apply(overrides map[string]Override) {
	for name, override := range overrides {
		cfg, ok := r.configs[name]
		if !ok {
			continue
		}

		if override.APIKey != "" {
			cfg.APIKey = override.APIKey
		}

		if override.ClientID != "" {
			cfg.ClientID = override.ClientID
		}

		if override.ClientSecret != "" {
			cfg.ClientSecret = override.ClientSecret
		}

		if override.CallbackPort != 0 {
			cfg.CallbackPort = override.CallbackPort
		}

		if len(override.Scopes) > 0 {
			cfg.Scopes = override.Scopes
		}

		if len(override.ExtraHeaders) > 0 {
			cfg.ExtraHeaders = lo.Assign(cfg.ExtraHeaders, override.ExtraHeaders)
		}
	}
}
