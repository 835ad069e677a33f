package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/looplj/authhub/internal/log"
	"github.com/looplj/authhub/llm/oauth"
	"github.com/looplj/authhub/llm/provider"
)

// Config is the full process configuration.
type Config struct {
	Log   log.Config  `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
	HTTP  HTTPConfig  `mapstructure:"http"`

	// Providers overrides built-in provider parameters by name.
	Providers map[string]provider.Override `mapstructure:"providers"`
}

// StoreConfig locates the on-disk credential store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig tunes the outbound HTTP client.
type HTTPConfig struct {
	// Timeout accepts a duration string like "30s".
	Timeout string `mapstructure:"timeout"`
}

// Load reads config.yml from the working directory or ~/.authhub, applies
// AUTHHUB_* environment overrides, and fills defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".authhub"))
	}

	v.SetEnvPrefix("AUTHHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("store.path", oauth.DefaultStorePath())
	v.SetDefault("http.timeout", "30s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if _, err := cast.ToDurationE(config.HTTP.Timeout); err != nil {
		return Config{}, fmt.Errorf("http.timeout: %w", err)
	}

	return config, nil
}
