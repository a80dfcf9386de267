// Package config loads server configuration from file and environment via
// Viper. API keys are never stored in config files; the file names the
// environment variable each key is read from.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lldarena/arena/internal/domain"
	"github.com/lldarena/arena/internal/llm/providers"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ProviderConfig names a provider's endpoint and API-key source.
type ProviderConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	APIKeyEnv string `mapstructure:"api_key_env"`
}

// CompletionConfig tunes the completion clients.
type CompletionConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// Cooldown is awaited after each provider call before the client's
	// concurrency gate is released. Zero disables the throttle delay.
	Cooldown time.Duration `mapstructure:"cooldown"`

	// FallbackModels overrides the default-mode priority list, entries in
	// "provider/modelId" form.
	FallbackModels []string `mapstructure:"fallback_models"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig              `mapstructure:"server"`
	Log        LogConfig                 `mapstructure:"log"`
	Completion CompletionConfig          `mapstructure:"completion"`
	Providers  map[string]ProviderConfig `mapstructure:"providers"`
}

// Load reads config.yaml from the given directory (or the working directory
// when empty), layered under ARENA_-prefixed environment overrides. A
// missing file is fine; defaults and environment carry the day.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("completion.http_timeout", 120*time.Second)
	v.SetDefault("completion.cooldown", time.Duration(0))
	v.SetDefault("providers.openai.api_key_env", "OPENAI_API_KEY")
	v.SetDefault("providers.groq.api_key_env", "GROQ_API_KEY")

	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ProviderConfigs resolves API keys from the environment and returns the
// provider set for the completion clients. Providers whose key variable is
// unset are omitted rather than configured with an empty key.
func (c *Config) ProviderConfigs() map[domain.Provider]providers.Config {
	out := make(map[domain.Provider]providers.Config, len(c.Providers))
	for name, pc := range c.Providers {
		key := os.Getenv(pc.APIKeyEnv)
		if key == "" {
			continue
		}
		out[domain.Provider(name)] = providers.Config{
			Endpoint: pc.Endpoint,
			APIKey:   key,
		}
	}
	return out
}

// FallbackModels parses the configured "provider/modelId" entries. Malformed
// entries are skipped; nil means use the built-in default list.
func (c *Config) FallbackModels() []domain.ModelEntry {
	if len(c.Completion.FallbackModels) == 0 {
		return nil
	}
	var models []domain.ModelEntry
	for _, raw := range c.Completion.FallbackModels {
		provider, model, ok := strings.Cut(raw, "/")
		if !ok {
			continue
		}
		models = append(models, domain.ModelEntry{
			Provider: domain.Provider(provider),
			ModelID:  model,
		})
	}
	return models
}
