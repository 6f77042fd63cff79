// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/essay-site/internal/llm"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SUMMARIES_MODEL.
const EnvPrefix = "SUMMARIES"

// Config is the runtime configuration of a summary run.
// The site layout is not configurable; see package site.
type Config struct {
	Provider       string `mapstructure:"provider" validate:"required,oneof=anthropic gemini"`
	Model          string `mapstructure:"model"` // overrides the provider's standard-tier model
	MaxTokens      int    `mapstructure:"max_tokens" validate:"min=1,max=4096"`
	MaxRetries     int    `mapstructure:"max_retries" validate:"min=0,max=10"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=0,max=600"`
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	LogLevel       string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	PlainText      bool   `mapstructure:"plain_text"`
	Verbose        bool   `mapstructure:"verbose"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Provider:       string(llm.ProviderAnthropic),
		MaxTokens:      llm.DefaultMaxTokens,
		MaxRetries:     llm.DefaultMaxRetries,
		TimeoutSeconds: 60,
		LogLevel:       "warn",
	}
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"provider":   "provider",
	"model":      "model",
	"max-tokens": "max_tokens",
	"retries":    "max_retries",
	"timeout":    "timeout_seconds",
	"base-url":   "base_url",
	"log-level":  "log_level",
	"plain-text": "plain_text",
	"verbose":    "verbose",
}

// Load merges defaults, the config file, SUMMARIES_* environment variables and
// changed flags, in increasing order of precedence.
// An empty path looks for summaries.{yaml,json,toml} in the working directory; a missing file
// is only an error when path was given explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("model", defaults.Model)
	v.SetDefault("max_tokens", defaults.MaxTokens)
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("timeout_seconds", defaults.TimeoutSeconds)
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("plain_text", defaults.PlainText)
	v.SetDefault("verbose", defaults.Verbose)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("summaries")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		slog.Debug("Using config file", "path", v.ConfigFileUsed())
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// LLMConfig builds the client configuration.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigFor(llm.Provider(c.Provider))
	cfg.MaxTokens = c.MaxTokens
	cfg.MaxRetries = c.MaxRetries
	cfg.BaseURL = c.BaseURL
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.Model)
	}
	return cfg
}

// Timeout is the per-request limit; zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SlogLevel converts LogLevel for the slog handler.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
