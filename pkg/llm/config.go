package llm

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Supported providers.
const (
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
)

// Config holds the configuration for the external service client.
type Config struct {
	Provider       string      `mapstructure:"provider"`
	Model          string      `mapstructure:"model"`
	APIKey         string      `mapstructure:"api_key"`
	MaxTokens      int         `mapstructure:"max_tokens"`
	TimeoutSeconds int         `mapstructure:"timeout_seconds"`
	MaxConcurrent  int         `mapstructure:"max_concurrent"`
	Retry          RetryConfig `mapstructure:"retry"`

	// Profiles are named configuration overlays (e.g. a cheap profile for
	// batch runs), selected with the top-level `profile` setting.
	Profiles map[string]map[string]interface{} `mapstructure:"profiles"`
}

// RetryConfig controls the bounded retry behaviour for external calls.
// Delays are in milliseconds.
type RetryConfig struct {
	Attempts     int    `mapstructure:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay"`
	MaxDelay     int    `mapstructure:"max_delay"`
	BackoffType  string `mapstructure:"backoff_type"`
}

// DefaultRetryConfig is applied when no retry settings are configured.
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 1000,
	MaxDelay:     10000,
	BackoffType:  "exponential",
}

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGoogle:    "gemini-2.0-flash",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderGoogle
	}
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 8192
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 60
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 4
	}
	if c.Retry.Attempts == 0 {
		c.Retry = DefaultRetryConfig
	}
}

// ConfigFromViper loads the client configuration using viper's automatic
// unmarshaling with mapstructure tags, applies the active profile overlay
// if one is selected, then fills in defaults.
func ConfigFromViper() (Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if name := viper.GetString("profile"); name != "" && name != "default" {
		if profile, ok := config.Profiles[name]; ok {
			if err := applyProfile(&config, profile); err != nil {
				return config, err
			}
		} else {
			return config, errors.Errorf("profile %q not found in configuration", name)
		}
	}

	config.applyDefaults()
	return config, nil
}

// applyProfile decodes a profile overlay on top of the existing config
// without zeroing fields the profile does not mention.
func applyProfile(config *Config, profile map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           config,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}
	if err := decoder.Decode(profile); err != nil {
		return errors.Wrap(err, "failed to apply profile")
	}
	return nil
}
