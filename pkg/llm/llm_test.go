package llm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"markdown fence", "```markdown\n# Title\n```", "# Title"},
		{"leading whitespace", "  \n```json\n{}\n```\n", "{}"},
		{"inner fences preserved", "```markdown\nuse ```go blocks\n```", "use ```go blocks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.raw))
		})
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.True(t, isRetryableError(context.DeadlineExceeded))
	assert.True(t, isRetryableError(errors.New("429 Too Many Requests")))
	assert.True(t, isRetryableError(errors.New("rate limit exceeded")))
	assert.True(t, isRetryableError(errors.New("503 Service Unavailable")))
	assert.False(t, isRetryableError(errors.New("invalid api key")))
	assert.False(t, isRetryableError(errors.New("400 bad request")))
}

func TestExecuteWithRetry_StopsOnNonRetryable(t *testing.T) {
	cfg := Config{Retry: RetryConfig{Attempts: 5, InitialDelay: 1, MaxDelay: 2}, TimeoutSeconds: 1}

	calls := 0
	err := executeWithRetry(context.Background(), cfg, "test call", func(ctx context.Context) error {
		calls++
		return errors.New("invalid api key")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteWithRetry_ExhaustsAttempts(t *testing.T) {
	cfg := Config{Retry: RetryConfig{Attempts: 3, InitialDelay: 1, MaxDelay: 2, BackoffType: "fixed"}, TimeoutSeconds: 1}

	calls := 0
	err := executeWithRetry(context.Background(), cfg, "test call", func(ctx context.Context) error {
		calls++
		return errors.New("rate limit")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestExecuteWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	cfg := Config{Retry: RetryConfig{Attempts: 3, InitialDelay: 1, MaxDelay: 2, BackoffType: "fixed"}, TimeoutSeconds: 1}

	calls := 0
	err := executeWithRetry(context.Background(), cfg, "test call", func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("service unavailable")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	assert.Equal(t, ProviderGoogle, cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, DefaultRetryConfig, cfg.Retry)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
}

func TestConfigDefaultModelTracksProvider(t *testing.T) {
	cfg := Config{Provider: ProviderOpenAI}
	cfg.applyDefaults()
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
}

func TestConfigFromViper_Profile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("provider", "openai")
	viper.Set("model", "gpt-4o")
	viper.Set("profiles.batch.model", "gpt-4o-mini")
	viper.Set("profile", "batch")

	cfg, err := ConfigFromViper()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
}

func TestConfigFromViper_UnknownProfile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("profile", "nope")

	_, err := ConfigFromViper()
	assert.Error(t, err)
}

func TestNewService_UnsupportedProvider(t *testing.T) {
	_, err := NewService(Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
