package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skillvet/skillvet/pkg/logger"
)

type anthropicService struct {
	client anthropic.Client
	cfg    Config
}

func newAnthropicService(cfg Config) (*anthropicService, error) {
	var opts []option.RequestOption
	// When APIKey is empty the SDK falls back to ANTHROPIC_API_KEY
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	return &anthropicService{
		client: anthropic.NewClient(opts...),
		cfg:    cfg,
	}, nil
}

func (s *anthropicService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, prompt)
}

// GenerateJSON relies on prompt instructions for JSON output; the messages
// API has no JSON response mode.
func (s *anthropicService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	out, err := s.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return StripFences(out), nil
}

func (s *anthropicService) generate(ctx context.Context, prompt string) (string, error) {
	requestID := uuid.NewString()
	ctx = logger.WithLogger(ctx, logger.G(ctx).
		WithField("provider", ProviderAnthropic).
		WithField("model", s.cfg.Model).
		WithField("request_id", requestID))

	var content string
	err := executeWithRetry(ctx, s.cfg, "anthropic message", func(ctx context.Context) error {
		resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(s.cfg.Model),
			MaxTokens: int64(s.cfg.MaxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return errors.Wrap(err, "message creation failed")
		}

		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return errors.New("empty text in response")
		}
		content = sb.String()
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.G(ctx).WithField("response_chars", len(content)).Debug("external service call complete")
	return content, nil
}
