package llm

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/skillvet/skillvet/pkg/logger"
)

type openaiService struct {
	client *openai.Client
	cfg    Config
}

func newOpenAIService(cfg Config) (*openaiService, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not configured (set api_key or OPENAI_API_KEY)")
	}

	return &openaiService{
		client: openai.NewClient(apiKey),
		cfg:    cfg,
	}, nil
}

func (s *openaiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, prompt, nil)
}

func (s *openaiService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	}
	out, err := s.generate(ctx, prompt, format)
	if err != nil {
		return "", err
	}
	return StripFences(out), nil
}

func (s *openaiService) generate(ctx context.Context, prompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	requestID := uuid.NewString()
	ctx = logger.WithLogger(ctx, logger.G(ctx).
		WithField("provider", ProviderOpenAI).
		WithField("model", s.cfg.Model).
		WithField("request_id", requestID))

	var content string
	err := executeWithRetry(ctx, s.cfg, "openai chat completion", func(ctx context.Context) error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:      s.cfg.MaxTokens,
			Temperature:    0.1,
			ResponseFormat: format,
		})
		if err != nil {
			return errors.Wrap(err, "chat completion failed")
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty choices in response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.G(ctx).WithField("response_chars", len(content)).Debug("external service call complete")
	return content, nil
}
