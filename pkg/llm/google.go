package llm

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/skillvet/skillvet/pkg/logger"
)

type googleService struct {
	client *genai.Client
	cfg    Config
}

func newGoogleService(cfg Config) (*googleService, error) {
	clientConfig := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}
	// When APIKey is empty the SDK falls back to GEMINI_API_KEY / GOOGLE_API_KEY
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Google GenAI client")
	}

	return &googleService{client: client, cfg: cfg}, nil
}

func (s *googleService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, prompt, "")
}

func (s *googleService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	out, err := s.generate(ctx, prompt, "application/json")
	if err != nil {
		return "", err
	}
	return StripFences(out), nil
}

func (s *googleService) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	requestID := uuid.NewString()
	ctx = logger.WithLogger(ctx, logger.G(ctx).
		WithField("provider", ProviderGoogle).
		WithField("model", s.cfg.Model).
		WithField("request_id", requestID))

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.1)),
		MaxOutputTokens: int32(s.cfg.MaxTokens),
	}
	if mimeType != "" {
		config.ResponseMIMEType = mimeType
	}

	var content string
	err := executeWithRetry(ctx, s.cfg, "google generate content", func(ctx context.Context) error {
		resp, err := s.client.Models.GenerateContent(ctx, s.cfg.Model, genai.Text(prompt), config)
		if err != nil {
			return errors.Wrap(err, "generate content failed")
		}

		text := resp.Text()
		if text == "" {
			return errors.New("empty text in response")
		}
		content = text
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.G(ctx).WithField("response_chars", len(content)).Debug("external service call complete")
	return content, nil
}
