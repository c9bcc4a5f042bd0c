package generator

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeService) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return f.GenerateText(ctx, prompt)
}

func TestGenerate(t *testing.T) {
	svc := &fakeService{reply: "# Async Error Handling\n\n## When to Use\n..."}
	g := New(svc)

	content, err := g.Generate(context.Background(), Request{
		Topic:     "async error handling",
		TechStack: "Go",
	})
	require.NoError(t, err)
	assert.Contains(t, content, "# Async Error Handling")

	require.Len(t, svc.prompts, 1)
	assert.Contains(t, svc.prompts[0], "async error handling")
	assert.Contains(t, svc.prompts[0], "Database Migration Safety")
	assert.Contains(t, svc.prompts[0], "When to Use / Steps / Example / Expected Output")
}

func TestGenerateRequiresTopic(t *testing.T) {
	g := New(&fakeService{})
	_, err := g.Generate(context.Background(), Request{Topic: "  "})
	assert.Error(t, err)
}

func TestGenerateUnavailable(t *testing.T) {
	svc := &fakeService{err: errors.New("service unavailable")}
	g := New(svc)

	_, err := g.Generate(context.Background(), Request{Topic: "testing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationUnavailable))
}

func TestGenerateEmptyReply(t *testing.T) {
	svc := &fakeService{reply: "```\n```"}
	g := New(svc)

	_, err := g.Generate(context.Background(), Request{Topic: "testing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGenerationUnavailable))
}

func TestStripOuterFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "# Title\n\nBody", "# Title\n\nBody"},
		{"plain fence", "```\n# Title\n```", "# Title"},
		{"markdown fence", "```markdown\n# Title\n```", "# Title"},
		{"md fence", "```md\n# Title\n```", "# Title"},
		{"keeps inner fences", "# Title\n\n```bash\nls\n```\n\nMore", "# Title\n\n```bash\nls\n```\n\nMore"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripOuterFences(tt.in))
		})
	}
}
