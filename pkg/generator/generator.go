// Package generator produces new SKILL.md documents from a topic
// description, aiming for drafts that score well on the quality rubric.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillvet/skillvet/pkg/llm"
	"github.com/skillvet/skillvet/pkg/logger"
)

// ErrGenerationUnavailable means the external service could not produce a
// document within the retry budget.
var ErrGenerationUnavailable = errors.New("generation service unavailable")

// Request describes the document to generate.
type Request struct {
	Topic     string
	TechStack string
	Notes     string
}

// Generator drafts skill documents via the external service.
type Generator struct {
	svc llm.Service
}

func New(svc llm.Service) *Generator {
	return &Generator{svc: svc}
}

// Generate returns the markdown content of a new skill document.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return "", errors.New("topic is required")
	}

	logger.G(ctx).WithField("topic", req.Topic).Info("generating skill document")

	raw, err := g.svc.GenerateText(ctx, buildGeneratePrompt(req))
	if err != nil {
		return "", errors.Wrapf(ErrGenerationUnavailable, "generating %q: %v", req.Topic, err)
	}

	content := stripOuterFences(raw)
	if strings.TrimSpace(content) == "" {
		return "", errors.Wrapf(ErrGenerationUnavailable, "generating %q: service returned empty content", req.Topic)
	}
	return content, nil
}

// stripOuterFences removes an accidental code fence wrapping the whole
// document, without touching fences inside it.
func stripOuterFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```markdown") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```markdown"))
	} else if strings.HasPrefix(s, "```md") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```md"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func buildGeneratePrompt(req Request) string {
	stack := req.TechStack
	if strings.TrimSpace(stack) == "" {
		stack = "general purpose (no specific stack)"
	}
	notes := req.Notes
	if strings.TrimSpace(notes) == "" {
		notes = "none"
	}

	var b strings.Builder
	b.WriteString("You are an expert at writing high-quality SKILL.md files for coding agents.\n\n")
	b.WriteString("## Your task\n\nGenerate a high-quality SKILL.md for:\n\n")
	fmt.Fprintf(&b, "- Topic: %s\n- Tech stack: %s\n- Notes: %s\n", req.Topic, stack, notes)
	b.WriteString(`
## What a high-scoring skill must satisfy

1. Trigger clarity (20%): state explicitly when to use AND when NOT to use it, with concrete scenarios rather than vague descriptions.
2. Structure completeness (25%): include all four sections, When to Use / Steps / Example / Expected Output, with clear numbering.
3. Step executability (25%): every step is a concrete action with real commands, code snippets, or specific values an agent can follow directly.
4. Example quality (20%): include a Bad vs Good comparison with real code, never pseudo-code or placeholders; cover the most typical scenario.
5. Scope appropriateness (10%): focus on one specific topic; depth over breadth.

## Reference (a real high-scoring skill, match its structure, tone, and specificity)

`)
	b.WriteString("```\n")
	b.WriteString(referenceExample)
	b.WriteString("\n```\n")
	fmt.Fprintf(&b, `
## Output requirements

- Output the SKILL.md markdown content directly, with no explanation before or after
- Do NOT wrap the whole output in a code fence
- Content must be real, specific, executable guidance for %q
- Code examples must be real (never placeholders like your_code_here)
- Stay focused: roughly 400-800 words
`, req.Topic)
	return b.String()
}
