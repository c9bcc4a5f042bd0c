package scorer

import (
	"fmt"
	"strings"

	"github.com/skillvet/skillvet/pkg/rubric"
	"github.com/skillvet/skillvet/pkg/skill"
)

const outputFormat = `## Output format (output ONLY JSON, nothing else)

{
  "scores": {
    "trigger_clarity":        {"score": <integer 0-100>, "strengths": [], "weaknesses": [], "suggestions": []},
    "structure_completeness": {"score": <integer 0-100>, "strengths": [], "weaknesses": [], "suggestions": []},
    "step_executability":     {"score": <integer 0-100>, "strengths": [], "weaknesses": [], "suggestions": []},
    "example_quality":        {"score": <integer 0-100>, "strengths": [], "weaknesses": [], "suggestions": []},
    "scope_appropriateness":  {"score": <integer 0-100>, "strengths": [], "weaknesses": [], "suggestions": []}
  },
  "overall_summary": "<2-3 sentence overall assessment>",
  "top_issues": ["<issue 1>", "<issue 2>"],
  "verdict": "INSTALL"
}

Verdict rules:
- "INSTALL": weighted score >= 75
- "MAYBE":   50-74
- "SKIP":    < 50`

// buildScorePrompt renders the evaluation prompt for the document's type.
// Both rubric variants share the dimension keys, weights, and output
// contract; only the intro and guiding questions differ.
func buildScorePrompt(doc skill.Document) string {
	var b strings.Builder
	b.WriteString("You are an expert reviewer of skill documents for coding agents.\n\n")

	if doc.Type == skill.TypeIndex {
		b.WriteString("This is an INDEX document: it serves as a navigation directory for a set of\n")
		b.WriteString("rule files, and the real examples and details live in the files it references.\n")
		b.WriteString("Evaluate it with standards appropriate for an index document.\n\n")
	} else {
		b.WriteString("This is a SELF-CONTAINED document: all guidance, steps, and examples are\n")
		b.WriteString("expected to live in this single file.\n\n")
	}

	b.WriteString("## Evaluation dimensions\n\n")
	for _, d := range rubric.Catalog {
		fmt.Fprintf(&b, "### %s (weight %.0f%%)\n%s\n", d.Key, d.Weight*100, d.Description)
		for _, q := range d.QuestionsFor(doc.Type) {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Document under evaluation\n\n```\n")
	b.WriteString(doc.Content)
	b.WriteString("\n```\n\n")
	b.WriteString(outputFormat)
	return b.String()
}

// repairPrompt re-asks with the exact JSON schema after a malformed reply.
func repairPrompt(doc skill.Document, badReply string, parseErr error) string {
	var b strings.Builder
	b.WriteString("Your previous reply could not be parsed: ")
	b.WriteString(parseErr.Error())
	b.WriteString("\n\nReply again with ONLY a single JSON object, no prose and no code fences,\n")
	b.WriteString("conforming exactly to this JSON schema:\n\n")
	b.WriteString(scoreSchemaJSON)
	b.WriteString("\n\nThe scores object must contain every one of these keys: ")
	b.WriteString(strings.Join(rubric.Keys(), ", "))
	if snippet := truncate(badReply, 500); snippet != "" {
		b.WriteString("\n\nYour previous (unparseable) reply began with:\n")
		b.WriteString(snippet)
		b.WriteString("\n")
	}
	b.WriteString("\n\n## Document under evaluation\n\n```\n")
	b.WriteString(doc.Content)
	b.WriteString("\n```\n")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
