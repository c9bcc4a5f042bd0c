package relevance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

type matchResponse struct {
	Matches []Score `json:"matches"`
}

var matchSchemaJSON = mustGenerateMatchSchema()

func mustGenerateMatchSchema() string {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema, err := json.Marshal(reflector.Reflect(&matchResponse{}))
	if err != nil {
		panic(err)
	}
	return string(schema)
}

func parseMatchResponse(raw string) ([]Score, error) {
	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(matchSchemaJSON),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, errors.Wrap(err, "response is not valid JSON")
	}
	if !validation.Valid() {
		return nil, errors.Errorf("response does not match schema: %v", validation.Errors())
	}

	var resp matchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}
	return resp.Matches, nil
}

func buildMatchPrompt(profile Profile, candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("You are a recommendation assistant for skill documents used by coding agents.\n\n")
	b.WriteString("## User's project\n\n")
	fmt.Fprintf(&b, "- Tech stack: %s\n", orNone(strings.Join(profile.TechStack, ", ")))
	fmt.Fprintf(&b, "- Project type: %s\n", orNone(profile.ProjectType))
	fmt.Fprintf(&b, "- Notes: %s\n", orNone(profile.Notes))

	b.WriteString("\n## Candidate skills\n\n")
	b.WriteString("Each entry: name, quality score (0-100), summary.\n\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- [%s] quality=%.1f summary: %s\n", c.Name, c.WeightedScore, truncate(c.Summary, 120))
	}

	b.WriteString(`
## Task

Rate the relevance of EVERY candidate to this project, 0-100:
- 100 = perfect match, would be used daily
- 70-99 = highly relevant, strongly recommended
- 40-69 = somewhat relevant, situational
- 1-39 = low relevance, marginal use
- 0 = not relevant to this project at all

## Output format (output ONLY JSON, nothing else)

{
  "matches": [
    {
      "name": "<skill name, exactly as listed above>",
      "relevance": <integer 0-100>,
      "reason": "<one sentence explaining the rating>"
    }
  ]
}

Include one entry per candidate. The "name" field must match the listed name exactly.`)
	return b.String()
}

func repairMatchPrompt(profile Profile, candidates []Candidate, parseErr error) string {
	var b strings.Builder
	b.WriteString("Your previous reply could not be parsed: ")
	b.WriteString(parseErr.Error())
	b.WriteString("\n\nReply again with ONLY a single JSON object, no prose and no code fences,\n")
	b.WriteString("conforming exactly to this JSON schema:\n\n")
	b.WriteString(matchSchemaJSON)
	b.WriteString("\n\nOne entry per candidate, \"name\" copied exactly from this list:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s\n", c.Name)
	}
	fmt.Fprintf(&b, "\nProject: stack=%s type=%s\n", strings.Join(profile.TechStack, ", "), profile.ProjectType)
	return b.String()
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not specified)"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
