package scorer

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/skillvet/skillvet/pkg/rubric"
)

// scoreResponse mirrors the JSON structure the scoring prompt requests.
// Verdict is whatever label the service chose to report; it is parsed so
// the override can be logged, but never influences the result.
type scoreResponse struct {
	Scores         map[string]DimensionScore `json:"scores"`
	OverallSummary string                    `json:"overall_summary"`
	TopIssues      []string                  `json:"top_issues"`
	Verdict        string                    `json:"verdict"`
}

var scoreSchemaJSON = mustGenerateSchema(&scoreResponse{})

// mustGenerateSchema reflects a JSON schema for the given response shape.
// The schema both validates replies and is embedded in the repair prompt.
func mustGenerateSchema(v interface{}) string {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(v)
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// parseScoreResponse validates and decodes one raw service reply. Any
// structural problem (invalid JSON, wrong types, missing dimensions) is an
// error; out-of-range score values are NOT — those get clamped later.
func parseScoreResponse(raw string) (*scoreResponse, error) {
	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(scoreSchemaJSON),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, errors.Wrap(err, "response is not valid JSON")
	}
	if !validation.Valid() {
		return nil, errors.Errorf("response does not match schema: %v", validation.Errors())
	}

	var resp scoreResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode response")
	}

	if resp.Scores == nil {
		return nil, errors.New("response missing scores object")
	}
	for _, key := range rubric.Keys() {
		if _, ok := resp.Scores[key]; !ok {
			return nil, errors.Errorf("response missing dimension %q", key)
		}
	}

	return &resp, nil
}
