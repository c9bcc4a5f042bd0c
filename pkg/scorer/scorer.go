// Package scorer obtains per-dimension quality scores for a skill document
// from the external service and reduces them to a deterministic weighted
// score and verdict. The service proposes raw numbers; the fixed rubric
// disposes. Its self-reported verdict is never used.
package scorer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skillvet/skillvet/pkg/llm"
	"github.com/skillvet/skillvet/pkg/logger"
	"github.com/skillvet/skillvet/pkg/rubric"
	"github.com/skillvet/skillvet/pkg/skill"
)

var (
	// ErrScoringUnavailable means the external service could not be reached
	// within the retry budget. The document was not scored.
	ErrScoringUnavailable = errors.New("scoring service unavailable")
	// ErrMalformedResponse means the service replied, but the reply could
	// not be parsed into per-dimension scores even after one repair attempt.
	ErrMalformedResponse = errors.New("malformed scoring response")
)

// DimensionScore is the raw score and rationale for one dimension.
type DimensionScore struct {
	Score       int      `json:"score"`
	Strengths   []string `json:"strengths,omitempty"`
	Weaknesses  []string `json:"weaknesses,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Result is the full quality evaluation of one document. WeightedScore and
// Verdict are derived here, deterministically, from the raw dimension
// scores alone.
type Result struct {
	SkillName     string                    `json:"skill_name"`
	SkillType     skill.Type                `json:"skill_type"`
	Dimensions    map[string]DimensionScore `json:"dimension_scores"`
	WeightedScore float64                   `json:"weighted_score"`
	Verdict       rubric.Verdict            `json:"verdict"`
	Summary       string                    `json:"overall_summary,omitempty"`
	TopIssues     []string                  `json:"top_issues,omitempty"`
	URL           string                    `json:"url,omitempty"`
}

// Scorer evaluates documents against the fixed dimension catalog.
type Scorer struct {
	svc llm.Service
}

// New creates a Scorer. The dimension catalog is validated here so a
// miswired catalog is rejected before any document is scored.
func New(svc llm.Service) (*Scorer, error) {
	if err := rubric.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid dimension catalog")
	}
	return &Scorer{svc: svc}, nil
}

// Score evaluates one document. The document's type selects the rubric
// variant; the threshold and weighting logic is shared between variants.
func (s *Scorer) Score(ctx context.Context, doc skill.Document) (*Result, error) {
	log := logger.G(ctx).WithField("skill", doc.Key).WithField("skill_type", doc.Type)
	ctx = logger.WithLogger(ctx, log)

	raw, err := s.svc.GenerateJSON(ctx, buildScorePrompt(doc))
	if err != nil {
		return nil, errors.Wrapf(ErrScoringUnavailable, "scoring %s: %v", doc.Key, err)
	}

	parsed, parseErr := parseScoreResponse(raw)
	if parseErr != nil {
		log.WithError(parseErr).Warn("scoring response malformed, attempting repair")

		raw, err = s.svc.GenerateJSON(ctx, repairPrompt(doc, raw, parseErr))
		if err != nil {
			return nil, errors.Wrapf(ErrScoringUnavailable, "repairing %s: %v", doc.Key, err)
		}
		parsed, parseErr = parseScoreResponse(raw)
		if parseErr != nil {
			return nil, errors.Wrapf(ErrMalformedResponse, "scoring %s: %v", doc.Key, parseErr)
		}
	}

	result := s.assemble(doc, parsed)
	if parsed.Verdict != "" && rubric.Verdict(parsed.Verdict) != result.Verdict {
		log.WithField("service_verdict", parsed.Verdict).
			WithField("derived_verdict", result.Verdict).
			WithField("weighted_score", result.WeightedScore).
			Info("overriding service verdict with threshold-derived verdict")
	}
	return result, nil
}

// assemble clamps the raw scores and derives the weighted score and
// verdict. The service's own verdict label is discarded.
func (s *Scorer) assemble(doc skill.Document, resp *scoreResponse) *Result {
	dims := make(map[string]DimensionScore, len(rubric.Catalog))
	raw := make(map[string]int, len(rubric.Catalog))
	for _, d := range rubric.Catalog {
		ds := resp.Scores[d.Key]
		ds.Score = rubric.Clamp(ds.Score)
		dims[d.Key] = ds
		raw[d.Key] = ds.Score
	}

	weighted := rubric.WeightedScore(raw)
	return &Result{
		SkillName:     doc.Key,
		SkillType:     doc.Type,
		Dimensions:    dims,
		WeightedScore: weighted,
		Verdict:       rubric.VerdictFor(weighted),
		Summary:       resp.OverallSummary,
		TopIssues:     resp.TopIssues,
		URL:           doc.URL,
	}
}
