// Package relevance scores skill documents against a user's project
// profile using a single batched call to the external service.
package relevance

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillvet/skillvet/pkg/llm"
	"github.com/skillvet/skillvet/pkg/logger"
)

var (
	// ErrProfileMissing means no project profile was supplied.
	ErrProfileMissing = errors.New("project profile is empty")

	// ErrMatchUnavailable means the external service could not produce a
	// usable relevance response within the retry budget.
	ErrMatchUnavailable = errors.New("relevance matching service unavailable")
)

// Profile describes the user's project for relevance matching.
type Profile struct {
	TechStack   []string `mapstructure:"tech_stack" json:"tech_stack,omitempty"`
	ProjectType string   `mapstructure:"project_type" json:"project_type,omitempty"`
	Notes       string   `mapstructure:"notes" json:"notes,omitempty"`
}

// Empty reports whether the profile carries no signal at all.
func (p Profile) Empty() bool {
	return len(p.TechStack) == 0 && strings.TrimSpace(p.ProjectType) == "" && strings.TrimSpace(p.Notes) == ""
}

// Candidate is one already-scored document offered for matching.
type Candidate struct {
	Name          string
	WeightedScore float64
	Summary       string
}

// Score is the relevance of one document to the profile.
type Score struct {
	Name      string `json:"name"`
	Relevance int    `json:"relevance"`
	Reason    string `json:"reason"`
}

// Matcher issues batched relevance requests.
type Matcher struct {
	svc llm.Service
}

func NewMatcher(svc llm.Service) *Matcher {
	return &Matcher{svc: svc}
}

// Match scores every candidate against the profile in one batched request.
// Results are correlated by candidate name: the service may reorder or drop
// entries, and any candidate absent from the reply gets relevance 0 with
// the reason "unscored".
func (m *Matcher) Match(ctx context.Context, profile Profile, candidates []Candidate) (map[string]Score, error) {
	if profile.Empty() {
		return nil, errors.Wrap(ErrProfileMissing, "cannot match relevance")
	}
	if len(candidates) == 0 {
		return map[string]Score{}, nil
	}

	log := logger.G(ctx).WithField("candidates", len(candidates))

	raw, err := m.svc.GenerateJSON(ctx, buildMatchPrompt(profile, candidates))
	if err != nil {
		return nil, errors.Wrapf(ErrMatchUnavailable, "matching %d candidates: %v", len(candidates), err)
	}

	matches, parseErr := parseMatchResponse(raw)
	if parseErr != nil {
		log.WithError(parseErr).Warn("relevance response malformed, attempting repair")

		raw, err = m.svc.GenerateJSON(ctx, repairMatchPrompt(profile, candidates, parseErr))
		if err != nil {
			return nil, errors.Wrapf(ErrMatchUnavailable, "repairing relevance batch: %v", err)
		}
		matches, parseErr = parseMatchResponse(raw)
		if parseErr != nil {
			return nil, errors.Wrapf(ErrMatchUnavailable, "relevance batch returned malformed response: %v", parseErr)
		}
	}

	byName := make(map[string]Score, len(matches))
	for _, sc := range matches {
		byName[sc.Name] = Score{Name: sc.Name, Relevance: clampRelevance(sc.Relevance), Reason: sc.Reason}
	}

	scores := make(map[string]Score, len(candidates))
	unscored := 0
	for _, c := range candidates {
		if sc, ok := byName[c.Name]; ok {
			scores[c.Name] = sc
			continue
		}
		scores[c.Name] = Score{Name: c.Name, Relevance: 0, Reason: "unscored"}
		unscored++
	}
	if unscored > 0 {
		log.WithField("unscored", unscored).Warn("service reply omitted some candidates")
	}
	return scores, nil
}

func clampRelevance(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
