// Package rubric defines the fixed evaluation dimensions, their weights,
// and the deterministic verdict thresholds applied to the weighted score.
// The catalog is static: dimensions are never created per document, and the
// weights must sum to exactly 1.0.
package rubric

import (
	"math"

	"github.com/pkg/errors"
	"github.com/skillvet/skillvet/pkg/skill"
)

// Dimension is one evaluation axis. Questions guide the external scorer for
// self-contained documents; IndexQuestions replace them for index documents,
// which are judged on aggregation and navigation quality instead of inline
// procedural content.
type Dimension struct {
	Name           string
	Key            string
	Weight         float64
	Description    string
	Questions      []string
	IndexQuestions []string
}

// Catalog is the fixed set of dimensions used for quality scoring.
var Catalog = []Dimension{
	{
		Name:        "Trigger clarity",
		Key:         "trigger_clarity",
		Weight:      0.20,
		Description: "Are the conditions for invoking this skill clear and specific?",
		Questions: []string{
			"Does it state exactly when the skill applies?",
			"Are the trigger conditions concrete rather than vague?",
			"Does it list situations where the skill should NOT be used?",
		},
		IndexQuestions: []string{
			"Is it clear in which scenarios this rule set applies?",
			"Is the trigger description specific?",
		},
	},
	{
		Name:        "Structural completeness",
		Key:         "structure_completeness",
		Weight:      0.25,
		Description: "Does the document contain all necessary structural elements?",
		Questions: []string{
			"Is there a clear statement of purpose?",
			"Are there clear steps or a workflow?",
			"Are there usage examples?",
			"Is the expected output described?",
		},
		IndexQuestions: []string{
			"Are the rule categories organized with a clear hierarchy?",
			"Is there a priority ordering (what to read first)?",
			"Is there a how-to-use section?",
		},
	},
	{
		Name:        "Step executability",
		Key:         "step_executability",
		Weight:      0.25,
		Description: "Are the steps concrete and actionable rather than vague guidance?",
		Questions: []string{
			"Does every step name a specific action?",
			"Are the steps in logical order?",
			"Does it avoid hedging words like 'try to' or 'consider'?",
		},
		IndexQuestions: []string{
			"Can a reader quickly find the rule they need?",
			"Is the navigation path from entry point to specific rule clear?",
			"Is there a quick reference?",
		},
	},
	{
		Name:        "Example quality",
		Key:         "example_quality",
		Weight:      0.20,
		Description: "Are the examples sufficient, concrete, and representative?",
		Questions: []string{
			"Is there at least one concrete usage example?",
			"Do examples show input and expected output?",
			"Do examples cover the main scenarios?",
		},
		IndexQuestions: []string{
			"Does each referenced rule carry at least a one-line description?",
			"Are the reference paths clear and resolvable?",
		},
	},
	{
		Name:        "Scope appropriateness",
		Key:         "scope_appropriateness",
		Weight:      0.10,
		Description: "Is the scope appropriate: neither too broad nor too narrow?",
		Questions: []string{
			"Does the skill focus on one clear task type?",
			"Does it avoid being overly broad (e.g. 'help me write code')?",
			"Does it avoid being overly narrow (one hyper-specific scenario)?",
		},
		IndexQuestions: []string{
			"Is the covered topic range reasonable?",
			"Does the number of rules match the topic's complexity?",
		},
	},
}

// Verdict is the quality label derived solely from the weighted score.
type Verdict string

const (
	VerdictInstall Verdict = "INSTALL"
	VerdictMaybe   Verdict = "MAYBE"
	VerdictSkip    Verdict = "SKIP"
)

// Verdict thresholds on the weighted score, inclusive lower bounds.
const (
	installThreshold = 75
	maybeThreshold   = 50
)

// VerdictFor maps a weighted score onto its verdict. The external service's
// own verdict label is never consulted; this is the single source of truth.
func VerdictFor(weighted float64) Verdict {
	switch {
	case weighted >= installThreshold:
		return VerdictInstall
	case weighted >= maybeThreshold:
		return VerdictMaybe
	default:
		return VerdictSkip
	}
}

// Keys returns the dimension keys in catalog order.
func Keys() []string {
	keys := make([]string, len(Catalog))
	for i, d := range Catalog {
		keys[i] = d.Key
	}
	return keys
}

// QuestionsFor returns the guiding questions for a dimension under the given
// document type.
func (d Dimension) QuestionsFor(t skill.Type) []string {
	if t == skill.TypeIndex {
		return d.IndexQuestions
	}
	return d.Questions
}

// Clamp forces a raw dimension score into [0, 100].
func Clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// WeightedScore computes the fixed-weight linear combination of raw
// dimension scores, clamping each raw value first. Missing dimensions
// contribute zero.
func WeightedScore(raw map[string]int) float64 {
	total := 0.0
	for _, d := range Catalog {
		total += float64(Clamp(raw[d.Key])) * d.Weight
	}
	return math.Round(total*100) / 100
}

// Validate checks the catalog configuration: weights in (0,1], summing to
// 1.0, unique keys. Called at startup so a miswired catalog is rejected
// before any document is scored.
func Validate() error {
	sum := 0.0
	seen := map[string]bool{}
	for _, d := range Catalog {
		if d.Weight <= 0 || d.Weight > 1 {
			return errors.Errorf("dimension %q has weight %v outside (0,1]", d.Key, d.Weight)
		}
		if seen[d.Key] {
			return errors.Errorf("duplicate dimension key %q", d.Key)
		}
		seen[d.Key] = true
		sum += d.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return errors.Errorf("dimension weights sum to %v, want 1.0", sum)
	}
	return nil
}
