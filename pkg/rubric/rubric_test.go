package rubric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvet/skillvet/pkg/skill"
)

func TestCatalogValidates(t *testing.T) {
	require.NoError(t, Validate())
}

func TestValidateRejectsBadWeights(t *testing.T) {
	original := Catalog
	defer func() { Catalog = original }()

	t.Run("weights not summing to 1.0", func(t *testing.T) {
		Catalog = []Dimension{
			{Key: "a", Weight: 0.5},
			{Key: "b", Weight: 0.4},
		}
		assert.Error(t, Validate())
	})

	t.Run("zero weight", func(t *testing.T) {
		Catalog = []Dimension{
			{Key: "a", Weight: 0},
			{Key: "b", Weight: 1.0},
		}
		assert.Error(t, Validate())
	})

	t.Run("duplicate key", func(t *testing.T) {
		Catalog = []Dimension{
			{Key: "a", Weight: 0.5},
			{Key: "a", Weight: 0.5},
		}
		assert.Error(t, Validate())
	})
}

func TestVerdictFor(t *testing.T) {
	tests := []struct {
		weighted float64
		expected Verdict
	}{
		{100, VerdictInstall},
		{75, VerdictInstall},
		{74.99, VerdictMaybe},
		{71.75, VerdictMaybe},
		{50, VerdictMaybe},
		{49.99, VerdictSkip},
		{0, VerdictSkip},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, VerdictFor(tt.weighted), "weighted=%v", tt.weighted)
	}
}

func TestWeightedScore(t *testing.T) {
	raw := map[string]int{
		"trigger_clarity":        90,
		"structure_completeness": 95,
		"step_executability":     20,
		"example_quality":        80,
		"scope_appropriateness":  90,
	}

	// 90×.2 + 95×.25 + 20×.25 + 80×.2 + 90×.1 = 71.75
	weighted := WeightedScore(raw)
	assert.InDelta(t, 71.75, weighted, 1e-9)
	assert.Equal(t, VerdictMaybe, VerdictFor(weighted))
}

func TestWeightedScoreClampsOutOfRange(t *testing.T) {
	raw := map[string]int{
		"trigger_clarity":        150,
		"structure_completeness": -20,
		"step_executability":     100,
		"example_quality":        100,
		"scope_appropriateness":  100,
	}

	// 100×.2 + 0×.25 + 100×.25 + 100×.2 + 100×.1 = 75
	assert.InDelta(t, 75.0, WeightedScore(raw), 1e-9)
}

func TestWeightedScoreMissingDimensionsCountZero(t *testing.T) {
	assert.InDelta(t, 20.0, WeightedScore(map[string]int{"trigger_clarity": 100}), 1e-9)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5))
	assert.Equal(t, 100, Clamp(101))
	assert.Equal(t, 42, Clamp(42))
}

func TestQuestionsFor(t *testing.T) {
	for _, d := range Catalog {
		assert.Equal(t, d.Questions, d.QuestionsFor(skill.TypeSelfContained))
		assert.Equal(t, d.IndexQuestions, d.QuestionsFor(skill.TypeIndex))
		assert.NotEmpty(t, d.IndexQuestions, "dimension %s needs index-rubric questions", d.Key)
	}
}
