package scorer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvet/skillvet/pkg/rubric"
	"github.com/skillvet/skillvet/pkg/skill"
)

// fakeService plays back canned JSON replies in order.
type fakeService struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.GenerateJSON(ctx, prompt)
}

func (f *fakeService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("no more canned replies")
}

func scoresJSON(trigger, structure, steps, examples, scope int, verdict string) string {
	return fmt.Sprintf(`{
		"scores": {
			"trigger_clarity":        {"score": %d, "strengths": [], "weaknesses": [], "suggestions": []},
			"structure_completeness": {"score": %d, "strengths": [], "weaknesses": [], "suggestions": []},
			"step_executability":     {"score": %d, "strengths": [], "weaknesses": [], "suggestions": []},
			"example_quality":        {"score": %d, "strengths": [], "weaknesses": [], "suggestions": []},
			"scope_appropriateness":  {"score": %d, "strengths": [], "weaknesses": [], "suggestions": []}
		},
		"overall_summary": "fine",
		"top_issues": [],
		"verdict": "%s"
	}`, trigger, structure, steps, examples, scope, verdict)
}

func testDoc() skill.Document {
	return skill.New("db-migration", "db-migration", "# Migration Safety\n\n## Steps\n1. Do the thing.\n")
}

func TestScore_WeightedScoreAndVerdict(t *testing.T) {
	svc := &fakeService{replies: []string{scoresJSON(90, 95, 20, 80, 90, "INSTALL")}}
	s, err := New(svc)
	require.NoError(t, err)

	result, err := s.Score(context.Background(), testDoc())
	require.NoError(t, err)

	assert.InDelta(t, 71.75, result.WeightedScore, 1e-9)
	assert.Equal(t, rubric.VerdictMaybe, result.Verdict)
	assert.Equal(t, skill.TypeSelfContained, result.SkillType)
}

func TestScore_OverridesServiceVerdict(t *testing.T) {
	// 80×.2 + 80×.25 + 75×.25 + 75×.2 + 70×.1 = 76.75 ⇒ INSTALL even
	// though the service rationalized a MAYBE.
	svc := &fakeService{replies: []string{scoresJSON(80, 80, 75, 75, 70, "MAYBE")}}
	s, err := New(svc)
	require.NoError(t, err)

	result, err := s.Score(context.Background(), testDoc())
	require.NoError(t, err)

	assert.InDelta(t, 76.75, result.WeightedScore, 1e-9)
	assert.Equal(t, rubric.VerdictInstall, result.Verdict)
}

func TestScore_ClampsOutOfRangeScores(t *testing.T) {
	svc := &fakeService{replies: []string{scoresJSON(150, -10, 100, 100, 100, "INSTALL")}}
	s, err := New(svc)
	require.NoError(t, err)

	result, err := s.Score(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, 100, result.Dimensions["trigger_clarity"].Score)
	assert.Equal(t, 0, result.Dimensions["structure_completeness"].Score)
	assert.InDelta(t, 75.0, result.WeightedScore, 1e-9)
}

func TestScore_RepairsMalformedResponse(t *testing.T) {
	svc := &fakeService{replies: []string{
		`here are your scores! {"scores": broken`,
		scoresJSON(60, 60, 60, 60, 60, "MAYBE"),
	}}
	s, err := New(svc)
	require.NoError(t, err)

	result, err := s.Score(context.Background(), testDoc())
	require.NoError(t, err)

	assert.Equal(t, 2, svc.calls)
	assert.Contains(t, svc.prompts[1], "JSON schema")
	assert.InDelta(t, 60.0, result.WeightedScore, 1e-9)
}

func TestScore_MalformedAfterRepairFails(t *testing.T) {
	svc := &fakeService{replies: []string{`not json`, `still not json`}}
	s, err := New(svc)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), testDoc())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestScore_MissingDimensionIsMalformed(t *testing.T) {
	partial := `{
		"scores": {"trigger_clarity": {"score": 80}},
		"overall_summary": "short", "top_issues": [], "verdict": "MAYBE"
	}`
	svc := &fakeService{replies: []string{partial, partial}}
	s, err := New(svc)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), testDoc())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestScore_ServiceUnavailable(t *testing.T) {
	svc := &fakeService{errs: []error{errors.New("all retry attempts failed")}}
	s, err := New(svc)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), testDoc())
	assert.ErrorIs(t, err, ErrScoringUnavailable)
}

func TestScore_IndexDocumentUsesIndexRubric(t *testing.T) {
	indexContent := "Quick reference. Read individual rule files.\n`a.md` `b.md` `c.md`\n"
	doc := skill.New("rules-index", "rules-index", indexContent)
	require.Equal(t, skill.TypeIndex, doc.Type)

	svc := &fakeService{replies: []string{scoresJSON(70, 70, 70, 70, 70, "MAYBE")}}
	s, err := New(svc)
	require.NoError(t, err)

	result, err := s.Score(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, skill.TypeIndex, result.SkillType)
	assert.Contains(t, svc.prompts[0], "INDEX document")
	assert.Contains(t, svc.prompts[0], "navigation")
}

func TestScoreAll_PerDocumentFailuresDoNotAbortBatch(t *testing.T) {
	svc := &orderedFakeService{
		byContent: map[string]reply{
			"good doc": {body: scoresJSON(80, 80, 80, 80, 80, "INSTALL")},
			"bad doc":  {err: errors.New("service unavailable")},
		},
	}
	s, err := New(svc)
	require.NoError(t, err)

	docs := []skill.Document{
		skill.New("good", "good", "good doc"),
		skill.New("bad", "bad", "bad doc"),
	}

	items := s.ScoreAll(context.Background(), docs, 2)
	require.Len(t, items, 2)

	assert.NoError(t, items[0].Err)
	assert.NotNil(t, items[0].Result)
	assert.ErrorIs(t, items[1].Err, ErrScoringUnavailable)
	assert.Nil(t, items[1].Result)
}

func TestScoreAll_CancelledBatchKeepsCompletedResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := &fakeService{}
	s, err := New(svc)
	require.NoError(t, err)

	docs := []skill.Document{skill.New("a", "a", "a"), skill.New("b", "b", "b")}
	items := s.ScoreAll(ctx, docs, 1)

	require.Len(t, items, 2)
	for _, item := range items {
		assert.Error(t, item.Err)
	}
	assert.Zero(t, svc.calls)
}

// orderedFakeService selects the reply by document content embedded in the
// prompt, so concurrent batches stay deterministic.
type reply struct {
	body string
	err  error
}

type orderedFakeService struct {
	byContent map[string]reply
}

func (f *orderedFakeService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.GenerateJSON(ctx, prompt)
}

func (f *orderedFakeService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	for content, r := range f.byContent {
		if strings.Contains(prompt, content) {
			return r.body, r.err
		}
	}
	return "", errors.New("unexpected prompt")
}
