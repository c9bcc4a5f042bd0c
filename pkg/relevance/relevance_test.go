package relevance

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("no reply configured")
}

var testProfile = Profile{
	TechStack:   []string{"go", "postgres"},
	ProjectType: "backend service",
}

var testCandidates = []Candidate{
	{Name: "sql-migrations", WeightedScore: 88, Summary: "manage schema migrations safely"},
	{Name: "react-component-gen", WeightedScore: 91, Summary: "scaffold React components"},
	{Name: "api-error-design", WeightedScore: 76, Summary: "consistent API error payloads"},
}

func TestMatchCorrelatesByName(t *testing.T) {
	// Reply deliberately out of order relative to the candidate list.
	reply := `{"matches": [
		{"name": "api-error-design", "relevance": 80, "reason": "backend APIs need this"},
		{"name": "sql-migrations", "relevance": 95, "reason": "postgres in stack"},
		{"name": "react-component-gen", "relevance": 5, "reason": "no frontend"}
	]}`
	svc := &fakeService{replies: []string{reply}}
	m := NewMatcher(svc)

	scores, err := m.Match(context.Background(), testProfile, testCandidates)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.Equal(t, 95, scores["sql-migrations"].Relevance)
	assert.Equal(t, 5, scores["react-component-gen"].Relevance)
	assert.Equal(t, 80, scores["api-error-design"].Relevance)
	assert.Equal(t, 1, svc.calls, "must be a single batched call")
}

func TestMatchMissingCandidateGetsUnscored(t *testing.T) {
	reply := `{"matches": [
		{"name": "sql-migrations", "relevance": 95, "reason": "postgres in stack"}
	]}`
	svc := &fakeService{replies: []string{reply}}
	m := NewMatcher(svc)

	scores, err := m.Match(context.Background(), testProfile, testCandidates)
	require.NoError(t, err)

	assert.Equal(t, 0, scores["react-component-gen"].Relevance)
	assert.Equal(t, "unscored", scores["react-component-gen"].Reason)
	assert.Equal(t, 0, scores["api-error-design"].Relevance)
	assert.Equal(t, 95, scores["sql-migrations"].Relevance)
}

func TestMatchUnknownNameInReplyIgnored(t *testing.T) {
	reply := `{"matches": [
		{"name": "something-else-entirely", "relevance": 99, "reason": "hallucinated"},
		{"name": "sql-migrations", "relevance": 90, "reason": "postgres in stack"}
	]}`
	svc := &fakeService{replies: []string{reply}}
	m := NewMatcher(svc)

	scores, err := m.Match(context.Background(), testProfile, testCandidates)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.NotContains(t, scores, "something-else-entirely")
	assert.Equal(t, 90, scores["sql-migrations"].Relevance)
}

func TestMatchClampsOutOfRangeRelevance(t *testing.T) {
	reply := `{"matches": [
		{"name": "sql-migrations", "relevance": 150, "reason": "over"},
		{"name": "react-component-gen", "relevance": -10, "reason": "under"},
		{"name": "api-error-design", "relevance": 50, "reason": "in range"}
	]}`
	svc := &fakeService{replies: []string{reply}}
	m := NewMatcher(svc)

	scores, err := m.Match(context.Background(), testProfile, testCandidates)
	require.NoError(t, err)
	assert.Equal(t, 100, scores["sql-migrations"].Relevance)
	assert.Equal(t, 0, scores["react-component-gen"].Relevance)
	assert.Equal(t, 50, scores["api-error-design"].Relevance)
}

func TestMatchEmptyProfileFailsFast(t *testing.T) {
	svc := &fakeService{}
	m := NewMatcher(svc)

	_, err := m.Match(context.Background(), Profile{}, testCandidates)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProfileMissing))
	assert.Equal(t, 0, svc.calls)
}

func TestMatchNoCandidates(t *testing.T) {
	svc := &fakeService{}
	m := NewMatcher(svc)

	scores, err := m.Match(context.Background(), testProfile, nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
	assert.Equal(t, 0, svc.calls)
}

func TestMatchRepairsMalformedResponse(t *testing.T) {
	good := `{"matches": [{"name": "sql-migrations", "relevance": 90, "reason": "fits"}]}`
	svc := &fakeService{replies: []string{"Sure! Here are the ratings:", good}}
	m := NewMatcher(svc)

	scores, err := m.Match(context.Background(), testProfile, testCandidates[:1])
	require.NoError(t, err)
	assert.Equal(t, 2, svc.calls)
	assert.Contains(t, svc.prompts[1], "could not be parsed")
	assert.Equal(t, 90, scores["sql-migrations"].Relevance)
}

func TestMatchUnavailableAfterFailedRepair(t *testing.T) {
	svc := &fakeService{replies: []string{"nope", "still nope"}}
	m := NewMatcher(svc)

	_, err := m.Match(context.Background(), testProfile, testCandidates)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMatchUnavailable))
}

func TestMatchUnavailableOnServiceError(t *testing.T) {
	svc := &fakeService{errs: []error{errors.New("rate limit exceeded")}}
	m := NewMatcher(svc)

	_, err := m.Match(context.Background(), testProfile, testCandidates)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMatchUnavailable))
}

func TestMatchPromptListsCandidates(t *testing.T) {
	reply := `{"matches": []}`
	svc := &fakeService{replies: []string{reply}}
	m := NewMatcher(svc)

	_, err := m.Match(context.Background(), testProfile, testCandidates)
	require.NoError(t, err)
	assert.Contains(t, svc.prompts[0], "[sql-migrations]")
	assert.Contains(t, svc.prompts[0], "go, postgres")
	assert.Contains(t, svc.prompts[0], "backend service")
}
