package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// fakeAgentManager returns a queued sequence of responses/errors, one
// per Generate call, so a test can script a provider that misbehaves on
// its first N attempts before settling (or never settling).
type fakeAgentManager struct {
	responses []*interfaces.AgentResponse
	errs      []error
	calls     int
}

func (m *fakeAgentManager) Generate(ctx context.Context, req interfaces.AgentRequest) (*interfaces.AgentResponse, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return m.responses[len(m.responses)-1], nil
}

func (m *fakeAgentManager) SetScopeEnabled(scope interfaces.AgentScope, enabled bool) {}
func (m *fakeAgentManager) ScopeEnabled(scope interfaces.AgentScope) bool             { return true }
func (m *fakeAgentManager) Close() error                                             { return nil }

func validMatchResponse(model string) *interfaces.AgentResponse {
	return &interfaces.AgentResponse{
		Model: model,
		Text:  `{"score":80,"priority":"HIGH","summary":"strong fit","strengths":["golang"],"concerns":[]}`,
	}
}

func malformedMatchResponse(model string) *interfaces.AgentResponse {
	return &interfaces.AgentResponse{Model: model, Text: `{"score": "not-a-number"}`}
}

func TestAnalyzer_ReturnsMatchOnFirstValidResponse(t *testing.T) {
	agent := &fakeAgentManager{responses: []*interfaces.AgentResponse{validMatchResponse("gemini-2.5-flash")}}
	a := NewMatchAnalyzer(agent, arbor.NewLogger())

	listing := models.NewJobListing("src_1", "https://example.com/job/1")
	match, err := a.Analyze(context.Background(), listing)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.False(t, match.Degraded)
	assert.Equal(t, 80, match.Score)
	assert.Equal(t, 1, agent.calls)
}

func TestAnalyzer_RetriesThroughShapeFailuresThenSucceeds(t *testing.T) {
	agent := &fakeAgentManager{responses: []*interfaces.AgentResponse{
		malformedMatchResponse("gemini-2.5-flash"),
		malformedMatchResponse("gemini-2.5-flash"),
		validMatchResponse("gemini-2.5-flash"),
	}}
	a := NewMatchAnalyzer(agent, arbor.NewLogger())

	listing := models.NewJobListing("src_1", "https://example.com/job/1")
	match, err := a.Analyze(context.Background(), listing)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.False(t, match.Degraded)
	assert.Equal(t, 3, agent.calls)
}

func TestAnalyzer_DegradesAfterExhaustingShapeRetries(t *testing.T) {
	agent := &fakeAgentManager{responses: []*interfaces.AgentResponse{
		malformedMatchResponse("gemini-2.5-flash"),
		malformedMatchResponse("gemini-2.5-flash"),
		malformedMatchResponse("gemini-2.5-flash"),
	}}
	a := NewMatchAnalyzer(agent, arbor.NewLogger())

	listing := models.NewJobListing("src_1", "https://example.com/job/1")
	match, err := a.Analyze(context.Background(), listing)
	require.NoError(t, err, "shape exhaustion degrades rather than surfacing an error")
	require.NotNil(t, match)
	assert.True(t, match.Degraded)
	assert.Equal(t, 0, match.Score)
	assert.Equal(t, models.PriorityLow, match.Priority)
	assert.Equal(t, maxShapeRetries+1, agent.calls)
}

func TestAnalyzer_SurfacesGenerateErrorImmediatelyWithoutDegrading(t *testing.T) {
	agent := &fakeAgentManager{errs: []error{assert.AnError}}
	a := NewMatchAnalyzer(agent, arbor.NewLogger())

	listing := models.NewJobListing("src_1", "https://example.com/job/1")
	match, err := a.Analyze(context.Background(), listing)
	require.Error(t, err)
	assert.Nil(t, match)
	assert.Equal(t, 1, agent.calls)
}
