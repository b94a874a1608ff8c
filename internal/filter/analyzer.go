package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

const scopeAnalysis interfaces.AgentScope = "worker.analysis"

// maxShapeRetries bounds how many additional Agent Manager calls
// Analyze makes after an initial parse/validate failure before
// degrading instead of surfacing the failure as an error.
const maxShapeRetries = 2

// promptVersion is bumped whenever systemInstruction's rubric changes
// meaningfully enough that historical JobMatch rows should be
// distinguishable from ones scored under a different rubric.
const promptVersion = "v1"

// systemInstruction primes the model with the rubric once; the per-call
// prompt carries only the listing itself.
const systemInstruction = `You are a job-matching assistant. Given a job posting, score how well
it matches the candidate profile described in the operator's configuration, from 0 (no fit) to
100 (ideal fit). Respond with priority HIGH for scores that clear the high threshold, MEDIUM for
scores that clear the medium threshold, LOW for anything else that still warrants a look, and NONE
if the posting should not be surfaced at all. Be concise and specific in your summary.`

// MatchAnalyzer runs the AI scoring step over a JobListing that already
// passed the PreFilter, using the Agent Manager's worker.analysis scope.
// Grounded on the teacher's schema-validate-then-trust pattern
// (signal_analysis_schema.go): the raw model response is parsed, then
// validated with go-playground/validator before a JobMatch is built, so
// malformed AI output never silently becomes a stored match.
type MatchAnalyzer struct {
	agent  interfaces.AgentManager
	logger arbor.ILogger
}

// NewMatchAnalyzer constructs a MatchAnalyzer.
func NewMatchAnalyzer(agent interfaces.AgentManager, logger arbor.ILogger) *MatchAnalyzer {
	return &MatchAnalyzer{agent: agent, logger: logger}
}

var _ interfaces.MatchAnalyzer = (*MatchAnalyzer)(nil)

// Analyze asks the configured model to score listing and returns a
// validated JobMatch built from its response. A malformed response
// (parse or validation failure) is retried through the Agent Manager's
// fallback chain up to maxShapeRetries times; once exhausted, Analyze
// returns a degraded match (Score=0, Priority=Low, Degraded=true)
// instead of an error, so a persistently misbehaving model degrades the
// listing's outcome rather than failing the QueueItem outright.
func (a *MatchAnalyzer) Analyze(ctx context.Context, listing *models.JobListing) (*models.JobMatch, error) {
	prompt := buildAnalysisPrompt(listing)

	var lastShapeErr error
	var lastModel string
	for attempt := 0; attempt <= maxShapeRetries; attempt++ {
		resp, err := a.agent.Generate(ctx, interfaces.AgentRequest{
			Scope:             scopeAnalysis,
			SystemInstruction: systemInstruction,
			Prompt:            prompt,
			OutputSchema:      matchAnalysisJSONSchema(),
			MaxOutputTokens:   1024,
			Temperature:       0.2,
		})
		if err != nil {
			return nil, fmt.Errorf("match analysis call failed: %w", err)
		}
		lastModel = resp.Model

		parsed, err := parseMatchAnalysis(resp.Text)
		if err != nil {
			lastShapeErr = fmt.Errorf("parsing match analysis response: %w", err)
			a.logger.Warn().Int("attempt", attempt+1).Err(lastShapeErr).Msg("match analysis response had invalid shape, retrying")
			continue
		}
		if err := parsed.Validate(); err != nil {
			lastShapeErr = fmt.Errorf("match analysis response failed validation: %w", err)
			a.logger.Warn().Int("attempt", attempt+1).Err(lastShapeErr).Msg("match analysis response had invalid shape, retrying")
			continue
		}

		return models.NewJobMatch(
			listing.ID,
			parsed.Score,
			models.MatchPriority(parsed.Priority),
			parsed.Summary,
			parsed.Strengths,
			parsed.Concerns,
			resp.Model,
			promptVersion,
		), nil
	}

	a.logger.Warn().Str("listing_id", listing.ID).Err(lastShapeErr).Msg("match analysis shape retries exhausted, recording degraded match")
	return models.NewDegradedJobMatch(listing.ID, lastShapeErr.Error(), lastModel, promptVersion), nil
}

func buildAnalysisPrompt(listing *models.JobListing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", listing.Title)
	fmt.Fprintf(&b, "Company: %s\n", listing.CompanyName)
	fmt.Fprintf(&b, "Location: %s\n", listing.Location)
	if listing.Remote {
		b.WriteString("Remote: yes\n")
	}
	if listing.SalaryMin != nil || listing.SalaryMax != nil {
		fmt.Fprintf(&b, "Salary range: %.0f - %.0f %s\n", derefOr(listing.SalaryMin, 0), derefOr(listing.SalaryMax, 0), listing.SalaryCurrency)
	}
	b.WriteString("\nDescription:\n")
	b.WriteString(listing.Description)
	return b.String()
}

func derefOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
