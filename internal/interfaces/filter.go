package interfaces

import (
	"context"

	"github.com/ternarybob/jobpipeline/internal/models"
)

// PreFilterResult is the deterministic (non-AI) verdict on a listing.
type PreFilterResult struct {
	Pass   bool
	Reason string
}

// PreFilter applies keyword/location/salary/freshness rules before any
// AI call is made, so the Agent Manager's budget is only spent on
// listings that already clear the cheap checks.
type PreFilter interface {
	Apply(ctx context.Context, listing *models.JobListing) PreFilterResult
}

// MatchAnalyzer runs the AI match analysis step, producing a validated
// JobMatch from a JobListing that passed the PreFilter.
type MatchAnalyzer interface {
	Analyze(ctx context.Context, listing *models.JobListing) (*models.JobMatch, error)
}
