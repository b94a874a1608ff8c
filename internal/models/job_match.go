package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchPriority is the AI-assigned triage bucket for a JobMatch.
type MatchPriority string

const (
	PriorityHigh   MatchPriority = "HIGH"
	PriorityMedium MatchPriority = "MEDIUM"
	PriorityLow    MatchPriority = "LOW"
	PriorityNone   MatchPriority = "NONE"
)

// clampScore constrains an AI-reported score into [0,100].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ValidPriority reports whether p is one of the defined enum values,
// used to reject malformed AI output rather than coerce it silently.
func ValidPriority(p MatchPriority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityNone:
		return true
	default:
		return false
	}
}

// JobMatch is the structured result of running the Filter Engine's AI
// analyzer against a JobListing.
type JobMatch struct {
	ID         string `badgerhold:"key"`
	ListingID  string `badgerholdIndex:"ListingID"`

	Score      int
	Priority   MatchPriority `badgerholdIndex:"Priority"`
	Summary    string
	Strengths  []string
	Concerns   []string
	Model      string
	PromptVersion string

	// Degraded marks a match produced after the Agent Manager's analysis
	// shape validation was exhausted across every retry, rather than a
	// genuine AI score. Score=0/Priority=Low in this case records an
	// audit trail, not a real assessment, and must not be treated as
	// "scored below threshold" by anything downstream.
	Degraded bool

	CreatedAt time.Time `badgerholdIndex:"CreatedAt"`
}

// NewJobMatch clamps Score to [0,100] and rejects an invalid Priority by
// downgrading it to NONE, so a malformed AI response can never silently
// masquerade as a high-priority match.
func NewJobMatch(listingID string, score int, priority MatchPriority, summary string, strengths, concerns []string, model, promptVersion string) *JobMatch {
	if !ValidPriority(priority) {
		priority = PriorityNone
	}
	return &JobMatch{
		ID:            "jm_" + uuid.New().String(),
		ListingID:     listingID,
		Score:         clampScore(score),
		Priority:      priority,
		Summary:       summary,
		Strengths:     strengths,
		Concerns:      concerns,
		Model:         model,
		PromptVersion: promptVersion,
		CreatedAt:     time.Now(),
	}
}

// NewDegradedJobMatch builds the terminal match recorded when analysis
// shape validation is exhausted: Score=0, Priority=Low, Degraded=true,
// with reason folded into Summary for operator audit.
func NewDegradedJobMatch(listingID, reason, model, promptVersion string) *JobMatch {
	match := NewJobMatch(listingID, 0, PriorityLow, "degraded: "+reason, nil, nil, model, promptVersion)
	match.Degraded = true
	return match
}
