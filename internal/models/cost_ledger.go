package models

import (
	"time"

	"github.com/google/uuid"
)

// CostLedgerEntry records the estimated spend of a single Agent Manager
// invocation, for daily budget enforcement and operator audit.
type CostLedgerEntry struct {
	ID        string `badgerhold:"key"`
	Scope     string `badgerholdIndex:"Scope"` // e.g. "worker.extraction", "worker.analysis"
	Provider  string `badgerholdIndex:"Provider"`
	Model     string
	InputTokens  int
	OutputTokens int
	EstimatedCostUSD float64
	Success   bool
	Day       string `badgerholdIndex:"Day"` // YYYY-MM-DD in the ledger's configured timezone
	Timestamp time.Time
}

// NewCostLedgerEntry stamps Day from timestamp in loc, so daily budget
// rollups are computed against the operator's local calendar day rather
// than UTC.
func NewCostLedgerEntry(scope, provider, model string, inputTokens, outputTokens int, estimatedCostUSD float64, success bool, loc *time.Location) *CostLedgerEntry {
	now := time.Now()
	return &CostLedgerEntry{
		ID:               "cl_" + uuid.New().String(),
		Scope:            scope,
		Provider:         provider,
		Model:            model,
		InputTokens:      inputTokens,
		OutputTokens:     outputTokens,
		EstimatedCostUSD: estimatedCostUSD,
		Success:          success,
		Day:              now.In(loc).Format("2006-01-02"),
		Timestamp:        now,
	}
}

// NextDayBoundary returns the instant the current local day rolls over
// in loc, the point at which a BudgetExhausted suspension lifts.
func NextDayBoundary(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, 1)
}
