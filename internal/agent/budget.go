package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// pricePerMillionTokens holds rough published per-model pricing, input
// and output, in USD per million tokens. Used only to keep the daily
// spend ledger in the right order of magnitude; exact billing is the
// provider's, not this pipeline's, concern.
var pricePerMillionTokens = map[string][2]float64{
	"gemini-3-flash-preview": {0.30, 2.50},
	"gemini-2.5-flash":       {0.30, 2.50},
	"gemini-2.5-pro":         {1.25, 10.00},
	"claude-haiku-4-5":       {1.00, 5.00},
	"claude-sonnet-4-5":      {3.00, 15.00},
}

const defaultInputPricePerMillion = 0.50
const defaultOutputPricePerMillion = 3.00

// estimateCost converts token counts into an estimated USD spend for the
// given model, falling back to a conservative default rate for models
// not in the pricing table.
func estimateCost(model string, inputTokens, outputTokens int) float64 {
	inPrice, outPrice := defaultInputPricePerMillion, defaultOutputPricePerMillion
	key := strings.ToLower(model)
	if rates, ok := pricePerMillionTokens[key]; ok {
		inPrice, outPrice = rates[0], rates[1]
	}
	return (float64(inputTokens)/1_000_000)*inPrice + (float64(outputTokens)/1_000_000)*outPrice
}

// budgetExhaustedError reports that a provider's daily spend has hit its
// configured cap.
type budgetExhaustedError struct {
	provider  string
	spent     float64
	limit     float64
	resumesAt time.Time
}

func (e *budgetExhaustedError) Error() string {
	return fmt.Sprintf("daily cost budget exhausted for provider %q: spent $%.4f of $%.2f limit, resumes %s",
		e.provider, e.spent, e.limit, e.resumesAt.Format(time.RFC3339))
}

// budgetGate enforces CostBudgetConfig's per-provider daily ceilings
// against the ledger before a provider call is allowed, then records the
// call's actual spend afterward. The limit applies per-provider so the
// Agent Manager's fallback loop can skip one over-budget provider and
// still try the next.
type budgetGate struct {
	cost   interfaces.CostStore
	config *common.CostBudgetConfig
	loc    *time.Location
}

func newBudgetGate(cost interfaces.CostStore, config *common.CostBudgetConfig) *budgetGate {
	loc, err := time.LoadLocation(config.Timezone)
	if err != nil || config.Timezone == "" {
		loc = time.UTC
	}
	return &budgetGate{cost: cost, config: config, loc: loc}
}

// check returns an error if provider has already exhausted its daily
// budget. It does not reserve spend; Generate may still slightly
// overshoot the limit on the call that crosses it, which is acceptable
// since the cap is advisory cost control, not hard metering. A provider
// with no configured ceiling is treated as unbounded.
func (g *budgetGate) check(ctx context.Context, provider string) error {
	limit, ok := g.config.LimitFor(provider)
	if !ok || limit <= 0 {
		return nil
	}
	now := time.Now()
	day := now.In(g.loc).Format("2006-01-02")
	spent, err := g.cost.SpendForDay(ctx, provider, day)
	if err != nil {
		return nil // fail open: a ledger read error should not block pipeline work
	}
	if spent >= limit {
		return &budgetExhaustedError{
			provider:  provider,
			spent:     spent,
			limit:     limit,
			resumesAt: models.NextDayBoundary(now, g.loc),
		}
	}
	return nil
}

// record persists the actual cost of a completed call.
func (g *budgetGate) record(ctx context.Context, scope, provider, model string, inputTokens, outputTokens int, success bool) {
	cost := estimateCost(model, inputTokens, outputTokens)
	entry := models.NewCostLedgerEntry(scope, provider, model, inputTokens, outputTokens, cost, success, g.loc)
	_ = g.cost.Record(ctx, entry)
}
