package interfaces

import (
	"context"

	"github.com/ternarybob/jobpipeline/internal/models"
)

// Outcome is what a Processor tells the Queue Manager to do with the item
// it just handled, after a single sub-type step.
type Outcome struct {
	// NextSubType advances the item within its own lane; empty means the
	// lane is finished and the item should be marked Terminal.
	NextSubType models.SubType
	// Terminal, when set, is the terminal status to apply instead of
	// advancing (SUCCESS, FILTERED, SKIPPED, BLOCKED).
	Terminal models.ItemStatus
	// FanOut lists new child items to enqueue alongside this item's
	// transition (e.g. SCRAPE_SOURCE discovering individual job URLs).
	FanOut []*models.QueueItem
	// PayloadPatch is merged into the item's Payload before the next step
	// runs, carrying extracted/intermediate data forward between steps.
	PayloadPatch map[string]interface{}
}

// Processor is the per-item-type state machine the Queue Manager
// dispatches a claimed item to, grounded on the teacher's JobWorker
// interface (Execute/GetWorkerType/Validate) generalized to a step
// machine over SubType instead of a single atomic Execute.
type Processor interface {
	// Type reports which models.ItemType this processor handles.
	Type() models.ItemType
	// Process runs exactly one sub-step for item and reports what should
	// happen next. It must not itself persist the item; the Queue Manager
	// owns all state transitions and commits them atomically.
	Process(ctx context.Context, item *models.QueueItem) (Outcome, error)
}

// ProcessorRegistry looks up the Processor responsible for an item type.
type ProcessorRegistry interface {
	Register(p Processor)
	Get(itemType models.ItemType) (Processor, bool)
}
