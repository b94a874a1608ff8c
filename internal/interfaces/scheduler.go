package interfaces

import "context"

// Scheduler drives cron-triggered source polling, the worker pool that
// claims and processes QueueItems, and periodic lease reclamation.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
