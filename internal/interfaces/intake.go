package interfaces

import "context"

// Intake is the external entry point that accepts a user- or operator-
// submitted job posting URL and turns it into a root JOB QueueItem.
type Intake interface {
	SubmitURL(ctx context.Context, rawURL string) (itemID string, err error)
}
