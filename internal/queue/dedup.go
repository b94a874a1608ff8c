package queue

import (
	"fmt"

	"github.com/ternarybob/jobpipeline/internal/models"
)

// JobIdempotencyKey derives the dedup key for a JOB item: (type, subType,
// normalizedUrl), so the same posting URL can legitimately pass through
// FETCH, EXTRACT, FILTER, ANALYZE and SAVE without those sub-types
// colliding with each other in the idempotency index.
func JobIdempotencyKey(subType models.SubType, normalizedURL string) string {
	return fmt.Sprintf("%s:%s:%s", models.ItemTypeJob, subType, normalizedURL)
}

// CompanyIdempotencyKey derives the dedup key for a COMPANY item: (type,
// subType, canonicalCompanyName). Canonicalization itself
// (lowercase/strip legal suffixes/strip punctuation) lives on
// models.CanonicalCompanyKey, shared with Company's own DedupKey so a
// COMPANY QueueItem and its target Company record agree on identity.
func CompanyIdempotencyKey(subType models.SubType, companyName string) string {
	return fmt.Sprintf("%s:%s:%s", models.ItemTypeCompany, subType, models.CanonicalCompanyKey(companyName))
}
