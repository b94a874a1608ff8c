package filter

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// PreFilter applies the deterministic keyword/location/salary/freshness
// checks configured in PreFilterConfig, in cheapest-first order, so a
// listing is rejected before any AI call is considered. Grounded on
// services/crawler/filters.go's LinkFilter — same
// compile-once-then-apply shape and same "check cheapest rejection
// first" ordering, generalized from URL include/exclude regexes to
// job-field predicates.
type PreFilter struct {
	config *common.PreFilterConfig
	logger arbor.ILogger
}

// NewPreFilter constructs a PreFilter from config.
func NewPreFilter(config *common.PreFilterConfig, logger arbor.ILogger) *PreFilter {
	return &PreFilter{config: config, logger: logger}
}

var _ interfaces.PreFilter = (*PreFilter)(nil)

// Apply runs every configured check against listing, short-circuiting
// on the first failure.
func (f *PreFilter) Apply(ctx context.Context, listing *models.JobListing) interfaces.PreFilterResult {
	if res := f.checkFreshness(listing); !res.Pass {
		return res
	}
	if res := f.checkExcludedKeywords(listing); !res.Pass {
		return res
	}
	if res := f.checkRequiredKeywords(listing); !res.Pass {
		return res
	}
	if res := f.checkLocation(listing); !res.Pass {
		return res
	}
	if res := f.checkSalary(listing); !res.Pass {
		return res
	}
	return interfaces.PreFilterResult{Pass: true}
}

func (f *PreFilter) checkFreshness(listing *models.JobListing) interfaces.PreFilterResult {
	if f.config.MaxAgeDays <= 0 || listing.PostedAt == nil {
		return interfaces.PreFilterResult{Pass: true}
	}
	cutoff := time.Now().AddDate(0, 0, -f.config.MaxAgeDays)
	if listing.PostedAt.Before(cutoff) {
		return interfaces.PreFilterResult{Pass: false, Reason: "posting is older than max_age_days"}
	}
	return interfaces.PreFilterResult{Pass: true}
}

func (f *PreFilter) checkExcludedKeywords(listing *models.JobListing) interfaces.PreFilterResult {
	if len(f.config.ExcludedKeywords) == 0 {
		return interfaces.PreFilterResult{Pass: true}
	}
	haystack := searchableText(listing)
	for _, kw := range f.config.ExcludedKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return interfaces.PreFilterResult{Pass: false, Reason: "matched excluded keyword: " + kw}
		}
	}
	return interfaces.PreFilterResult{Pass: true}
}

func (f *PreFilter) checkRequiredKeywords(listing *models.JobListing) interfaces.PreFilterResult {
	if len(f.config.RequiredKeywords) == 0 {
		return interfaces.PreFilterResult{Pass: true}
	}
	haystack := searchableText(listing)
	for _, kw := range f.config.RequiredKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return interfaces.PreFilterResult{Pass: true}
		}
	}
	return interfaces.PreFilterResult{Pass: false, Reason: "matched none of the required keywords"}
}

func (f *PreFilter) checkLocation(listing *models.JobListing) interfaces.PreFilterResult {
	if f.config.RequireRemote && !listing.Remote {
		return interfaces.PreFilterResult{Pass: false, Reason: "listing is not remote"}
	}
	if len(f.config.AllowedLocations) == 0 || listing.Remote {
		return interfaces.PreFilterResult{Pass: true}
	}
	location := strings.ToLower(listing.Location)
	for _, allowed := range f.config.AllowedLocations {
		if allowed == "" {
			continue
		}
		if strings.Contains(location, strings.ToLower(allowed)) {
			return interfaces.PreFilterResult{Pass: true}
		}
	}
	return interfaces.PreFilterResult{Pass: false, Reason: "location not in allowed_locations"}
}

func (f *PreFilter) checkSalary(listing *models.JobListing) interfaces.PreFilterResult {
	if f.config.MinSalary <= 0 {
		return interfaces.PreFilterResult{Pass: true}
	}
	if listing.SalaryMax == nil && listing.SalaryMin == nil {
		return interfaces.PreFilterResult{Pass: true} // no salary data to judge, don't reject blind
	}
	best := 0.0
	if listing.SalaryMax != nil {
		best = *listing.SalaryMax
	} else if listing.SalaryMin != nil {
		best = *listing.SalaryMin
	}
	if best < f.config.MinSalary {
		return interfaces.PreFilterResult{Pass: false, Reason: "salary below min_salary"}
	}
	return interfaces.PreFilterResult{Pass: true}
}

func searchableText(listing *models.JobListing) string {
	return strings.ToLower(listing.Title + " " + listing.Description)
}
