package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/models"
)

func newListing(title, description, location string, remote bool) *models.JobListing {
	l := models.NewJobListing("src_1", "https://example.com/job/1")
	l.Title = title
	l.Description = description
	l.Location = location
	l.Remote = remote
	now := time.Now()
	l.PostedAt = &now
	return l
}

func floatPtr(v float64) *float64 { return &v }

func TestPreFilter_RequiredKeywords(t *testing.T) {
	cfg := &common.PreFilterConfig{RequiredKeywords: []string{"golang", "rust"}}
	f := NewPreFilter(cfg, arbor.NewLogger())

	pass := newListing("Senior Golang Engineer", "build services", "Remote", true)
	assert.True(t, f.Apply(context.Background(), pass).Pass)

	fail := newListing("Senior Java Engineer", "build services", "Remote", true)
	result := f.Apply(context.Background(), fail)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Reason, "required keywords")
}

func TestPreFilter_ExcludedKeywords(t *testing.T) {
	cfg := &common.PreFilterConfig{ExcludedKeywords: []string{"unpaid internship"}}
	f := NewPreFilter(cfg, arbor.NewLogger())

	listing := newListing("Unpaid Internship - Marketing", "no pay", "Remote", true)
	result := f.Apply(context.Background(), listing)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Reason, "excluded keyword")
}

func TestPreFilter_RequireRemote(t *testing.T) {
	cfg := &common.PreFilterConfig{RequireRemote: true}
	f := NewPreFilter(cfg, arbor.NewLogger())

	onsite := newListing("Engineer", "desc", "New York, NY", false)
	result := f.Apply(context.Background(), onsite)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Reason, "not remote")
}

func TestPreFilter_AllowedLocations(t *testing.T) {
	cfg := &common.PreFilterConfig{AllowedLocations: []string{"Austin", "Remote"}}
	f := NewPreFilter(cfg, arbor.NewLogger())

	ok := newListing("Engineer", "desc", "Austin, TX", false)
	assert.True(t, f.Apply(context.Background(), ok).Pass)

	rejected := newListing("Engineer", "desc", "Chicago, IL", false)
	assert.False(t, f.Apply(context.Background(), rejected).Pass)
}

func TestPreFilter_MinSalary(t *testing.T) {
	cfg := &common.PreFilterConfig{MinSalary: 120000}
	f := NewPreFilter(cfg, arbor.NewLogger())

	listing := newListing("Engineer", "desc", "Remote", true)
	listing.SalaryMax = floatPtr(110000)
	result := f.Apply(context.Background(), listing)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Reason, "salary")

	listing.SalaryMax = floatPtr(150000)
	assert.True(t, f.Apply(context.Background(), listing).Pass)
}

func TestPreFilter_MissingSalaryDataDoesNotReject(t *testing.T) {
	cfg := &common.PreFilterConfig{MinSalary: 120000}
	f := NewPreFilter(cfg, arbor.NewLogger())

	listing := newListing("Engineer", "desc", "Remote", true)
	assert.True(t, f.Apply(context.Background(), listing).Pass)
}

func TestPreFilter_Freshness(t *testing.T) {
	cfg := &common.PreFilterConfig{MaxAgeDays: 7}
	f := NewPreFilter(cfg, arbor.NewLogger())

	listing := newListing("Engineer", "desc", "Remote", true)
	old := time.Now().AddDate(0, 0, -30)
	listing.PostedAt = &old
	result := f.Apply(context.Background(), listing)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Reason, "max_age_days")
}
