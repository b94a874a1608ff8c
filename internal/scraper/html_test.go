package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListingHTML = `
<html><body>
<a href="/jobs/1">Senior Go Engineer</a>
<a href="/jobs/2">Staff Platform Engineer</a>
<a href="https://other.example.com/jobs/3">External Job</a>
<a href="/jobs/1">Senior Go Engineer</a>
<a href="/about"></a>
</body></html>
`

func TestExtractListingsFromHTML(t *testing.T) {
	listings, err := extractListingsFromHTML(sampleListingHTML, "https://example.com/careers")
	require.NoError(t, err)

	require.Len(t, listings, 2)
	assert.Equal(t, "https://example.com/jobs/1", listings[0].URL)
	assert.Equal(t, "Senior Go Engineer", listings[0].Title)
	assert.Equal(t, "https://example.com/jobs/2", listings[1].URL)
}

func TestExtractListingsFromHTML_InvalidBaseURL(t *testing.T) {
	_, err := extractListingsFromHTML(sampleListingHTML, "://not-a-url")
	require.Error(t, err)
}
