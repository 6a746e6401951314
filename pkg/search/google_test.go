package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcounts/pkg/logger"
)

const googleHTML = `<!DOCTYPE html><html><body><div id="search">
<div class="g">
  <a href="https://www.instagram.com/riversidefc/"><h3>Riverside FC (@riversidefc) &bull; Instagram photos</h3></a>
  <div><span>2.5M Followers, 100 Following, 1,024 Posts</span></div>
</div>
<div class="g">
  <a href="https://www.instagram.com/explore/tags/football/"><h3>#football</h3></a>
  <div><span>browse the latest posts</span></div>
</div>
</div></body></html>`

const googleAnchorOnlyHTML = `<!DOCTYPE html><html><body><div id="search">
<div><a href="https://www.instagram.com/riversidefc/"><h3>Riverside FC</h3></a></div>
<a href="/search?q=riverside&start=10">Next</a>
<a href="https://maps.google.com/maps?q=riverside">Maps</a>
<a href="https://webcache.googleusercontent.com/search?q=cache:xyz">Cached</a>
</div></body></html>`

func TestParseGoogle(t *testing.T) {
	results := parseGoogle(googleHTML)

	require.Len(t, results, 2)
	assert.Equal(t, "https://www.instagram.com/riversidefc/", results[0].URL)
	assert.Contains(t, results[0].Title, "Riverside FC")
	assert.Contains(t, results[0].Snippet, "2.5M Followers")
}

func TestParseGoogleAnchorFallback(t *testing.T) {
	results := parseGoogle(googleAnchorOnlyHTML)

	require.Len(t, results, 1, "internal and cache links are skipped")
	assert.Equal(t, "https://www.instagram.com/riversidefc/", results[0].URL)
}

func TestGoogleSearch(t *testing.T) {
	session := &fakeSession{
		html: googleHTML,
		url:  "https://www.google.com/search?q=riverside",
		text: "results text",
	}
	p := NewGoogle(session, logger.NewTestLogger())

	page, err := p.Search(context.Background(), "Riverside FC instagram site:instagram.com")

	require.NoError(t, err)
	require.Len(t, session.navigated, 1)
	assert.Contains(t, session.navigated[0], "https://www.google.com/search?hl=en&q=")
	assert.Len(t, page.Results, 2)
	assert.Equal(t, session.url, page.URL)
}
