package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcounts/pkg/logger"
)

const ddgLegacyHTML = `<!DOCTYPE html><html><body>
<div class="serp__results">
  <div class="result web-result">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.instagram.com%2Friversidefc%2F&amp;rut=abc123">Riverside FC (@riversidefc)</a>
    </h2>
    <a class="result__snippet" href="#">714 Followers, 320 Following, 42 Posts - local football club</a>
  </div>
  <div class="result web-result">
    <h2 class="result__title">
      <a class="result__a" href="https://www.instagram.com/explore/tags/riverside/">#riverside hashtag</a>
    </h2>
    <a class="result__snippet" href="#">Browse photos and videos</a>
  </div>
</div>
</body></html>`

func TestLegacyDDGResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(ddgLegacyHTML))
	require.NoError(t, err)

	results := legacyDDGResults(doc)

	require.Len(t, results, 2)
	assert.Equal(t, "https://www.instagram.com/riversidefc/", results[0].URL, "redirect links are unwrapped")
	assert.Contains(t, results[0].Snippet, "714 Followers")
	assert.Equal(t, "https://www.instagram.com/explore/tags/riverside/", results[1].URL)
}

func TestDDGHTMLSearch(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "Riverside FC instagram site:instagram.com", r.URL.Query().Get("q"))
		fmt.Fprint(w, ddgLegacyHTML)
	}))
	defer srv.Close()

	p := NewDDGHTML("test-agent", 5*time.Second, logger.NewTestLogger())
	p.endpoint = srv.URL

	page, err := p.Search(context.Background(), "Riverside FC instagram site:instagram.com")

	require.NoError(t, err)
	assert.Equal(t, 1, hits)
	require.Len(t, page.Results, 2)
	assert.Contains(t, page.URL, srv.URL)
	assert.Contains(t, page.Text, "714 Followers")
}

func TestDDGHTMLRedetection(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, ddgLegacyHTML)
	}))
	defer srv.Close()

	p := NewDDGHTML("test-agent", 5*time.Second, logger.NewTestLogger())
	p.endpoint = srv.URL

	_, err := p.Search(context.Background(), "Riverside FC")
	require.NoError(t, err)
	require.Equal(t, 1, hits)

	// URL refreshes the page, Text reads the refreshed copy
	_, err = p.URL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hits)

	text, err := p.Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, hits, "Text must not fetch again")
	assert.Contains(t, text, "714 Followers")
}

func TestDDGHTMLBeforeAnySearch(t *testing.T) {
	p := NewDDGHTML("test-agent", time.Second, logger.NewTestLogger())

	u, err := p.URL(context.Background())
	require.NoError(t, err)
	assert.Empty(t, u)
}
