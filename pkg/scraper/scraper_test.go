package scraper

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igcounts/pkg/block"
	"igcounts/pkg/checkpoint"
	"igcounts/pkg/config"
	"igcounts/pkg/extract"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
	"igcounts/pkg/ratelimit"
	"igcounts/pkg/search"
	"igcounts/pkg/ui"
)

// fakeProvider replays canned result pages in call order. After recovery
// the guard re-reads page state, which comes from redetect when set.
type fakeProvider struct {
	pages    []*search.Page
	calls    int
	err      error
	redetect *search.Page
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Search(ctx context.Context, query string) (*search.Page, error) {
	if p.err != nil {
		return nil, p.err
	}
	i := p.calls
	if i >= len(p.pages) {
		i = len(p.pages) - 1
	}
	p.calls++
	return p.pages[i], nil
}

func (p *fakeProvider) URL(ctx context.Context) (string, error) {
	if p.redetect != nil {
		return p.redetect.URL, nil
	}
	if p.calls > 0 {
		return p.pages[p.calls-1].URL, nil
	}
	return "", nil
}

func (p *fakeProvider) Text(ctx context.Context) (string, error) {
	if p.redetect != nil {
		return p.redetect.Text, nil
	}
	if p.calls > 0 {
		return p.pages[p.calls-1].Text, nil
	}
	return "", nil
}

type fakeMeta struct {
	desc  string
	err   error
	calls int
	urls  []string
}

func (f *fakeMeta) FetchDescription(ctx context.Context, profileURL string) (string, error) {
	f.calls++
	f.urls = append(f.urls, profileURL)
	return f.desc, f.err
}

type recordingAck struct {
	calls int
}

func (a *recordingAck) ack(ctx context.Context, message string) error {
	a.calls++
	return nil
}

func newTestScraper(provider search.Provider, meta extract.MetadataFetcher, ack *recordingAck) *Scraper {
	log := logger.GetLogger()
	ackFn := func(ctx context.Context, message string) error { return nil }
	if ack != nil {
		ackFn = ack.ack
	}
	return &Scraper{
		provider:  provider,
		guard:     block.NewGuard(ratelimit.Nop{}, nil, ackFn, log),
		extractor: extract.NewExtractor(meta, 0, 1, log),
		pacer:     ratelimit.Nop{},
		notifier:  ui.NewNotifier("none", false),
		config:    config.DefaultConfig(),
		logger:    log,
	}
}

func checkpointPath(t *testing.T) string {
	t.Helper()
	return t.TempDir() + "/counts.csv"
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunEndToEnd(t *testing.T) {
	subjects := []models.Subject{{Name: "Alice"}, {Name: "Bob"}}

	// Alice resolves from the snippet alone; Bob's snippet has no counts
	// and falls back to profile metadata.
	provider := &fakeProvider{pages: []*search.Page{
		{
			Results: []search.Result{{
				Title:   "Alice (@alice) - Instagram",
				URL:     "https://www.instagram.com/alice/",
				Snippet: "1.2K Following · 500 Followers · photographer",
			}},
			URL:  "https://duckduckgo.com/?q=alice",
			Text: "Alice results",
		},
		{
			Results: []search.Result{{
				Title:   "Bob (@bob) - Instagram",
				URL:     "https://m.instagram.com/bob?hl=en",
				Snippet: "Bob shares photos",
			}},
			URL:  "https://duckduckgo.com/?q=bob",
			Text: "Bob results",
		},
	}}
	meta := &fakeMeta{desc: "714 Followers, 320 Following, 42 Posts - See photos from Bob"}

	s := newTestScraper(provider, meta, nil)
	path := checkpointPath(t)
	require.NoError(t, s.Run(context.Background(), subjects, path, Resume{}))

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, "name,following,followers\n"))
	assert.Contains(t, content, "Alice,1200,500")
	assert.Contains(t, content, "Bob,320,714")

	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, 1, meta.calls, "metadata tier must run only for Bob")
	assert.Equal(t, []string{"https://www.instagram.com/bob/"}, meta.urls)

	// A complete checkpoint makes the next pass a no-op.
	again := &fakeProvider{pages: provider.pages}
	s2 := newTestScraper(again, &fakeMeta{}, nil)
	require.NoError(t, s2.Run(context.Background(), subjects, path, Resume{}))
	assert.Zero(t, again.calls, "full checkpoint must not trigger searches")
}

func TestRunRecoversFromBlock(t *testing.T) {
	subjects := []models.Subject{{Name: "Carol"}}

	blocked := &search.Page{
		URL:  "https://www.google.com/sorry/index?continue=x",
		Text: "Our systems have detected unusual traffic from your computer network",
	}
	clear := &search.Page{
		Results: []search.Result{{
			URL:     "https://www.instagram.com/carol/",
			Snippet: "900 Following · 1.5K Followers",
		}},
		URL:  "https://www.google.com/search?q=carol",
		Text: "carol results",
	}

	provider := &fakeProvider{pages: []*search.Page{blocked, clear}, redetect: clear}
	ack := &recordingAck{}
	s := newTestScraper(provider, nil, ack)

	path := checkpointPath(t)
	require.NoError(t, s.Run(context.Background(), subjects, path, Resume{}))

	assert.Equal(t, 1, ack.calls, "operator must be prompted once")
	assert.Equal(t, 2, provider.calls, "subject must be retried after recovery")
	assert.Contains(t, readFile(t, path), "Carol,900,1500")
}

func TestRunSearchFailureRecordsEmptyRow(t *testing.T) {
	subjects := []models.Subject{{Name: "Dave"}}
	provider := &fakeProvider{err: errors.New("net/http: TLS handshake timeout")}
	s := newTestScraper(provider, nil, nil)

	path := checkpointPath(t)
	require.NoError(t, s.Run(context.Background(), subjects, path, Resume{}))

	assert.Contains(t, readFile(t, path), "Dave,,")
}

func TestRunCancelledBeforeStart(t *testing.T) {
	subjects := []models.Subject{{Name: "Erin"}}
	provider := &fakeProvider{pages: []*search.Page{{}}}
	s := newTestScraper(provider, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, subjects, checkpointPath(t), Resume{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, provider.calls)
}

func TestRunGapsSelectorTouchesOnlyGaps(t *testing.T) {
	subjects := []models.Subject{{Name: "Alice"}, {Name: "Bob"}, {Name: "Carol"}}

	path := checkpointPath(t)
	mgr := checkpoint.NewManager(path)
	require.NoError(t, mgr.Save([]models.CountsRow{
		{Name: "Alice", Following: "10", Followers: "20"},
		{Name: "Bob", Following: "30"},
		{Name: "Carol", Following: "50", Followers: "60"},
	}))

	provider := &fakeProvider{pages: []*search.Page{{
		Results: []search.Result{{
			URL:     "https://www.instagram.com/bob/",
			Snippet: "30 Following · 40 Followers",
		}},
		URL:  "https://duckduckgo.com/?q=bob",
		Text: "bob results",
	}}}
	s := newTestScraper(provider, nil, nil)
	require.NoError(t, s.Run(context.Background(), subjects, path, Gaps{}))

	content := readFile(t, path)
	assert.Contains(t, content, "Alice,10,20")
	assert.Contains(t, content, "Bob,30,40")
	assert.Contains(t, content, "Carol,50,60")
	assert.Equal(t, 1, provider.calls, "only the gap row searches")
}

func TestRunFallsBackToKnownHandle(t *testing.T) {
	subjects := []models.Subject{{Name: "Dana Example", Handle: "dana_real"}}

	// No profile link among the results, but the roster already knows the
	// handle, so the metadata tier still gets a URL to fetch.
	provider := &fakeProvider{pages: []*search.Page{{
		Results: []search.Result{
			{URL: "https://www.instagram.com/p/abc123/", Snippet: "a post"},
			{URL: "https://en.wikipedia.org/wiki/Dana", Snippet: "an encyclopedia"},
		},
		URL:  "https://duckduckgo.com/?q=dana",
		Text: "dana results",
	}}}
	meta := &fakeMeta{desc: "88 Followers, 77 Following, 5 Posts"}
	s := newTestScraper(provider, meta, nil)

	path := checkpointPath(t)
	require.NoError(t, s.Run(context.Background(), subjects, path, Resume{}))

	assert.Equal(t, []string{"https://www.instagram.com/dana_real/"}, meta.urls)
	assert.Contains(t, readFile(t, path), "Dana Example,77,88")
}
