package links

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robertmeta/links-cli/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveFixture(t *testing.T, name string) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile("../testdata/" + name)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func deadServerURL(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()
	return url
}

func runPipeline(t *testing.T, cfg Config, archive *store.Store) *Summary {
	t.Helper()
	pipeline, err := New(cfg, archive, nil)
	require.NoError(t, err)
	pipeline.now = func() time.Time {
		return time.Date(2003, 12, 14, 12, 0, 0, 0, time.UTC)
	}

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	return summary
}

func TestPipeline_EndToEnd(t *testing.T) {
	valid := serveFixture(t, "atom1.0.xml")
	outDir := filepath.Join(t.TempDir(), "links")

	// One valid feed with two entries, one unreachable source. The run
	// must still produce a single page with both links ranked by recency.
	summary := runPipeline(t, Config{
		Sources:   []string{valid.URL, deadServerURL(t)},
		OutputDir: outDir,
		Timeout:   time.Second,
	}, nil)

	assert.Equal(t, 2, summary.Sources)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 1, summary.FeedsParsed)
	assert.Equal(t, 0, summary.FeedsRejected)
	assert.Equal(t, 2, summary.Links)
	assert.Equal(t, 1, summary.Pages)
	require.Len(t, summary.Files, 1)

	body, err := os.ReadFile(filepath.Join(outDir, "page-1.md"))
	require.NoError(t, err)
	content := string(body)

	assert.Contains(t, content, "Title: Links\n")
	assert.Contains(t, content, "December 13, 2003")
	assert.Contains(t, content, "December 12, 2003")
	assert.Contains(t, content, `1. <a href="http://example.org/entry1">Entry 1</a> (example.org)`)
	assert.Contains(t, content, `2. <a href="http://example.org/entry2">Entry 2</a> (example.org)`)
	assert.Contains(t, content, "2003-12-14 12:00 UTC")
}

func TestPipeline_RejectedFeedContributesNothing(t *testing.T) {
	valid := serveFixture(t, "atom1.0.xml")
	garbled := serveFixture(t, "missing-title.xml")
	linkless := serveFixture(t, "no-site-link.xml")

	summary := runPipeline(t, Config{
		Sources:   []string{valid.URL, garbled.URL, linkless.URL},
		OutputDir: t.TempDir(),
		Timeout:   time.Second,
	}, nil)

	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 1, summary.FeedsParsed)
	assert.Equal(t, 2, summary.FeedsRejected)
	assert.Equal(t, 2, summary.Links)
	assert.Equal(t, 1, summary.Pages)
}

func TestPipeline_ZeroLinksWritesNothing(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "links")

	summary := runPipeline(t, Config{
		Sources:   []string{deadServerURL(t)},
		OutputDir: outDir,
		Timeout:   time.Second,
	}, nil)

	assert.Equal(t, 0, summary.Fetched)
	assert.Equal(t, 0, summary.Pages)
	assert.Empty(t, summary.Files)

	// Zero pages means zero files and no output directory either.
	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestPipeline_EscapesMaliciousTitles(t *testing.T) {
	malicious := serveFixture(t, "malicious.xml")
	outDir := t.TempDir()

	summary := runPipeline(t, Config{
		Sources:   []string{malicious.URL},
		OutputDir: outDir,
		Timeout:   time.Second,
	}, nil)
	require.Equal(t, 1, summary.Pages)

	body, err := os.ReadFile(filepath.Join(outDir, "page-1.md"))
	require.NoError(t, err)
	assert.Contains(t, string(body), `<a href="http://example.org/entry1">&lt;/a&gt;</a>`)
}

func TestPipeline_Paginates(t *testing.T) {
	valid := serveFixture(t, "atom1.0.xml")
	outDir := t.TempDir()

	// Two links with a page size of one: two pages, linked to each other.
	summary := runPipeline(t, Config{
		Sources:   []string{valid.URL},
		OutputDir: outDir,
		PageSize:  1,
		Timeout:   time.Second,
	}, nil)

	assert.Equal(t, 2, summary.Pages)
	require.Len(t, summary.Files, 2)

	first, err := os.ReadFile(filepath.Join(outDir, "page-1.md"))
	require.NoError(t, err)
	assert.Contains(t, string(first), "[Older links]({filename}/links/page-2.md)")

	second, err := os.ReadFile(filepath.Join(outDir, "page-2.md"))
	require.NoError(t, err)
	assert.Contains(t, string(second), "Title: Links - page 2")
	assert.Contains(t, string(second), "[Newer links]({filename}/links/page-1.md)")
}

func serveAtom(t *testing.T, site, title string, delay time.Duration) *httptest.Server {
	t.Helper()
	raw := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>` + title + ` Feed</title>
  <link href="http://` + site + `/"/>
  <updated>2003-12-13T18:30:00Z</updated>
  <id>urn:` + site + `</id>
  <entry>
    <title>` + title + `</title>
    <link href="http://` + site + `/entry"/>
    <id>urn:` + site + `:entry</id>
    <updated>2003-12-13T18:30:00Z</updated>
  </entry>
</feed>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.Write([]byte(raw))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPipeline_TieRankingIgnoresFetchTiming(t *testing.T) {
	// Two feeds with identical minute-precision timestamps. The feed
	// listed first is served slowest: if completion order leaked into
	// tie-breaking, its link would be ranked second. Ranks must follow
	// the source-list order no matter which fetch finishes first.
	slow := serveAtom(t, "a.example", "Entry from a.example", 300*time.Millisecond)
	fast := serveAtom(t, "b.example", "Entry from b.example", 0)
	outDir := t.TempDir()

	summary := runPipeline(t, Config{
		Sources:     []string{slow.URL, fast.URL},
		OutputDir:   outDir,
		Concurrency: 2,
		Timeout:     5 * time.Second,
	}, nil)
	require.Equal(t, 2, summary.Links)

	body, err := os.ReadFile(filepath.Join(outDir, "page-1.md"))
	require.NoError(t, err)
	content := string(body)

	assert.Contains(t, content, `1. <a href="http://a.example/entry">Entry from a.example</a> (a.example)`)
	assert.Contains(t, content, `2. <a href="http://b.example/entry">Entry from b.example</a> (b.example)`)
}

func TestPipeline_ArchivesRun(t *testing.T) {
	valid := serveFixture(t, "atom1.0.xml")

	archive, err := store.New(":memory:")
	require.NoError(t, err)
	defer archive.Close()

	summary := runPipeline(t, Config{
		Sources:   []string{valid.URL},
		OutputDir: t.TempDir(),
		Timeout:   time.Second,
	}, archive)
	require.Equal(t, 1, summary.Pages)

	runs, err := archive.GetRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Pages)
	assert.Equal(t, 2, runs[0].LinkCount)

	links, err := archive.GetRunLinks(runs[0].ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "Entry 1", links[0].Title)
}
