package feed

import (
	"testing"
	"time"

	"github.com/robertmeta/links-cli/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestDomain(t *testing.T) {
	tests := []struct {
		name     string
		siteLink string
		want     string
	}{
		{"plain host", "http://example.org/", "example.org"},
		{"scheme and path stripped", "https://blog.example.org/posts/index.html", "blog.example.org"},
		{"port kept", "http://example.org:8080/feed", "example.org:8080"},
		{"no host", "not a url at all\x7f", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Domain(tt.siteLink))
		})
	}
}

func TestLinks_DerivesDomainOncePerFeed(t *testing.T) {
	updated := time.Date(2003, 12, 13, 18, 30, 2, 0, time.UTC)
	pf := &model.ParsedFeed{
		SourceURL: "http://example.org/feed.xml",
		SiteLink:  "http://example.org/",
		Entries: []model.ParsedEntry{
			{Title: "Entry 1", Link: "http://example.org/entry1", Updated: timePtr(updated)},
			{Title: "Entry 2", Link: "http://example.org/entry2", Updated: timePtr(updated)},
		},
	}

	links := Links(pf)
	require.Len(t, links, 2)
	for _, link := range links {
		assert.Equal(t, "example.org", link.Domain)
		assert.Zero(t, link.Num, "rank is assigned by the curator, not here")
	}
	assert.Equal(t, "Entry 1", links[0].Title)
	assert.Equal(t, "http://example.org/entry1", links[0].URL)
}

func TestLinks_TimestampResolution(t *testing.T) {
	published := time.Date(2003, 12, 10, 10, 0, 30, 0, time.UTC)
	updated := time.Date(2003, 12, 13, 18, 30, 2, 0, time.UTC)

	tests := []struct {
		name  string
		entry model.ParsedEntry
		want  time.Time
	}{
		{
			name:  "updated only, truncated to minute",
			entry: model.ParsedEntry{Title: "t", Link: "l", Updated: timePtr(updated)},
			want:  time.Date(2003, 12, 13, 18, 30, 0, 0, time.UTC),
		},
		{
			name: "published wins over updated",
			entry: model.ParsedEntry{
				Title: "t", Link: "l",
				Published: timePtr(published),
				Updated:   timePtr(updated),
			},
			want: time.Date(2003, 12, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "published only",
			entry: model.ParsedEntry{Title: "t", Link: "l", Published: timePtr(published)},
			want:  time.Date(2003, 12, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "no timestamps at all sorts last",
			entry: model.ParsedEntry{Title: "t", Link: "l"},
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := &model.ParsedFeed{SiteLink: "http://example.org/", Entries: []model.ParsedEntry{tt.entry}}
			links := Links(pf)
			require.Len(t, links, 1)
			assert.True(t, tt.want.Equal(links[0].Published),
				"want %v, got %v", tt.want, links[0].Published)
		})
	}
}

func TestLinks_TimezoneNameDropped(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)
	updated := time.Date(2003, 12, 13, 13, 30, 2, 0, loc) // 18:30:02 UTC

	pf := &model.ParsedFeed{
		SiteLink: "http://example.org/",
		Entries:  []model.ParsedEntry{{Title: "t", Link: "l", Updated: timePtr(updated)}},
	}

	links := Links(pf)
	require.Len(t, links, 1)
	assert.Equal(t, time.Date(2003, 12, 13, 18, 30, 0, 0, time.UTC), links[0].Published)
	assert.Equal(t, time.UTC, links[0].Published.Location())
}

func TestLinks_EmptyFeed(t *testing.T) {
	pf := &model.ParsedFeed{SiteLink: "http://example.org/"}
	assert.Empty(t, Links(pf))
}
