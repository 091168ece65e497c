package feed

import (
	"net/url"
	"time"

	"github.com/robertmeta/links-cli/model"
)

// Links maps a validated feed's entries into canonical links. The domain is
// derived once per feed from the site link's host; Num stays at its zero
// sentinel until the curator assigns the global rank.
func Links(pf *model.ParsedFeed) []model.Link {
	domain := Domain(pf.SiteLink)

	var links []model.Link
	for _, entry := range pf.Entries {
		links = append(links, model.Link{
			Domain:    domain,
			Title:     entry.Title,
			URL:       entry.Link,
			Published: resolveTimestamp(entry),
		})
	}
	return links
}

// Domain extracts the network-location component of a URL, dropping scheme
// and path. An unparseable URL yields an empty domain, which the filter
// rejects downstream.
func Domain(siteLink string) string {
	u, err := url.Parse(siteLink)
	if err != nil {
		return ""
	}
	return u.Host
}

// resolveTimestamp picks the entry's publication time. Published wins over
// updated when both are present: an entry that was republished should sort
// by its republish time. Entries with neither timestamp get the zero time
// and sort last, deterministically.
func resolveTimestamp(entry model.ParsedEntry) time.Time {
	ts := entry.Updated
	if entry.Published != nil {
		ts = entry.Published
	}
	if ts == nil {
		return time.Time{}
	}
	return truncateToMinute(*ts)
}

// truncateToMinute drops seconds, sub-second precision and the timezone
// name. Feed timestamp precision is unreliable across sources and the
// listing does not need finer resolution than the minute.
func truncateToMinute(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
