// Package model defines the core data structures for links-cli.
package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// MaxFieldLength bounds the domain and title of a Link, in characters, not
// bytes. Anything longer is assumed to be garbage or abuse and is dropped
// by the filter.
const MaxFieldLength = 200

var (
	// ErrEmptyDomain is returned when a link has no domain.
	ErrEmptyDomain = errors.New("link domain is empty")
	// ErrDomainTooLong is returned when a link domain exceeds MaxFieldLength.
	ErrDomainTooLong = errors.New("link domain exceeds maximum length")
	// ErrEmptyTitle is returned when a link has no title.
	ErrEmptyTitle = errors.New("link title is empty")
	// ErrTitleTooLong is returned when a link title exceeds MaxFieldLength.
	ErrTitleTooLong = errors.New("link title exceeds maximum length")
)

// Link is the canonical unit of content produced by the pipeline: one entry
// from one feed, normalized and ready for ranking.
type Link struct {
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
	// Num is the link's 1-based position in the global recency ordering.
	// Zero until the curator assigns it.
	Num int `json:"num"`
}

// Validate checks the length bounds that gate a link into the page set.
// It bounds size only; escaping untrusted text is the renderer's job.
func (l *Link) Validate() error {
	if len(l.Domain) == 0 {
		return ErrEmptyDomain
	}
	if utf8.RuneCountInString(l.Domain) > MaxFieldLength {
		return ErrDomainTooLong
	}
	if len(l.Title) == 0 {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(l.Title) > MaxFieldLength {
		return ErrTitleTooLong
	}
	return nil
}

// ParsedEntry is one item of a parsed feed. Title and Link are required for
// the owning feed to be usable; the timestamps are optional.
type ParsedEntry struct {
	Title     string
	Link      string
	Published *time.Time
	Updated   *time.Time
}

// ParsedFeed is the validated structural form of one fetched feed.
type ParsedFeed struct {
	// SourceURL is the URL the feed was fetched from, kept for diagnostics.
	SourceURL string
	// SiteLink is the feed's site-level link; link domains derive from it.
	SiteLink string
	Entries  []ParsedEntry
}

// DateGroup is a run of consecutive links on one page sharing a calendar date.
type DateGroup struct {
	// Label is the human-readable date, e.g. "December 13, 2003".
	Label string `json:"label"`
	Links []Link `json:"links"`
}

// Page is one fixed-capacity slice of the globally ranked link sequence,
// grouped by date. Pages are recomputed from scratch every run.
type Page struct {
	// Num is the 1-based page index.
	Num   int `json:"num"`
	Total int `json:"total"`
	// Prev and Next are site-internal references to the neighboring pages.
	// Prev is empty on page 1, Next is empty on the last page.
	Prev   string      `json:"prev,omitempty"`
	Next   string      `json:"next,omitempty"`
	Groups []DateGroup `json:"groups"`
}

// Links returns the page's links in order, flattening the date groups.
func (p *Page) Links() []Link {
	var links []Link
	for _, g := range p.Groups {
		links = append(links, g.Links...)
	}
	return links
}
