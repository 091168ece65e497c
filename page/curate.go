// Package page turns the flat set of surviving links into ranked,
// fixed-size, date-grouped pages.
package page

import (
	"fmt"
	"sort"
	"time"

	"github.com/robertmeta/links-cli/model"
)

// DefaultPageSize is the number of links per page.
const DefaultPageSize = 30

// Build sorts the links by recency, assigns global ranks, slices the
// sequence into fixed-size pages and groups each page by calendar date.
// Zero links yield zero pages, never one empty page.
func Build(links []model.Link, pageSize int) []model.Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if len(links) == 0 {
		return nil
	}

	ranked := sortAndRank(links)
	chunks := paginate(ranked, pageSize)

	pages := make([]model.Page, 0, len(chunks))
	for i, chunk := range chunks {
		p := model.Page{
			Num:    i + 1,
			Total:  len(chunks),
			Groups: groupByDate(chunk),
		}
		if p.Num > 1 {
			p.Prev = Ref(p.Num - 1)
		}
		if p.Num < p.Total {
			p.Next = Ref(p.Num + 1)
		}
		pages = append(pages, p)
	}
	return pages
}

// Ref is the site-internal reference to a page, resolved by the static
// site generator against the content tree.
func Ref(num int) string {
	return fmt.Sprintf("{filename}/links/page-%d.md", num)
}

// sortAndRank orders links most-recent-first and assigns the 1-based
// global rank. The sort must be stable: same-timestamp links keep their
// input encounter order so reruns over the same feed set are reproducible.
func sortAndRank(links []model.Link) []model.Link {
	sorted := make([]model.Link, len(links))
	copy(sorted, links)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Published.After(sorted[j].Published)
	})

	for i := range sorted {
		sorted[i].Num = i + 1
	}
	return sorted
}

// paginate slices the ranked sequence into pages of pageSize links; the
// last page holds whatever remains.
func paginate(links []model.Link, pageSize int) [][]model.Link {
	var chunks [][]model.Link
	for start := 0; start < len(links); start += pageSize {
		end := start + pageSize
		if end > len(links) {
			end = len(links)
		}
		chunks = append(chunks, links[start:end])
	}
	return chunks
}

// groupByDate groups consecutive links sharing a calendar date. The input
// is already globally time-sorted before slicing, so all links for a date
// are adjacent and a single pass is equivalent to a full group-by.
func groupByDate(links []model.Link) []model.DateGroup {
	var groups []model.DateGroup
	for _, link := range links {
		label := dateLabel(link.Published)
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Links = append(groups[n-1].Links, link)
			continue
		}
		groups = append(groups, model.DateGroup{Label: label, Links: []model.Link{link}})
	}
	return groups
}

// dateLabel formats a group heading. Links that carried no timestamp at
// all sort last with the zero time; labeling them "Undated" keeps the
// nonsense "January 1, 1" date out of the published pages.
func dateLabel(t time.Time) string {
	if t.IsZero() {
		return "Undated"
	}
	return t.Format("January 2, 2006")
}
