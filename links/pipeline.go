// Package links orchestrates the aggregation pipeline: fetch, parse,
// normalize, filter, curate, group, render, write. Data flows strictly
// forward; only the fetch stage is concurrent.
package links

import (
	"context"
	"fmt"
	"time"

	"github.com/robertmeta/links-cli/feed"
	"github.com/robertmeta/links-cli/model"
	"github.com/robertmeta/links-cli/page"
	"github.com/robertmeta/links-cli/publish"
	"github.com/robertmeta/links-cli/render"
	"github.com/robertmeta/links-cli/store"
	"go.uber.org/zap"
)

// Config carries everything one pipeline run needs. It is passed at
// construction and scoped to the run; there is no package-level state.
type Config struct {
	// Sources is the ordered list of feed URLs to aggregate.
	Sources []string
	// OutputDir receives one markdown file per page.
	OutputDir string
	// TemplatesDir overrides the embedded page templates when non-empty.
	TemplatesDir string
	// PageSize is the number of links per page (default 30).
	PageSize int
	// Concurrency bounds parallel feed fetches (default 20).
	Concurrency int
	// Timeout is the per-request transport timeout (default 10s).
	Timeout time.Duration
}

// Summary reports what one run did, for scriptable output.
type Summary struct {
	Sources       int      `json:"sources"`
	Fetched       int      `json:"fetched"`
	FeedsParsed   int      `json:"feeds_parsed"`
	FeedsRejected int      `json:"feeds_rejected"`
	Links         int      `json:"links"`
	LinksFiltered int      `json:"links_filtered"`
	Pages         int      `json:"pages"`
	Files         []string `json:"files"`
}

// Pipeline runs the full aggregation. Construct one per run.
type Pipeline struct {
	cfg      Config
	fetcher  *feed.Fetcher
	parser   *feed.Parser
	renderer *render.Renderer
	writer   *publish.Writer
	archive  *store.Store
	logger   *zap.Logger
	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// New assembles a Pipeline from a Config. archive may be nil to disable
// run archiving.
func New(cfg Config, archive *store.Store, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer, err := render.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		fetcher:  feed.NewFetcher(cfg.Timeout, logger),
		parser:   feed.NewParser(logger),
		renderer: renderer,
		writer:   publish.NewWriter(cfg.OutputDir),
		archive:  archive,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run executes the pipeline once. Per-unit failures (source, feed, link)
// are logged and dropped; Run only fails on render or write errors. Zero
// surviving links mean zero files written, which is not an error.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Sources: len(p.cfg.Sources)}

	fetched := p.fetcher.FetchAll(ctx, p.cfg.Sources, p.cfg.Concurrency)
	summary.Fetched = len(fetched)

	links := p.collectLinks(fetched, summary)
	summary.Links = len(links)

	pages := page.Build(links, p.cfg.PageSize)
	summary.Pages = len(pages)

	generated := p.now()
	for _, pg := range pages {
		body, err := p.renderer.Render(pg, generated)
		if err != nil {
			return nil, err
		}
		path, err := p.writer.Write(pg.Num, body)
		if err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, path)
	}

	if p.archive != nil && len(pages) > 0 {
		if _, err := p.archive.SaveRun(generated, pages); err != nil {
			return nil, fmt.Errorf("failed to archive run: %w", err)
		}
	}

	return summary, nil
}

// collectLinks parses every fetched payload, normalizes the surviving
// feeds and filters out-of-bounds links. Runs single-threaded over the
// materialized fetch results: everything downstream of I/O is a pure
// transform and the curator owns ordering.
func (p *Pipeline) collectLinks(fetched []feed.Fetched, summary *Summary) []model.Link {
	var links []model.Link
	for _, raw := range fetched {
		parsed, err := p.parser.Parse(raw.SourceURL, raw.Raw)
		if err != nil {
			summary.FeedsRejected++
			p.logger.Warn("feed rejected", zap.String("source", raw.SourceURL), zap.Error(err))
			continue
		}
		summary.FeedsParsed++

		for _, link := range feed.Links(parsed) {
			if err := link.Validate(); err != nil {
				summary.LinksFiltered++
				p.logger.Warn("link filtered",
					zap.String("source", raw.SourceURL),
					zap.String("url", link.URL),
					zap.Error(err))
				continue
			}
			links = append(links, link)
		}
	}
	return links
}
