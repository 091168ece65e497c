package feed

import (
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/robertmeta/links-cli/model"
	"go.uber.org/zap"
)

var (
	// ErrMissingSiteLink rejects a feed with no site-level link; without it
	// the link domain cannot be derived.
	ErrMissingSiteLink = errors.New("feed has no site link")
	// ErrIncompleteEntry rejects a whole feed when any entry lacks a title
	// or link. One garbled entry means the feed cannot be trusted, so
	// nothing from it is published.
	ErrIncompleteEntry = errors.New("feed contains an entry without title or link")
)

// Parser turns raw feed payloads into validated ParsedFeeds.
type Parser struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewParser creates a Parser.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Parse parses one raw payload and validates its structure. It returns an
// error when the feed as a whole must be rejected: malformed markup, a
// missing site link, or any entry missing its title or link. An entry
// missing both timestamps is only warned about; timestamp resolution
// degrades gracefully instead.
func (p *Parser) Parse(sourceURL, raw string) (*model.ParsedFeed, error) {
	gf, err := p.parser.ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", sourceURL, err)
	}

	if gf.Link == "" {
		return nil, fmt.Errorf("feed %s: %w", sourceURL, ErrMissingSiteLink)
	}

	parsed := &model.ParsedFeed{
		SourceURL: sourceURL,
		SiteLink:  gf.Link,
	}

	for _, item := range gf.Items {
		if item.Title == "" || item.Link == "" {
			return nil, fmt.Errorf("feed %s: %w", sourceURL, ErrIncompleteEntry)
		}

		if item.PublishedParsed == nil && item.UpdatedParsed == nil {
			p.logger.Warn("feed entry has no timestamp",
				zap.String("source", sourceURL),
				zap.String("entry", item.Link))
		}

		parsed.Entries = append(parsed.Entries, model.ParsedEntry{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.PublishedParsed,
			Updated:   item.UpdatedParsed,
		})
	}

	return parsed, nil
}
