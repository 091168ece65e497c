// Package sources loads the list of feed URLs to aggregate.
//
// Three formats are supported, picked by file extension: a JSON array of URL
// strings (the historical feeds.json format), a YAML sequence of URL strings,
// and OPML subscription lists as exported by most feed readers.
package sources

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the feed URL list from path. The returned slice preserves file
// order and is never deduplicated; the pipeline re-sorts globally anyway.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return parseJSON(f)
	case ".yaml", ".yml":
		return parseYAML(f)
	case ".opml", ".xml":
		return parseOPML(f)
	default:
		return nil, fmt.Errorf("unsupported sources format %q (want .json, .yaml or .opml)", filepath.Ext(path))
	}
}

func parseJSON(r io.Reader) ([]string, error) {
	var urls []string
	if err := json.NewDecoder(r).Decode(&urls); err != nil {
		return nil, fmt.Errorf("failed to parse JSON sources: %w", err)
	}
	return urls, nil
}

func parseYAML(r io.Reader) ([]string, error) {
	var urls []string
	if err := yaml.NewDecoder(r).Decode(&urls); err != nil {
		return nil, fmt.Errorf("failed to parse YAML sources: %w", err)
	}
	return urls, nil
}

// opml mirrors the subset of OPML 2.0 needed to pull feed URLs out of a
// subscription list. Outlines nest arbitrarily; only those carrying an
// xmlUrl attribute are feeds.
type opml struct {
	XMLName xml.Name `xml:"opml"`
	Body    opmlBody `xml:"body"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	XMLUrl   string        `xml:"xmlUrl,attr,omitempty"`
	Outlines []opmlOutline `xml:"outline,omitempty"`
}

func parseOPML(r io.Reader) ([]string, error) {
	var doc opml
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse OPML sources: %w", err)
	}
	return extractURLs(doc.Body.Outlines), nil
}

// extractURLs recursively collects feed URLs from outlines in document order.
func extractURLs(outlines []opmlOutline) []string {
	var urls []string
	for _, outline := range outlines {
		if outline.XMLUrl != "" {
			urls = append(urls, outline.XMLUrl)
		}
		if len(outline.Outlines) > 0 {
			urls = append(urls, extractURLs(outline.Outlines)...)
		}
	}
	return urls
}
