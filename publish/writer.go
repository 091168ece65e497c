// Package publish persists rendered pages to the content directory.
package publish

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes one file per page under a target directory. Every run
// fully overwrites prior content for each page index; stale pages from a
// run with more pages are left alone.
type Writer struct {
	dir string
}

// NewWriter creates a Writer targeting dir. The directory is created on
// the first write if absent.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// FileName returns the stable file name for a page index.
func FileName(num int) string {
	return fmt.Sprintf("page-%d.md", num)
}

// Write persists the body of one page, overwriting any previous version.
// It returns the path written.
func (w *Writer) Write(num int, body string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.dir, FileName(num))
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
