// Package store provides an optional SQLite archive of run results for
// links-cli. The archive is diagnostics only: pages are always recomputed
// from scratch and never read archived state back into the pipeline.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/robertmeta/links-cli/model"
	_ "modernc.org/sqlite"
)

// Store manages the SQLite archive database.
type Store struct {
	db *sql.DB
}

// Run is one archived pipeline run.
type Run struct {
	ID          int64     `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Pages       int       `json:"pages"`
	LinkCount   int       `json:"links"`
}

// New creates a Store with the given database path.
// Use ":memory:" for an in-memory database (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates the database tables and indexes.
func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		generated_at INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		link_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		num INTEGER NOT NULL,
		domain TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		published INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_links_run_id ON links(run_id);
	CREATE INDEX IF NOT EXISTS idx_links_published ON links(published DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun archives one run: its totals plus every published link in rank
// order.
func (s *Store) SaveRun(generatedAt time.Time, pages []model.Page) (int64, error) {
	var links []model.Link
	for i := range pages {
		links = append(links, pages[i].Links()...)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"INSERT INTO runs (generated_at, pages, link_count) VALUES (?, ?, ?)",
		generatedAt.Unix(), len(pages), len(links),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for _, link := range links {
		_, err := tx.Exec(
			"INSERT INTO links (run_id, num, domain, title, url, published) VALUES (?, ?, ?, ?, ?, ?)",
			runID, link.Num, link.Domain, link.Title, link.URL, link.Published.Unix(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// GetRuns retrieves archived runs, newest first, up to limit (0 = all).
func (s *Store) GetRuns(limit int) ([]Run, error) {
	query := "SELECT id, generated_at, pages, link_count FROM runs ORDER BY generated_at DESC, id DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var generatedUnix int64
		if err := rows.Scan(&run.ID, &generatedUnix, &run.Pages, &run.LinkCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.GeneratedAt = time.Unix(generatedUnix, 0).UTC()
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRunLinks retrieves the archived links of one run in rank order.
func (s *Store) GetRunLinks(runID int64) ([]model.Link, error) {
	rows, err := s.db.Query(
		"SELECT num, domain, title, url, published FROM links WHERE run_id = ? ORDER BY num",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []model.Link
	for rows.Next() {
		var link model.Link
		var publishedUnix int64
		if err := rows.Scan(&link.Num, &link.Domain, &link.Title, &link.URL, &publishedUnix); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		link.Published = time.Unix(publishedUnix, 0).UTC()
		links = append(links, link)
	}

	return links, rows.Err()
}
