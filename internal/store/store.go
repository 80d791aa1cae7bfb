// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists one report run in SQLite: the candidate sources,
// the generated sections, and the citation records. The render and status
// subcommands operate on the stored run without touching a provider.
package store

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/report-engine/internal/citation"
	"github.com/pdiddy/report-engine/pkg/types"
)

// Store manages the report run SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run database at path, creating the schema when
// missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			subject TEXT NOT NULL,
			generated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT,
			year TEXT,
			venue TEXT,
			doi TEXT,
			citation_count INTEGER,
			downloaded INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			content TEXT,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS citations (
			section_name TEXT NOT NULL REFERENCES sections(name),
			source_id TEXT NOT NULL REFERENCES sources(id),
			position INTEGER NOT NULL,
			PRIMARY KEY (section_name, source_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_citations_source ON citations(source_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun replaces the stored run with the given one in a single
// transaction. Citation records are read from the ledger in first-cited
// order per section.
func (s *Store) SaveRun(subject string, sources []types.Source, sections []types.Section, ledger *citation.Ledger) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"citations", "sections", "sources", "runs"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO runs (id, subject, generated_at) VALUES (1, ?, ?)`,
		subject, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, src := range sources {
		if _, err := tx.Exec(
			`INSERT INTO sources (id, title, authors, year, venue, doi, citation_count, downloaded)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			src.ID, src.Title, src.Authors, src.Year, src.Venue, src.DOI, src.CitationCount, boolInt(src.Downloaded),
		); err != nil {
			return fmt.Errorf("inserting source %s: %w", src.ID, err)
		}
	}

	for pos, sec := range sections {
		if _, err := tx.Exec(
			`INSERT INTO sections (position, name, title, content, error) VALUES (?, ?, ?, ?, ?)`,
			pos, sec.Name, sec.Title, sec.Text, sec.Err,
		); err != nil {
			return fmt.Errorf("inserting section %s: %w", sec.Name, err)
		}

		for i, sourceID := range ledger.SourcesCitedIn(sec.Name) {
			if _, err := tx.Exec(
				`INSERT INTO citations (section_name, source_id, position) VALUES (?, ?, ?)`,
				sec.Name, sourceID, i,
			); err != nil {
				return fmt.Errorf("inserting citation %s/%s: %w", sec.Name, sourceID, err)
			}
		}
	}

	return tx.Commit()
}

// Subject returns the stored run's subject.
func (s *Store) Subject() (string, error) {
	var subject string
	err := s.db.QueryRow(`SELECT subject FROM runs WHERE id = 1`).Scan(&subject)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no stored run")
	}
	if err != nil {
		return "", fmt.Errorf("reading run subject: %w", err)
	}
	return subject, nil
}

// LoadSources returns the stored candidate sources in insertion order.
func (s *Store) LoadSources() ([]types.Source, error) {
	rows, err := s.db.Query(
		`SELECT id, title, authors, year, venue, doi, citation_count, downloaded
		 FROM sources ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []types.Source
	for rows.Next() {
		var src types.Source
		var downloaded int
		if err := rows.Scan(&src.ID, &src.Title, &src.Authors, &src.Year, &src.Venue,
			&src.DOI, &src.CitationCount, &downloaded); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		src.Downloaded = downloaded != 0
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// LoadSections returns the stored sections in outline order.
func (s *Store) LoadSections() ([]types.Section, error) {
	rows, err := s.db.Query(
		`SELECT name, title, content, error FROM sections ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var sections []types.Section
	for rows.Next() {
		var sec types.Section
		if err := rows.Scan(&sec.Name, &sec.Title, &sec.Text, &sec.Err); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// LoadLedger rebuilds a citation ledger from the stored run: sources are
// registered in insertion order and citations replayed in first-cited order.
func (s *Store) LoadLedger(warn io.Writer) (*citation.Ledger, error) {
	sources, err := s.LoadSources()
	if err != nil {
		return nil, err
	}

	ledger := citation.New(warn)
	for _, src := range sources {
		ledger.Register(src.ID, src.Title, src.Authors, src.Year, src.Downloaded)
	}

	rows, err := s.db.Query(
		`SELECT section_name, source_id FROM citations ORDER BY section_name, position`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying citations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var section, sourceID string
		if err := rows.Scan(&section, &sourceID); err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		ledger.RecordCitation(section, sourceID)
	}
	return ledger, rows.Err()
}

// Summary holds run-level counts for status output.
type Summary struct {
	Subject        string
	GeneratedAt    string
	Sources        int
	Downloaded     int
	Sections       int
	FailedSections int
	Citations      int
}

// Summarize reports counts over the stored run.
func (s *Store) Summarize() (Summary, error) {
	var sum Summary
	err := s.db.QueryRow(`SELECT subject, generated_at FROM runs WHERE id = 1`).
		Scan(&sum.Subject, &sum.GeneratedAt)
	if err == sql.ErrNoRows {
		return Summary{}, fmt.Errorf("no stored run")
	}
	if err != nil {
		return Summary{}, fmt.Errorf("reading run: %w", err)
	}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT count(*) FROM sources`, &sum.Sources},
		{`SELECT count(*) FROM sources WHERE downloaded = 1`, &sum.Downloaded},
		{`SELECT count(*) FROM sections`, &sum.Sections},
		{`SELECT count(*) FROM sections WHERE error != ''`, &sum.FailedSections},
		{`SELECT count(*) FROM citations`, &sum.Citations},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return Summary{}, fmt.Errorf("counting: %w", err)
		}
	}
	return sum, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
