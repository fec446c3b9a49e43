// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge keeps validated FAQ records in a local SQLite database
// with a full-text index, so earlier runs can be searched and re-exported.
package knowledge

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/faq-engine/pkg/types"
)

const (
	dbFile            = "faqs.db"
	defaultMaxResults = 20
)

// Store manages the FAQ knowledge base SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the knowledge base at cfg.Dir/faqs.db and
// creates the schema if it does not exist.
func NewStore(cfg types.KnowledgeBaseConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating knowledge directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
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
			id TEXT PRIMARY KEY,
			imported_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			valid INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS faqs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT,
			keywords TEXT,
			difficulty TEXT,
			segment TEXT,
			run_id TEXT REFERENCES runs(id),
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_faqs_category ON faqs(category)`,
		`CREATE INDEX IF NOT EXISTS idx_faqs_difficulty ON faqs(difficulty)`,
		`CREATE INDEX IF NOT EXISTS idx_faqs_segment ON faqs(segment)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table kept in sync by triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='faqs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE faqs_fts USING fts5(question, answer, keywords, content=faqs, content_rowid=rowid)`,
			`CREATE TRIGGER faqs_ai AFTER INSERT ON faqs BEGIN
				INSERT INTO faqs_fts(rowid, question, answer, keywords)
				VALUES (new.rowid, new.question, new.answer, new.keywords);
			END`,
			`CREATE TRIGGER faqs_ad AFTER DELETE ON faqs BEGIN
				INSERT INTO faqs_fts(faqs_fts, rowid, question, answer, keywords)
				VALUES ('delete', old.rowid, old.question, old.answer, old.keywords);
			END`,
			`CREATE TRIGGER faqs_au AFTER UPDATE ON faqs BEGIN
				INSERT INTO faqs_fts(faqs_fts, rowid, question, answer, keywords)
				VALUES ('delete', old.rowid, old.question, old.answer, old.keywords);
				INSERT INTO faqs_fts(rowid, question, answer, keywords)
				VALUES (new.rowid, new.question, new.answer, new.keywords);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// StableID derives the record ID from its category and question, so the
// same question imported twice updates one row.
func StableID(r types.FAQRecord) string {
	key := strings.ToLower(strings.TrimSpace(r.Category)) + "\x00" + strings.ToLower(strings.TrimSpace(r.Question))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}

// ImportSummary holds counts from one import.
type ImportSummary struct {
	Imported int
	Updated  int
	Rejected int
}

// Total returns the number of records considered.
func (s ImportSummary) Total() int {
	return s.Imported + s.Updated + s.Rejected
}

// Import stores the records of report that carry no structural errors.
// report must be the validation of records. Records already present (same
// StableID) are updated in place.
func (s *Store) Import(ctx context.Context, records []types.FAQRecord, report types.ValidationReport, runID string, w io.Writer) (ImportSummary, error) {
	valid := report.ValidRecords(records)
	summary := ImportSummary{Rejected: len(records) - len(valid)}
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, imported_at, total, valid) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET imported_at=excluded.imported_at, total=excluded.total, valid=excluded.valid`,
		runID, now, report.Total, report.Valid,
	); err != nil {
		return summary, fmt.Errorf("recording run: %w", err)
	}

	exists, err := tx.PrepareContext(ctx, `SELECT count(*) FROM faqs WHERE id = ?`)
	if err != nil {
		return summary, fmt.Errorf("preparing lookup: %w", err)
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO faqs (id, question, answer, category, subcategory, keywords, difficulty, segment, run_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			question=excluded.question, answer=excluded.answer, category=excluded.category,
			subcategory=excluded.subcategory, keywords=excluded.keywords,
			difficulty=excluded.difficulty, segment=excluded.segment,
			run_id=excluded.run_id, updated_at=excluded.updated_at`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	for _, r := range valid {
		id := StableID(r)
		var n int
		if err := exists.QueryRowContext(ctx, id).Scan(&n); err != nil {
			return summary, fmt.Errorf("looking up %s: %w", id, err)
		}

		keywords := r.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		keywordsJSON, _ := json.Marshal(keywords)

		if _, err := upsert.ExecContext(ctx,
			id, r.Question, r.Answer, r.Category, r.Subcategory,
			string(keywordsJSON), string(r.Difficulty), string(r.Segment),
			runID, now,
		); err != nil {
			return summary, fmt.Errorf("storing %s: %w", id, err)
		}

		if n > 0 {
			summary.Updated++
		} else {
			summary.Imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}

	fmt.Fprintf(w, "imported: %d, updated: %d, rejected: %d\n",
		summary.Imported, summary.Updated, summary.Rejected)
	return summary, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM faqs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting FAQs: %w", err)
	}
	return n, nil
}
