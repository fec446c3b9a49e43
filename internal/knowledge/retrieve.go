// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/faq-engine/pkg/types"
)

// QueryOptions holds parameters for knowledge base queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	Category   string
	Difficulty types.Difficulty
	Segment    types.Segment

	// Keywords filters by one or more keywords with AND semantics.
	Keywords []string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == "" && q.Difficulty == "" && q.Segment == "" && len(q.Keywords) == 0
}

// QueryResult is a stored FAQ with its store metadata.
type QueryResult struct {
	types.FAQRecord `yaml:",inline"`

	ID    string `json:"id" yaml:"id"`
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
}

// Retrieve queries the knowledge base with optional full-text search and
// structured filters. Full-text results are ranked by relevance; filter-only
// results are sorted by category and question.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	return s.query(ctx, opts, opts.MaxResults)
}

func (s *Store) query(ctx context.Context, opts QueryOptions, limit int) ([]QueryResult, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT f.id, f.run_id, f.question, f.answer, f.category, f.subcategory,
				f.keywords, f.difficulty, f.segment
			FROM faqs_fts
			JOIN faqs f ON f.rowid = faqs_fts.rowid
			WHERE faqs_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT f.id, f.run_id, f.question, f.answer, f.category, f.subcategory,
				f.keywords, f.difficulty, f.segment
			FROM faqs f
			WHERE 1=1`)
	}

	if opts.Category != "" {
		qb.WriteString(` AND f.category = ?`)
		args = append(args, opts.Category)
	}
	if opts.Difficulty != "" {
		qb.WriteString(` AND f.difficulty = ?`)
		args = append(args, string(opts.Difficulty))
	}
	if opts.Segment != "" {
		qb.WriteString(` AND f.segment = ?`)
		args = append(args, string(opts.Segment))
	}
	for _, kw := range opts.Keywords {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(f.keywords) WHERE lower(value) = lower(?))`)
		args = append(args, kw)
	}

	if useFTS {
		qb.WriteString(` ORDER BY faqs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY f.category, f.question`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr           QueryResult
			runID        sql.NullString
			subcategory  sql.NullString
			keywordsJSON sql.NullString
			difficulty   sql.NullString
			segment      sql.NullString
		)
		if err := rows.Scan(
			&qr.ID, &runID, &qr.Question, &qr.Answer, &qr.Category, &subcategory,
			&keywordsJSON, &difficulty, &segment,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		qr.RunID = runID.String
		qr.Subcategory = subcategory.String
		qr.Difficulty = types.Difficulty(difficulty.String)
		qr.Segment = types.Segment(segment.String)
		qr.Keywords = []string{}
		if keywordsJSON.Valid {
			json.Unmarshal([]byte(keywordsJSON.String), &qr.Keywords)
		}

		results = append(results, qr)
	}
	return results, rows.Err()
}
