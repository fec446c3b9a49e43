// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes generated records and validation reports to disk
// and reads exported record files back.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/faq-engine/pkg/types"
)

// Export formats.
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

// File names written under the output directory.
const (
	JSONFile   = "banking_faqs.json"
	JSONLFile  = "banking_faqs_vectorsearch.jsonl"
	CSVFile    = "banking_faqs.csv"
	ReportFile = "quality_report.json"
)

// MethodBatchGenerator is the envelope method of batched runs.
const MethodBatchGenerator = "batch_generator"

const fallbackCategory = "General"

var csvHeader = []string{
	"id", "question", "answer", "keywords", "difficulty",
	"segment", "category", "subcategory", "created_date",
}

// NewEnvelope wraps records with run metadata. Categories lists the
// distinct record categories in first-seen order.
func NewEnvelope(records []types.FAQRecord, batchSize int, now time.Time) types.ExportEnvelope {
	var cats []string
	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.Category] {
			seen[r.Category] = true
			cats = append(cats, r.Category)
		}
	}
	if records == nil {
		records = []types.FAQRecord{}
	}
	return types.ExportEnvelope{
		Metadata: types.ExportMetadata{
			TotalFAQs:     len(records),
			GeneratedDate: now.Format(time.RFC3339),
			Method:        MethodBatchGenerator,
			BatchSize:     batchSize,
			RunID:         uuid.NewString(),
			Categories:    cats,
		},
		FAQs: records,
	}
}

// RecordID returns the positional export ID of the 1-based record n.
func RecordID(n int) string {
	return fmt.Sprintf("FAQ_%04d", n)
}

// storedRecord is a record as written to the JSON envelope. Unlike
// types.FAQRecord it writes back values that read as empty but were present
// (blank enums, a non-list keywords value), so validating the file again
// reports the same violations.
type storedRecord struct {
	Question    string          `json:"question"`
	Answer      string          `json:"answer"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Keywords    json.RawMessage `json:"keywords,omitempty"`
	Difficulty  *string         `json:"difficulty,omitempty"`
	Segment     *string         `json:"segment,omitempty"`
}

type storedEnvelope struct {
	Metadata types.ExportMetadata `json:"metadata"`
	FAQs     []storedRecord       `json:"faqs"`
}

func toStored(r types.FAQRecord) (storedRecord, error) {
	out := storedRecord{
		Question:    r.Question,
		Answer:      r.Answer,
		Category:    r.Category,
		Subcategory: r.Subcategory,
	}

	var keywords any
	switch {
	case r.KeywordsMalformed:
		keywords = r.RawKeywords
	case r.Keywords != nil:
		keywords = r.Keywords
	}
	if r.KeywordsMalformed || r.Keywords != nil {
		raw, err := marshalJSON(keywords, false)
		if err != nil {
			return out, fmt.Errorf("marshaling keywords: %w", err)
		}
		out.Keywords = bytes.TrimSpace(raw)
	}

	if r.Difficulty != "" || r.DifficultyBlank {
		d := string(r.Difficulty)
		out.Difficulty = &d
	}
	if r.Segment != "" || r.SegmentBlank {
		s := string(r.Segment)
		out.Segment = &s
	}
	return out, nil
}

// WriteJSON writes the envelope as indented JSON. Records are written as
// found, invalid values included.
func WriteJSON(path string, env types.ExportEnvelope) error {
	doc := storedEnvelope{Metadata: env.Metadata, FAQs: make([]storedRecord, len(env.FAQs))}
	for i, r := range env.FAQs {
		rec, err := toStored(r)
		if err != nil {
			return fmt.Errorf("FAQ #%d: %w", i+1, err)
		}
		doc.FAQs[i] = rec
	}

	data, err := marshalJSON(doc, true)
	if err != nil {
		return fmt.Errorf("marshaling JSON export: %w", err)
	}
	return writeFile(path, data)
}

// vectorRecord is one line of the vector-search export.
type vectorRecord struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Metadata vectorMetadata `json:"metadata"`
}

type vectorMetadata struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Difficulty  string   `json:"difficulty"`
	Segment     string   `json:"segment"`
	Keywords    []string `json:"keywords"`
	CreatedDate string   `json:"created_date"`
}

// WriteJSONL writes one JSON object per record for embedding pipelines.
// The text field combines question, answer and keywords.
func WriteJSONL(path string, records []types.FAQRecord, now time.Time) error {
	var buf bytes.Buffer
	for i, r := range records {
		r = withDefaults(r)

		text := "Question: " + r.Question + "\n\nAnswer: " + r.Answer
		if len(r.Keywords) > 0 {
			text += "\n\nKeywords: " + strings.Join(r.Keywords, ", ")
		}

		line, err := marshalJSON(vectorRecord{
			ID:       RecordID(i + 1),
			Text:     text,
			Question: r.Question,
			Answer:   r.Answer,
			Metadata: vectorMetadata{
				Category:    r.Category,
				Subcategory: r.Subcategory,
				Difficulty:  string(r.Difficulty),
				Segment:     string(r.Segment),
				Keywords:    r.Keywords,
				CreatedDate: now.Format(time.RFC3339),
			},
		}, false)
		if err != nil {
			return fmt.Errorf("marshaling record %d: %w", i+1, err)
		}
		buf.Write(line)
	}
	return writeFile(path, buf.Bytes())
}

// WriteCSV writes records in the knowledge-article import layout.
func WriteCSV(path string, records []types.FAQRecord, now time.Time) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	date := now.Format("2006-01-02")
	for i, r := range records {
		r = withDefaults(r)
		row := []string{
			RecordID(i + 1),
			r.Question,
			r.Answer,
			strings.Join(r.Keywords, ", "),
			string(r.Difficulty),
			string(r.Segment),
			r.Category,
			r.Subcategory,
			date,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// WriteAll writes env in each requested format under dir and returns the
// paths written, in format order.
func WriteAll(dir string, formats []string, env types.ExportEnvelope, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	var paths []string
	for _, f := range formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(strings.TrimSpace(f)) {
		case FormatJSON:
			path = filepath.Join(dir, JSONFile)
			err = WriteJSON(path, env)
		case FormatJSONL:
			path = filepath.Join(dir, JSONLFile)
			err = WriteJSONL(path, env.FAQs, now)
		case FormatCSV:
			path = filepath.Join(dir, CSVFile)
			err = WriteCSV(path, env.FAQs, now)
		default:
			return paths, fmt.Errorf("unknown export format %q", f)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// withDefaults fills blank optional fields for flat export layouts.
func withDefaults(r types.FAQRecord) types.FAQRecord {
	if r.Category == "" {
		r.Category = fallbackCategory
	}
	if r.Subcategory == "" {
		r.Subcategory = fallbackCategory
	}
	if r.Difficulty == "" {
		r.Difficulty = types.DifficultyBasic
	}
	if r.Segment == "" {
		r.Segment = types.SegmentRetail
	}
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	return r
}

// marshalJSON encodes v without HTML escaping. Indented output is used for
// documents, compact output (newline-terminated) for JSONL lines.
func marshalJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
