// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/faq-engine/internal/quality"
	"github.com/pdiddy/faq-engine/pkg/types"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleRecords() []types.FAQRecord {
	return []types.FAQRecord{
		{
			Question:    "How do I open a savings account?",
			Answer:      "Visit any branch or apply online <in minutes> & bring ID.",
			Category:    "Account Management",
			Subcategory: "Opening",
			Keywords:    []string{"savings", "open account"},
			Difficulty:  types.DifficultyBasic,
			Segment:     types.SegmentRetail,
		},
		{
			Question:   "What is a Roth IRA?",
			Answer:     "A retirement account funded with after-tax dollars, \"growing\" tax free.",
			Category:   "Retirement Planning",
			Keywords:   []string{},
			Difficulty: types.DifficultyAdvanced,
		},
	}
}

func TestNewEnvelope(t *testing.T) {
	records := sampleRecords()
	records = append(records, types.FAQRecord{Question: "q", Answer: "a", Category: "Account Management"})

	env := NewEnvelope(records, 10, fixedNow)

	assert.Equal(t, 3, env.Metadata.TotalFAQs)
	assert.Equal(t, "2026-03-14T09:30:00Z", env.Metadata.GeneratedDate)
	assert.Equal(t, MethodBatchGenerator, env.Metadata.Method)
	assert.Equal(t, 10, env.Metadata.BatchSize)
	assert.Equal(t, []string{"Account Management", "Retirement Planning"}, env.Metadata.Categories)
	_, err := uuid.Parse(env.Metadata.RunID)
	assert.NoError(t, err)

	empty := NewEnvelope(nil, 10, fixedNow)
	assert.NotNil(t, empty.FAQs)
	assert.Equal(t, 0, empty.Metadata.TotalFAQs)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "faqs.json")
	env := NewEnvelope(sampleRecords(), 10, fixedNow)

	require.NoError(t, WriteJSON(path, env))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<in minutes> & bring ID", "HTML is not escaped")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "metadata")
	assert.Contains(t, doc, "faqs")

	got, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[0], got[0])
	assert.Equal(t, "Retirement Planning", got[1].Category)
}

func TestWriteJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.jsonl")
	require.NoError(t, WriteJSONL(path, sampleRecords(), fixedNow))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	var first vectorRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "FAQ_0001", first.ID)
	assert.Equal(t, "Question: How do I open a savings account?\n\nAnswer: Visit any branch or apply online <in minutes> & bring ID.\n\nKeywords: savings, open account", first.Text)
	assert.Equal(t, "Opening", first.Metadata.Subcategory)
	assert.Equal(t, "2026-03-14T09:30:00Z", first.Metadata.CreatedDate)

	var second vectorRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "FAQ_0002", second.ID)
	assert.NotContains(t, second.Text, "Keywords:", "empty keywords are left out of the text")
	assert.Equal(t, "General", second.Metadata.Subcategory)
	assert.Equal(t, "retail", second.Metadata.Segment)
	assert.Equal(t, []string{}, second.Metadata.Keywords)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.csv")
	require.NoError(t, WriteCSV(path, sampleRecords(), fixedNow))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"FAQ_0001", "How do I open a savings account?",
		"Visit any branch or apply online <in minutes> & bring ID.",
		"savings, open account", "basic", "retail", "Account Management", "Opening", "2026-03-14",
	}, rows[1])
	assert.Equal(t, `A retirement account funded with after-tax dollars, "growing" tax free.`, rows[2][2])
	assert.Equal(t, "General", rows[2][7])
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	env := NewEnvelope(sampleRecords(), 10, fixedNow)

	paths, err := WriteAll(dir, []string{"json", " CSV ", "jsonl"}, env, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, JSONFile),
		filepath.Join(dir, CSVFile),
		filepath.Join(dir, JSONLFile),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	_, err = WriteAll(dir, []string{"xml"}, env, fixedNow)
	assert.ErrorContains(t, err, `unknown export format "xml"`)
}

func TestWriteReport(t *testing.T) {
	records := sampleRecords()
	report := quality.Validate(records)
	stats := quality.Summarize(records)
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "report.json")
		require.NoError(t, WriteReport(path, report, stats))

		var got QualityReport
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, 2, got.Summary.Total)
		assert.Equal(t, report.Passed(), got.Summary.Passed)
		assert.Len(t, got.Warnings, len(report.Warnings))
		for _, w := range got.Warnings {
			assert.True(t, strings.HasPrefix(w, "FAQ #"), w)
		}
		assert.Equal(t, 1, got.Stats.ByCategory["Retirement Planning"])
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "report.yaml")
		require.NoError(t, WriteReport(path, report, stats))

		var got QualityReport
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, 2, got.Summary.Total)
		assert.Equal(t, len(report.Warnings), got.Summary.Warnings)
	})
}

func TestPrintReport(t *testing.T) {
	report := types.ValidationReport{
		Total: 2, Valid: 1, Invalid: 1,
		Errors:   []types.ReportEntry{{Position: 2, Message: "Invalid difficulty 'extreme'"}},
		Warnings: []types.ReportEntry{{Position: 1, Message: "Question doesn't end with '?'"}},
	}

	var buf bytes.Buffer
	PrintReport(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Total FAQs: 2\n")
	assert.Contains(t, out, "  - FAQ #2: Invalid difficulty 'extreme'\n")
	assert.Contains(t, out, "  - FAQ #1: Question doesn't end with '?'\n")
	assert.Contains(t, out, "FAILED")

	buf.Reset()
	PrintReport(&buf, types.ValidationReport{Total: 1, Valid: 1, Errors: []types.ReportEntry{}, Warnings: []types.ReportEntry{}})
	assert.Contains(t, buf.String(), "PASSED: all FAQs are valid with no warnings")
}

func TestReadRecords(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	t.Run("bare array keeps fields as found", func(t *testing.T) {
		p := write("bare.json", `[{"question": "Q?", "answer": "A", "keywords": "oops", "difficulty": "extreme"}, {"question": 42}]`)
		got, err := ReadRecords(p)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].KeywordsMalformed)
		assert.Equal(t, types.Difficulty("extreme"), got[0].Difficulty)
		assert.Empty(t, got[0].Category)
		assert.Equal(t, "42", got[1].Question)
		assert.Nil(t, got[1].Keywords)
	})

	t.Run("envelope", func(t *testing.T) {
		p := write("env.json", `{"metadata": {"total_faqs": 1}, "faqs": [{"question": "Q?", "answer": "A"}]}`)
		got, err := ReadRecords(p)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Q?", got[0].Question)
	})

	t.Run("wrong shape", func(t *testing.T) {
		for name, content := range map[string]string{
			"scalar.json":     `"hello"`,
			"nofaqs.json":     `{"metadata": {}}`,
			"faqs-obj.json":   `{"faqs": {"question": "Q?"}}`,
			"array-strs.json": `["a", "b"]`,
		} {
			_, err := ReadRecords(write(name, content))
			var se *SchemaError
			require.ErrorAs(t, err, &se, name)
			assert.NotEmpty(t, se.Reasons)
		}
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ReadRecords(write("bad.json", `{not json`))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadRecords(filepath.Join(dir, "absent.json"))
		require.Error(t, err)
	})
}

func TestRevalidationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	records := sampleRecords()
	first := quality.Validate(records)
	require.NoError(t, WriteJSON(path, NewEnvelope(records, 10, fixedNow)))

	reread, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, first, quality.Validate(reread))
}

func TestRevalidationKeepsPresentInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	records := sampleRecords()
	malformed := records[0]
	malformed.Question = "Can I link a savings account to checking?"
	malformed.Keywords = nil
	malformed.KeywordsMalformed = true
	malformed.RawKeywords = "apr, rates"
	blank := records[1]
	blank.Question = "Can I convert a traditional IRA to a Roth IRA?"
	blank.Difficulty = ""
	blank.DifficultyBlank = true
	records = append(records, malformed, blank)

	first := quality.Validate(records)
	require.Equal(t, 2, first.Invalid)
	require.NoError(t, WriteJSON(path, NewEnvelope(records, 10, fixedNow)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"keywords": "apr, rates"`)
	assert.Contains(t, string(data), `"difficulty": ""`)

	reread, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, first, quality.Validate(reread))
}
