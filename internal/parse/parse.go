// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse turns raw generation-service text into FAQ records.
// It is the only package that looks at upstream text; everything
// downstream works on types.FAQRecord.
package parse

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/pdiddy/faq-engine/pkg/types"
)

const fence = "```"

// previewLen bounds the response excerpt carried by a DecodeError.
const previewLen = 200

// taggedPayload matches a fenced fragment that opens with a language tag
// ("json", "JSON", "javascript") directly followed by the JSON payload.
var taggedPayload = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_+.-]*)\s*([\[{][\s\S]*)$`)

// DecodeError reports a response that could not be decoded into records.
type DecodeError struct {
	Err     error
	Preview string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding generation response: %v (response preview %q)", e.Err, e.Preview)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Parse extracts records from rawText and stamps them with category.
// It never fails: a response that cannot be decoded yields no records.
func Parse(rawText, category string) []types.FAQRecord {
	records, _ := Extract(rawText, category)
	return records
}

// Extract is Parse with the decode failure reported. The returned slice is
// empty (never nil) whenever err is non-nil.
func Extract(rawText, category string) ([]types.FAQRecord, error) {
	payload := isolatePayload(rawText)

	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return []types.FAQRecord{}, &DecodeError{Err: err, Preview: preview(payload)}
	}

	var elements []any
	switch v := decoded.(type) {
	case []any:
		elements = v
	case map[string]any:
		elements = []any{v}
	default:
		return []types.FAQRecord{}, &DecodeError{
			Err:     fmt.Errorf("expected a JSON array or object, got %T", decoded),
			Preview: preview(payload),
		}
	}

	records := make([]types.FAQRecord, 0, len(elements))
	for _, el := range elements {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		rec := RecordFromObject(obj)
		if strings.TrimSpace(rec.Question) == "" || strings.TrimSpace(rec.Answer) == "" {
			continue
		}
		applyDefaults(&rec, category)
		records = append(records, rec)
	}
	return records, nil
}

// isolatePayload strips surrounding whitespace and markdown fencing.
// A fragment opening with a language tag wins; otherwise the first fragment
// that starts like JSON; otherwise the whole text is returned unchanged.
func isolatePayload(rawText string) string {
	text := strings.TrimSpace(rawText)
	if !strings.Contains(text, fence) {
		return text
	}

	fragments := strings.Split(text, fence)
	for _, frag := range fragments {
		if m := taggedPayload.FindStringSubmatch(strings.TrimSpace(frag)); m != nil {
			return strings.TrimSpace(m[2])
		}
	}
	for _, frag := range fragments {
		frag = strings.TrimSpace(frag)
		if strings.HasPrefix(frag, "[") || strings.HasPrefix(frag, "{") {
			return frag
		}
	}
	return text
}

// applyDefaults fills the fields the upstream service omitted. Keys that are
// present keep their value, however blank. Category is always overwritten:
// the batch context is authoritative.
func applyDefaults(rec *types.FAQRecord, category string) {
	rec.Category = category
	if strings.TrimSpace(rec.Subcategory) == "" {
		rec.Subcategory = category
	}
	if rec.Keywords == nil && !rec.KeywordsMalformed {
		rec.Keywords = []string{}
	}
	if rec.Difficulty == "" && !rec.DifficultyBlank {
		rec.Difficulty = types.DifficultyBasic
	}
	if rec.Segment == "" && !rec.SegmentBlank {
		rec.Segment = types.SegmentRetail
	}
}

// RecordFromObject converts a loosely typed JSON object into the fixed
// record shape. No defaults are applied and nothing is dropped, so the
// result can be validated as found. A keywords value that is present but
// not a list (null included) sets KeywordsMalformed and is kept in
// RawKeywords. A difficulty or segment key present with a blank value sets
// the matching Blank flag.
func RecordFromObject(obj map[string]any) types.FAQRecord {
	rec := types.FAQRecord{
		Question:    stringField(obj, "question"),
		Answer:      stringField(obj, "answer"),
		Category:    stringField(obj, "category"),
		Subcategory: stringField(obj, "subcategory"),
		Difficulty:  types.Difficulty(stringField(obj, "difficulty")),
		Segment:     types.Segment(stringField(obj, "segment")),
	}
	_, hasDifficulty := obj["difficulty"]
	rec.DifficultyBlank = hasDifficulty && rec.Difficulty == ""
	_, hasSegment := obj["segment"]
	rec.SegmentBlank = hasSegment && rec.Segment == ""

	if raw, ok := obj["keywords"]; ok {
		list, isList := raw.([]any)
		if !isList {
			rec.KeywordsMalformed = true
			rec.RawKeywords = raw
		} else {
			rec.Keywords = cast.ToStringSlice(list)
			if rec.Keywords == nil {
				rec.Keywords = []string{}
			}
		}
	}
	return rec
}

// stringField reads key as a string, coercing scalars. Absent, null and
// non-scalar values read as "".
func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}
