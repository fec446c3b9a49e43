// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pdiddy/faq-engine/internal/parse"
	"github.com/pdiddy/faq-engine/pkg/types"
)

// recordFileSchema accepts either an export envelope or a bare array of
// objects. Field-level rules are left to the quality validator.
const recordFileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "records": {"type": "array", "items": {"type": "object"}}
  },
  "oneOf": [
    {"$ref": "#/definitions/records"},
    {
      "type": "object",
      "required": ["faqs"],
      "properties": {
        "metadata": {"type": "object"},
        "faqs": {"$ref": "#/definitions/records"}
      }
    }
  ]
}`

var recordSchema = gojsonschema.NewStringLoader(recordFileSchema)

// SchemaError lists the reasons a record file does not have the expected shape.
type SchemaError struct {
	Path    string
	Reasons []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s is not a FAQ record file: %s", e.Path, strings.Join(e.Reasons, "; "))
}

// ReadRecords loads the records of an export envelope or a bare JSON array.
// Records are converted as-is, without defaults, so validation sees exactly
// what the file holds.
func ReadRecords(path string) ([]types.FAQRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(recordSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if !result.Valid() {
		reasons := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			reasons[i] = desc.String()
		}
		return nil, &SchemaError{Path: path, Reasons: reasons}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		items, _ = v["faqs"].([]any)
	}

	records := make([]types.FAQRecord, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		records = append(records, parse.RecordFromObject(obj))
	}
	return records, nil
}
