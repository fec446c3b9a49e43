// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/faq-engine/pkg/types"
)

const exportLimit = 100000

// Export writes the stored records matching opts to path, as YAML when the
// extension is .yaml or .yml and JSON otherwise. An empty opts exports the
// whole store. It returns the number of records written.
func (s *Store) Export(ctx context.Context, opts QueryOptions, path string) (int, error) {
	records, err := s.Records(ctx, opts)
	if err != nil {
		return 0, err
	}

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(records)
	default:
		data, err = json.MarshalIndent(records, "", "  ")
	}
	if err != nil {
		return 0, fmt.Errorf("marshaling export: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(records), nil
}

// Records returns the stored records matching opts as plain FAQ records,
// ready for the export sinks or the search indexer. opts.MaxResults is
// ignored.
func (s *Store) Records(ctx context.Context, opts QueryOptions) ([]types.FAQRecord, error) {
	results, err := s.query(ctx, opts, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	records := make([]types.FAQRecord, len(results))
	for i, r := range results {
		records[i] = r.FAQRecord
	}
	return records, nil
}
