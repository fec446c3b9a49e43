// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searchindex pushes validated FAQ records into an Elasticsearch
// index through the bulk API.
package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/pdiddy/faq-engine/internal/knowledge"
	"github.com/pdiddy/faq-engine/pkg/types"
)

const defaultIndex = "faqs"

// Indexer writes FAQ documents to one Elasticsearch index.
type Indexer struct {
	client *elasticsearch.Client
	index  string
}

// New builds an Indexer from cfg. Credentials are sent only when a
// username is configured.
func New(cfg types.SearchConfig) (*Indexer, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = defaultIndex
	}
	return &Indexer{client: client, index: index}, nil
}

// IndexSummary holds counts from one bulk request.
type IndexSummary struct {
	Indexed  int
	Failed   int
	Rejected int
}

// Total returns the number of records considered.
func (s IndexSummary) Total() int {
	return s.Indexed + s.Failed + s.Rejected
}

type document struct {
	types.FAQRecord
	ID string `json:"id"`
}

type bulkAction struct {
	Index struct {
		ID string `json:"_id"`
	} `json:"index"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// Index bulk-indexes the records of report that carry no structural
// errors, keyed by knowledge.StableID so re-indexing replaces documents.
// report must be the validation of records. Item-level failures are
// counted in the summary; a failed request is returned as an error.
func (ix *Indexer) Index(ctx context.Context, records []types.FAQRecord, report types.ValidationReport, w io.Writer) (IndexSummary, error) {
	valid := report.ValidRecords(records)
	summary := IndexSummary{Rejected: len(records) - len(valid)}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, r := range valid {
		var action bulkAction
		action.Index.ID = knowledge.StableID(r)
		if err := enc.Encode(action); err != nil {
			return summary, fmt.Errorf("encoding bulk action: %w", err)
		}
		if err := enc.Encode(document{FAQRecord: r, ID: action.Index.ID}); err != nil {
			return summary, fmt.Errorf("encoding %s: %w", action.Index.ID, err)
		}
	}

	if body.Len() == 0 {
		fmt.Fprintf(w, "indexed: 0, failed: 0, rejected: %d\n", summary.Rejected)
		return summary, nil
	}

	res, err := ix.client.Bulk(
		bytes.NewReader(body.Bytes()),
		ix.client.Bulk.WithContext(ctx),
		ix.client.Bulk.WithIndex(ix.index),
		ix.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return summary, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return summary, fmt.Errorf("bulk request: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return summary, fmt.Errorf("decoding bulk response: %w", err)
	}

	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Error != nil || result.Status >= 300 {
				summary.Failed++
			} else {
				summary.Indexed++
			}
		}
	}

	fmt.Fprintf(w, "indexed: %d, failed: %d, rejected: %d\n",
		summary.Indexed, summary.Failed, summary.Rejected)
	return summary, nil
}
