// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the per-batch generation prompt from a template.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/faq-engine/pkg/types"
)

// ErrMissingTemplate is returned by New when no template text is configured.
var ErrMissingTemplate = errors.New("prompt template is empty")

// DefaultTemplate asks for one batch of FAQs. The batch position is
// included so the model varies its output across batches.
const DefaultTemplate = `Generate {{.Size}} unique FAQs for "{{.Category}}" in banking/wealth management.

This is batch {{.BatchIndex}} of {{.BatchCount}}, so ensure variety and avoid repetition.

Return JSON array:
[
  {
    "question": "question text",
    "answer": "detailed answer (200-300 words)",
    "keywords": ["keyword1", "keyword2"],
    "difficulty": "basic|intermediate|advanced",
    "segment": "retail|business|wealth_management"
  }
]

Only return valid JSON, no markdown.
`

// Builder renders prompts for batch requests.
type Builder struct {
	tmpl *template.Template
}

// New parses text as a text/template. The template is rendered once against
// a sample request so references to unknown fields fail here rather than
// in the middle of a run.
func New(text string) (*Builder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrMissingTemplate
	}
	tmpl, err := template.New("batch").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}
	b := &Builder{tmpl: tmpl}
	sample := types.BatchRequest{Category: "sample", BatchIndex: 1, BatchCount: 1, Size: 1}
	if _, err := b.Build(sample); err != nil {
		return nil, err
	}
	return b, nil
}

// Build renders the prompt for req.
func (b *Builder) Build(req types.BatchRequest) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("rendering prompt for %s batch %d/%d: %w", req.Category, req.BatchIndex, req.BatchCount, err)
	}
	return buf.String(), nil
}
