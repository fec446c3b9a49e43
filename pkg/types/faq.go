// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Difficulty grades how much background a question assumes.
type Difficulty string

const (
	DifficultyBasic        Difficulty = "basic"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the enumerated difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Segment is the customer segment a question is written for.
type Segment string

const (
	SegmentRetail           Segment = "retail"
	SegmentBusiness         Segment = "business"
	SegmentWealthManagement Segment = "wealth_management"
)

// Valid reports whether s is one of the enumerated segments.
func (s Segment) Valid() bool {
	switch s {
	case SegmentRetail, SegmentBusiness, SegmentWealthManagement:
		return true
	}
	return false
}

// FAQRecord is one synthesized question/answer unit.
//
// Difficulty and Segment hold whatever value the upstream service produced;
// values outside the enumerations are kept so validation can reject them.
// A nil Keywords slice means the field was absent unless KeywordsMalformed
// is set.
type FAQRecord struct {
	Question    string     `json:"question" yaml:"question"`
	Answer      string     `json:"answer" yaml:"answer"`
	Category    string     `json:"category" yaml:"category"`
	Subcategory string     `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Keywords    []string   `json:"keywords" yaml:"keywords"`
	Difficulty  Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Segment     Segment    `json:"segment,omitempty" yaml:"segment,omitempty"`

	// KeywordsMalformed is set when the source carried a keywords value that
	// was not a list. RawKeywords keeps that value as found so exports can
	// write it back unchanged.
	KeywordsMalformed bool `json:"-" yaml:"-"`
	RawKeywords       any  `json:"-" yaml:"-"`

	// DifficultyBlank and SegmentBlank mark a key that was present with an
	// empty, null or non-scalar value, which validation must reject rather
	// than read as absent.
	DifficultyBlank bool `json:"-" yaml:"-"`
	SegmentBlank    bool `json:"-" yaml:"-"`
}

// CategoryTarget is one entry of the ordered category plan.
type CategoryTarget struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// BatchRequest describes a single generation call within a category.
// It lives only for the duration of that call.
type BatchRequest struct {
	Category   string
	BatchIndex int // 1-based
	BatchCount int
	Size       int
}

// ExportMetadata is the envelope written alongside exported records.
type ExportMetadata struct {
	TotalFAQs     int      `json:"total_faqs" yaml:"total_faqs"`
	GeneratedDate string   `json:"generated_date" yaml:"generated_date"`
	Method        string   `json:"method" yaml:"method"`
	BatchSize     int      `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	RunID         string   `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Categories    []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// ExportEnvelope is the JSON export document: metadata plus records.
type ExportEnvelope struct {
	Metadata ExportMetadata `json:"metadata" yaml:"metadata"`
	FAQs     []FAQRecord    `json:"faqs" yaml:"faqs"`
}
