// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds settings for the generative text service.
type AIConfig struct {
	// Provider selects the backend: "gemini" or "claude".
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gemini-1.5-pro").
	Model string `json:"name" yaml:"name" mapstructure:"name"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`

	// MaxTokens caps the response length for backends that require it.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout is the HTTP request timeout for one generation call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// GenerationConfig holds the batching settings.
type GenerationConfig struct {
	// BatchSize is the number of records requested per generation call (default 10).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// InterBatchDelay is the pause between consecutive batches of a category (default 2s).
	InterBatchDelay time.Duration `json:"inter_batch_delay" yaml:"inter_batch_delay" mapstructure:"inter_batch_delay"`

	// InterCategoryDelay is the shorter pause between categories (default 1s).
	InterCategoryDelay time.Duration `json:"inter_category_delay" yaml:"inter_category_delay" mapstructure:"inter_category_delay"`

	// PromptTemplate is the text/template source used to build each prompt.
	PromptTemplate string `json:"prompt_template" yaml:"prompt_template" mapstructure:"prompt_template"`
}

// QualityConfig holds the heuristic thresholds applied by validation.
type QualityConfig struct {
	MinQuestionLength   int     `json:"min_question_length" yaml:"min_question_length" mapstructure:"min_question_length"`
	MaxQuestionLength   int     `json:"max_question_length" yaml:"max_question_length" mapstructure:"max_question_length"`
	MinAnswerLength     int     `json:"min_answer_length" yaml:"min_answer_length" mapstructure:"min_answer_length"`
	MaxAnswerLength     int     `json:"max_answer_length" yaml:"max_answer_length" mapstructure:"max_answer_length"`
	MinKeywords         int     `json:"min_keywords" yaml:"min_keywords" mapstructure:"min_keywords"`
	MaxKeywords         int     `json:"max_keywords" yaml:"max_keywords" mapstructure:"max_keywords"`
	RepetitionThreshold float64 `json:"repetition_threshold" yaml:"repetition_threshold" mapstructure:"repetition_threshold"`
}

// ExportConfig holds settings for the export sink.
type ExportConfig struct {
	// OutputDir receives the exported files and the validation report.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Formats lists the export formats to write: json, jsonl, csv.
	Formats []string `json:"formats" yaml:"formats" mapstructure:"formats"`
}

// KnowledgeBaseConfig holds settings for the local knowledge store.
type KnowledgeBaseConfig struct {
	// Dir contains the SQLite database (faqs.db).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// SearchConfig holds settings for the Elasticsearch sink.
type SearchConfig struct {
	Addresses []string `json:"addresses" yaml:"addresses" mapstructure:"addresses"`
	Index     string   `json:"index" yaml:"index" mapstructure:"index"`
	Username  string   `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password  string   `json:"-" yaml:"-" mapstructure:"password"`
}

// LogConfig selects the zap logger level and encoding.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// MetricsConfig controls the Prometheus textfile output.
type MetricsConfig struct {
	// Textfile is the path of the .prom file written after a run. Empty disables it.
	Textfile string `json:"textfile" yaml:"textfile" mapstructure:"textfile"`
}

// Config groups all resolved settings for a run.
type Config struct {
	Env        string              `json:"env" yaml:"env" mapstructure:"env"`
	Model      AIConfig            `json:"model" yaml:"model" mapstructure:"model"`
	Generation GenerationConfig    `json:"generation" yaml:"generation" mapstructure:"generation"`
	Quality    QualityConfig       `json:"quality" yaml:"quality" mapstructure:"quality"`
	Export     ExportConfig        `json:"export" yaml:"export" mapstructure:"export"`
	Knowledge  KnowledgeBaseConfig `json:"knowledge" yaml:"knowledge" mapstructure:"knowledge"`
	Search     SearchConfig        `json:"search" yaml:"search" mapstructure:"search"`
	Log        LogConfig           `json:"log" yaml:"log" mapstructure:"log"`
	Metrics    MetricsConfig       `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Categories is the ordered category plan. It is read from the YAML
	// node tree rather than through viper so declaration order survives.
	Categories []CategoryTarget `json:"categories" yaml:"-" mapstructure:"-"`
}
