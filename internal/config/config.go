// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves the run configuration from a base YAML file, an
// optional per-environment overlay, FAQ_ENGINE_* environment variables, a
// .env file and the secrets directory.
//
// Lookup order for the base file is ./faq-engine.yaml, then
// ~/.config/faq-engine/faq-engine.yaml. The overlay is
// config/config.<env>.yaml next to the base file and is merged over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/faq-engine/internal/prompt"
	"github.com/pdiddy/faq-engine/internal/secrets"
	"github.com/pdiddy/faq-engine/pkg/types"
)

const (
	configName = "faq-engine"
	envPrefix  = "FAQ_ENGINE"
	defaultEnv = "dev"
)

// Error is a configuration failure. It is the only error class that stops a
// run, and it is always raised before any generation call.
type Error struct {
	Key string
	Msg string
	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration")
	if e.Key != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Key)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Options controls where Load looks for its inputs. Zero values select the
// defaults.
type Options struct {
	// ConfigFile is an explicit base config path. When set, it must exist.
	ConfigFile string

	// Env overrides the env key (and FAQ_ENGINE_ENV).
	Env string

	// SecretsDir holds credential files (default .secrets/).
	SecretsDir string

	// DotEnv is the .env file loaded before anything else (default .env).
	DotEnv string

	// SearchPaths replaces the default base config search directories.
	SearchPaths []string
}

// DefaultCategories is the category plan used when no configuration file
// declares one.
var DefaultCategories = []types.CategoryTarget{
	{Name: "Account Management", Count: 20},
	{Name: "Investment Products", Count: 25},
	{Name: "Wealth Management", Count: 25},
	{Name: "Loans and Mortgages", Count: 20},
	{Name: "Retirement Planning", Count: 20},
	{Name: "Online Banking", Count: 15},
}

// Load resolves the configuration. It fails only on unreadable or
// malformed inputs; generation preconditions are checked separately by
// RequireGeneration so commands that never call the service can run without
// credentials.
func Load(opts Options) (*types.Config, error) {
	dotEnv := opts.DotEnv
	if dotEnv == "" {
		dotEnv = ".env"
	}
	if _, err := os.Stat(dotEnv); err == nil {
		if err := godotenv.Load(dotEnv); err != nil {
			return nil, &Error{Key: dotEnv, Msg: "loading .env file", Err: err}
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	basePath, err := readBase(v, opts)
	if err != nil {
		return nil, err
	}

	env := opts.Env
	if env == "" {
		env = v.GetString("env")
	}
	v.Set("env", env)

	overlayPath := overlayFile(basePath, env)
	if overlayPath != "" {
		v.SetConfigFile(overlayPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, &Error{Key: overlayPath, Msg: "reading environment overlay", Err: err}
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Msg: "decoding configuration", Err: err}
	}

	cfg.Categories, err = resolveCategories(basePath, overlayPath)
	if err != nil {
		return nil, err
	}

	secretsDir := opts.SecretsDir
	if secretsDir == "" {
		secretsDir = secrets.DefaultDir
	}
	store, err := secrets.Load(secretsDir)
	if err != nil {
		return nil, &Error{Key: secretsDir, Msg: "loading secrets", Err: err}
	}
	cfg.Model.APIKey = store.APIKey(cfg.Model.Provider)
	if cfg.Search.Password == "" {
		cfg.Search.Password = store.Get(secrets.ElasticsearchPassword)
	}

	return &cfg, nil
}

// RequireGeneration checks the preconditions of a generation run: a
// credential for the selected provider, a prompt template, a positive batch
// size and a non-empty category plan with non-negative counts.
func RequireGeneration(cfg *types.Config) error {
	if cfg.Model.APIKey == "" {
		hint := secrets.KeyFile(cfg.Model.Provider)
		if hint == "" {
			return &Error{Key: "model.provider", Msg: fmt.Sprintf("unknown provider %q", cfg.Model.Provider)}
		}
		return &Error{Key: "model", Msg: fmt.Sprintf("missing API key for %s (set %s%s or its environment variable)", cfg.Model.Provider, secrets.DefaultDir, hint)}
	}
	if strings.TrimSpace(cfg.Generation.PromptTemplate) == "" {
		return &Error{Key: "generation.prompt_template", Msg: "missing prompt template"}
	}
	if cfg.Generation.BatchSize < 1 {
		return &Error{Key: "generation.batch_size", Msg: fmt.Sprintf("must be at least 1, got %d", cfg.Generation.BatchSize)}
	}
	if cfg.Generation.InterBatchDelay < 0 || cfg.Generation.InterCategoryDelay < 0 {
		return &Error{Key: "generation", Msg: "delays must not be negative"}
	}
	return CheckCategories(cfg.Categories)
}

// CheckCategories rejects an empty plan, blank names, duplicates and
// negative counts.
func CheckCategories(categories []types.CategoryTarget) error {
	if len(categories) == 0 {
		return &Error{Key: "categories", Msg: "no categories configured"}
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" {
			return &Error{Key: "categories", Msg: "category name is empty"}
		}
		if seen[c.Name] {
			return &Error{Key: "categories", Msg: fmt.Sprintf("duplicate category %q", c.Name)}
		}
		seen[c.Name] = true
		if c.Count < 0 {
			return &Error{Key: "categories", Msg: fmt.Sprintf("negative count %d for %q", c.Count, c.Name)}
		}
	}
	return nil
}

// IsConfigError reports whether err is a configuration failure.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", defaultEnv)

	v.SetDefault("model.provider", "gemini")
	v.SetDefault("model.name", "gemini-1.5-pro")
	v.SetDefault("model.max_tokens", 8192)
	v.SetDefault("model.timeout", 120*time.Second)

	v.SetDefault("generation.batch_size", 10)
	v.SetDefault("generation.inter_batch_delay", 2*time.Second)
	v.SetDefault("generation.inter_category_delay", time.Second)
	v.SetDefault("generation.prompt_template", prompt.DefaultTemplate)

	v.SetDefault("export.output_dir", "output")
	v.SetDefault("export.formats", []string{"json"})

	v.SetDefault("knowledge.dir", "knowledge")
	v.SetDefault("knowledge.max_results", 20)

	v.SetDefault("search.addresses", []string{"http://localhost:9200"})
	v.SetDefault("search.index", "faqs")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// readBase reads the base config into v and returns its path, or "" when
// no base file exists.
func readBase(v *viper.Viper, opts Options) (string, error) {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return "", &Error{Key: opts.ConfigFile, Msg: "reading config file", Err: err}
		}
		return v.ConfigFileUsed(), nil
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	for _, p := range searchPaths(opts) {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", &Error{Msg: "reading config file", Err: err}
	}
	return v.ConfigFileUsed(), nil
}

func searchPaths(opts Options) []string {
	if len(opts.SearchPaths) > 0 {
		return opts.SearchPaths
	}
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", configName))
	}
	return paths
}

// overlayFile returns config/config.<env>.yaml relative to the base file's
// directory (or the working directory), or "" when it does not exist.
func overlayFile(basePath, env string) string {
	if env == "" {
		return ""
	}
	dir := "."
	if basePath != "" {
		dir = filepath.Dir(basePath)
	}
	path := filepath.Join(dir, "config", "config."+env+".yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// resolveCategories returns the overlay's plan if it declares one, else the
// base file's, else DefaultCategories.
func resolveCategories(basePath, overlayPath string) ([]types.CategoryTarget, error) {
	for _, path := range []string{overlayPath, basePath} {
		if path == "" {
			continue
		}
		cats, found, err := ReadCategories(path)
		if err != nil {
			return nil, err
		}
		if found {
			return cats, nil
		}
	}
	out := make([]types.CategoryTarget, len(DefaultCategories))
	copy(out, DefaultCategories)
	return out, nil
}
