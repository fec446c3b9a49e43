// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves generation-service credentials. Keys are read
// from a directory of plain-text files (filename is the key name, trimmed
// contents the value) and fall back to environment variables.
//
// Supported key files: gemini-api-key, anthropic-api-key, elasticsearch-password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets/"

// Key file names.
const (
	GeminiAPIKey          = "gemini-api-key"
	AnthropicAPIKey       = "anthropic-api-key"
	ElasticsearchPassword = "elasticsearch-password"
)

// envFallback maps a key file to the environment variable consulted when
// the file is absent.
var envFallback = map[string]string{
	GeminiAPIKey:          "GEMINI_API_KEY",
	AnthropicAPIKey:       "ANTHROPIC_API_KEY",
	ElasticsearchPassword: "ELASTICSEARCH_PASSWORD",
}

// providerKeys maps a generation provider to its key file.
var providerKeys = map[string]string{
	"gemini": GeminiAPIKey,
	"claude": AnthropicAPIKey,
}

// Store is a loaded set of secrets.
type Store map[string]string

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Get returns the value for key, preferring the file over the environment.
func (s Store) Get(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	if env, ok := envFallback[key]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// APIKey returns the credential for a generation provider, or "" when the
// provider is unknown or no credential is available.
func (s Store) APIKey(provider string) string {
	key, ok := providerKeys[strings.ToLower(provider)]
	if !ok {
		return ""
	}
	return s.Get(key)
}

// KeyFile returns the key file name for provider.
func KeyFile(provider string) string {
	return providerKeys[strings.ToLower(provider)]
}
