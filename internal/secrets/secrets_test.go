// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Store
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "  gm_abc123  \n")
				writeFile(t, dir, AnthropicAPIKey, "sk-ant-xyz\n")
				return dir
			},
			want: Store{
				GeminiAPIKey:    "gm_abc123",
				AnthropicAPIKey: "sk-ant-xyz",
			},
		},
		{
			name: "returns empty store for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Store{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "valid-key")
				writeFile(t, dir, AnthropicAPIKey, "   \n\t  ")
				return dir
			},
			want: Store{GeminiAPIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, GeminiAPIKey, "gm_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Store{GeminiAPIKey: "gm_real"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading secrets directory")
}

func TestStore_APIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", " env-claude ")

	s := Store{GeminiAPIKey: "file-gemini"}

	assert.Equal(t, "file-gemini", s.APIKey("gemini"))
	assert.Equal(t, "file-gemini", s.APIKey("Gemini"))
	assert.Equal(t, "env-claude", s.APIKey("claude"), "environment is the fallback")
	assert.Empty(t, s.APIKey("palm"))
}

func TestStore_FilePreferredOverEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	assert.Equal(t, "from-file", Store{GeminiAPIKey: "from-file"}.Get(GeminiAPIKey))
	assert.Equal(t, "from-env", Store{}.Get(GeminiAPIKey))
	assert.Empty(t, Store{}.Get("unknown-key"))
}

func TestKeyFile(t *testing.T) {
	assert.Equal(t, GeminiAPIKey, KeyFile("gemini"))
	assert.Equal(t, AnthropicAPIKey, KeyFile("claude"))
	assert.Empty(t, KeyFile("other"))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
