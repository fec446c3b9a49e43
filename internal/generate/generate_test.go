// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/faq-engine/internal/httputil"
	"github.com/pdiddy/faq-engine/pkg/types"
)

func withGeminiURL(t *testing.T, url string) {
	t.Helper()
	old := geminiBaseURL
	geminiBaseURL = url
	t.Cleanup(func() { geminiBaseURL = old })
}

func withClaudeURL(t *testing.T, url string) {
	t.Helper()
	old := claudeAPIURL
	claudeAPIURL = url
	t.Cleanup(func() { claudeAPIURL = old })
}

func TestGeminiBackend_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k123", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "make faqs", req.Contents[0].Parts[0].Text)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[{\"question\":"},{"text":"\"Q?\"}]"}]}}]}`))
	}))
	defer ts.Close()
	withGeminiURL(t, ts.URL)

	g := &GeminiBackend{APIKey: "k123", Model: "gemini-test", Client: ts.Client()}
	got, err := g.Generate(context.Background(), "make faqs")
	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Q?"}]`, got)
}

func TestGeminiBackend_Empty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{"candidates":[]}`},
		{name: "blank text", body: `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`},
		{name: "blocked", body: `{"promptFeedback":{"blockReason":"SAFETY"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()
			withGeminiURL(t, ts.URL)

			g := &GeminiBackend{APIKey: "k", Client: ts.Client()}
			_, err := g.Generate(context.Background(), "p")
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestGeminiBackend_TransportErrorOmitsKey(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	withGeminiURL(t, ts.URL)
	ts.Close()

	g := &GeminiBackend{APIKey: "SECRET-KEY-123", Model: "gemini-test"}
	_, err := g.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.Contains(t, err.Error(), ts.URL)
}

func TestGeminiBackend_QuotaError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	withGeminiURL(t, ts.URL)

	g := &GeminiBackend{APIKey: "k", Client: ts.Client()}
	_, err := g.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, httputil.ErrRateLimited)
}

func TestClaudeBackend_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ck", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, defaultClaudeMaxTokens, req.MaxTokens)
		assert.Equal(t, "make faqs", req.Messages[0].Content)

		w.Write([]byte(`{"content":[{"type":"text","text":"` + "```json\\n[]\\n```" + `"},{"type":"tool_use","text":"ignored"}]}`))
	}))
	defer ts.Close()
	withClaudeURL(t, ts.URL)

	c := &ClaudeBackend{APIKey: "ck", Model: "claude-test", Client: ts.Client()}
	got, err := c.Generate(context.Background(), "make faqs")
	require.NoError(t, err)
	assert.Equal(t, "```json\n[]\n```", got)
}

func TestClaudeBackend_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("overloaded"))
	}))
	defer ts.Close()
	withClaudeURL(t, ts.URL)

	c := &ClaudeBackend{APIKey: "ck", Client: ts.Client()}
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.AIConfig
		want    any
		wantErr bool
	}{
		{name: "gemini", cfg: types.AIConfig{Provider: ProviderGemini, APIKey: "k"}, want: &GeminiBackend{}},
		{name: "default provider", cfg: types.AIConfig{APIKey: "k"}, want: &GeminiBackend{}},
		{name: "claude", cfg: types.AIConfig{Provider: ProviderClaude, APIKey: "k"}, want: &ClaudeBackend{}},
		{name: "missing key", cfg: types.AIConfig{Provider: ProviderGemini}, wantErr: true},
		{name: "unknown provider", cfg: types.AIConfig{Provider: "palm", APIKey: "k"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, g)
		})
	}
}

func TestNew_MissingKeyIsSentinel(t *testing.T) {
	_, err := New(types.AIConfig{Provider: ProviderClaude}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
