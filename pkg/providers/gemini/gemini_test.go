package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlnilsson/repro-wizard/pkg/models"
	"github.com/dlnilsson/repro-wizard/pkg/providers"
	"github.com/dlnilsson/repro-wizard/pkg/providers/gemini"
	"github.com/dlnilsson/repro-wizard/pkg/repro"
)

var spec = models.ModelSpec{ID: "g", Label: "Gemini", Provider: models.ProviderGemini, Model: "gemini-test"}

func newTestServer(t *testing.T, handler http.HandlerFunc) *gemini.Backend {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b := gemini.New(srv.Client())
	b.BaseURL = srv.URL
	return b
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestGenerate_SendsGenerateContent(t *testing.T) {
	t.Parallel()

	b := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key&1", r.URL.Query().Get("key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req map[string]any
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &req))

		si, _ := req["systemInstruction"].(map[string]any)
		siParts, _ := si["parts"].([]any)
		require.Len(t, siParts, 1)
		assert.Equal(t, repro.SystemInstruction, siParts[0].(map[string]any)["text"])

		contents, _ := req["contents"].([]any)
		require.Len(t, contents, 1)
		first, _ := contents[0].(map[string]any)
		assert.Equal(t, "user", first["role"])
		parts, _ := first["parts"].([]any)
		assert.Equal(t, repro.UserPrompt("bug text"), parts[0].(map[string]any)["text"])

		cfg, _ := req["generationConfig"].(map[string]any)
		assert.InDelta(t, repro.Temperature, cfg["temperature"], 0.0001)
		assert.EqualValues(t, repro.MaxTokens, cfg["maxOutputTokens"])

		writeJSON(t, w, map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "<html>"}, {"text": "</html>"}},
				},
			}},
		})
	})

	out, err := b.Generate(context.Background(), "key&1", spec, "bug text")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", out)
}

func TestGenerate_MissingFieldsYieldEmptyText(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{}]}`,
		`{"candidates":[{"content":{}}]}`,
		`{"candidates":[{"content":{"parts":[{}]}}]}`,
		`{"candidates":[{"content":null}]}`,
	} {
		b := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		out, err := b.Generate(context.Background(), "k", spec, "bug")
		require.NoError(t, err, body)
		assert.Empty(t, out, body)
	}
}

func TestGenerate_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	b := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, "quota exceeded")
	})

	_, err := b.Generate(context.Background(), "k", spec, "bug")
	var httpErr *providers.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, "Gemini API error: HTTP 429 - quota exceeded", err.Error())
}

func TestGenerate_TransportErrorHidesKey(t *testing.T) {
	t.Parallel()

	b := gemini.New(nil)
	b.BaseURL = "http://127.0.0.1:1"

	_, err := b.Generate(context.Background(), "secret-key", spec, "bug")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}
