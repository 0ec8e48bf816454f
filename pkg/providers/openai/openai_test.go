package openai_test

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
	"github.com/dlnilsson/repro-wizard/pkg/providers/openai"
	"github.com/dlnilsson/repro-wizard/pkg/repro"
)

var spec = models.ModelSpec{ID: "m", Label: "OpenAI - gpt-test", Provider: models.ProviderOpenAI, Model: "gpt-test"}

func newTestServer(t *testing.T, handler http.HandlerFunc) *openai.Backend {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b := openai.New(srv.Client())
	b.BaseURL = srv.URL
	return b
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	return req
}

func TestGenerate_SendsChatCompletion(t *testing.T) {
	t.Parallel()

	b := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := readBody(t, r)
		assert.Equal(t, "gpt-test", req["model"])
		assert.InDelta(t, repro.Temperature, req["temperature"], 0.0001)
		assert.EqualValues(t, repro.MaxTokens, req["max_tokens"])

		msgs, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 2)
		sys, _ := msgs[0].(map[string]any)
		assert.Equal(t, "system", sys["role"])
		assert.Equal(t, repro.SystemInstruction, sys["content"])
		user, _ := msgs[1].(map[string]any)
		assert.Equal(t, "user", user["role"])
		assert.Equal(t, repro.UserPrompt("the bug"), user["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"<html>ok</html>"}}]}`)
	})

	out, err := b.Generate(context.Background(), "sk-test", spec, "the bug")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", out)
}

func TestGenerate_MissingFieldsYieldEmptyText(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{}`, `{"choices":[]}`, `{"choices":[{}]}`, `{"choices":[{"message":{}}]}`} {
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
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key"}}`)
	})

	_, err := b.Generate(context.Background(), "bad", spec, "bug")
	require.Error(t, err)

	var httpErr *providers.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "bad key")
	assert.Contains(t, err.Error(), "OpenAI API error: HTTP 401")
}
