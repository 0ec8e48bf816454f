// Package openai generates reproduction pages with the OpenAI chat
// completions API.
package openai

import (
	"context"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/dlnilsson/repro-wizard/pkg/models"
	"github.com/dlnilsson/repro-wizard/pkg/providers"
	"github.com/dlnilsson/repro-wizard/pkg/repro"
)

// DefaultBaseURL is the public OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

const providerName = "OpenAI"

var _ providers.Generator = (*Backend)(nil)

// Backend is the OpenAI Generator.
type Backend struct {
	BaseURL string
	Client  *http.Client
}

// New returns a Backend for the public API.
func New(client *http.Client) *Backend {
	return &Backend{BaseURL: DefaultBaseURL, Client: client}
}

func (b *Backend) Generate(ctx context.Context, apiKey string, spec models.ModelSpec, bugReport string) (string, error) {
	payload := goopenai.ChatCompletionRequest{
		Model: spec.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: repro.SystemInstruction},
			{Role: goopenai.ChatMessageRoleUser, Content: repro.UserPrompt(bugReport)},
		},
		Temperature: repro.Temperature,
		MaxTokens:   repro.MaxTokens,
	}

	var resp goopenai.ChatCompletionResponse
	err := providers.PostJSON(ctx, providers.Request{
		Provider: providerName,
		URL:      b.baseURL() + "/chat/completions",
		Headers:  map[string]string{"Authorization": "Bearer " + apiKey},
		Client:   b.Client,
	}, payload, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *Backend) baseURL() string {
	if strings.TrimSpace(b.BaseURL) == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(b.BaseURL, "/")
}
