// Package gemini generates reproduction pages with the Google Gemini
// generateContent API.
package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dlnilsson/repro-wizard/pkg/models"
	"github.com/dlnilsson/repro-wizard/pkg/providers"
	"github.com/dlnilsson/repro-wizard/pkg/repro"
)

// DefaultBaseURL is the public Gemini API root (no trailing slash).
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

const providerName = "Gemini"

var _ providers.Generator = (*Backend)(nil)

// Backend is the Gemini Generator. The API key travels as a query parameter.
type Backend struct {
	BaseURL string
	Client  *http.Client
}

func New(client *http.Client) *Backend {
	return &Backend{BaseURL: DefaultBaseURL, Client: client}
}

type apiRequest struct {
	SystemInstruction apiContent       `json:"systemInstruction"`
	Contents          []apiContent     `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// Response fields are pointers so that absent or null values decode
// without error and read as empty text.
type apiResponse struct {
	Candidates []apiCandidate `json:"candidates"`
}

type apiCandidate struct {
	Content *struct {
		Parts []struct {
			Text *string `json:"text"`
		} `json:"parts"`
	} `json:"content"`
}

func (b *Backend) Generate(ctx context.Context, apiKey string, spec models.ModelSpec, bugReport string) (string, error) {
	payload := apiRequest{
		SystemInstruction: apiContent{Parts: []apiPart{{Text: repro.SystemInstruction}}},
		Contents: []apiContent{{
			Role:  "user",
			Parts: []apiPart{{Text: repro.UserPrompt(bugReport)}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     repro.Temperature,
			MaxOutputTokens: repro.MaxTokens,
		},
	}

	var resp apiResponse
	err := providers.PostJSON(ctx, providers.Request{
		Provider: providerName,
		URL:      b.endpoint(spec.Model, apiKey),
		Client:   b.Client,
	}, payload, &resp)
	if err != nil {
		return "", err
	}
	return firstCandidateText(resp), nil
}

func (b *Backend) endpoint(model, apiKey string) string {
	base := strings.TrimRight(b.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/v1beta/models/" + url.PathEscape(model) + ":generateContent?key=" + url.QueryEscape(apiKey)
}

func firstCandidateText(resp apiResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != nil {
			text.WriteString(*p.Text)
		}
	}
	return text.String()
}
