// Package models resolves the configured generation targets shown in the
// context menu. It owns the built-in default list; callers that need the
// defaults read them from here.
package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Provider identifies a remote text-generation service.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// DefaultProvider is used for entries that do not name a provider.
const DefaultProvider = ProviderOpenAI

// DefaultModel is used for entries that do not name a model.
const DefaultModel = "gpt-4.1"

var providers = []Provider{ProviderOpenAI, ProviderGemini}

// Providers returns the supported providers in display order.
func Providers() []Provider {
	return append([]Provider{}, providers...)
}

// Label returns the human readable provider name.
func (p Provider) Label() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Google Gemini"
	default:
		return string(p)
	}
}

// UnknownProviderError is returned for provider tags outside Providers().
type UnknownProviderError struct {
	Tag string
}

func (e *UnknownProviderError) Error() string {
	return "Unknown provider: " + e.Tag
}

// ParseProvider maps a persisted provider tag to a Provider.
func ParseProvider(tag string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(tag)))
	if slices.Contains(providers, p) {
		return p, nil
	}
	return "", &UnknownProviderError{Tag: tag}
}

// ModelSpec is one selectable generation target.
type ModelSpec struct {
	ID       string   `yaml:"id"`
	Label    string   `yaml:"label"`
	Provider Provider `yaml:"provider"`
	Model    string   `yaml:"model"`
}

// Entry is a persisted model row. Any field may be missing.
type Entry struct {
	ID       string `yaml:"id,omitempty"`
	Label    string `yaml:"label,omitempty"`
	Name     string `yaml:"name,omitempty"`
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

var defaultModels = []ModelSpec{
	{ID: "openai-gpt-4.1", Label: "OpenAI - gpt-4.1", Provider: ProviderOpenAI, Model: "gpt-4.1"},
	{ID: "openai-gpt-4.1-mini", Label: "OpenAI - gpt-4.1-mini", Provider: ProviderOpenAI, Model: "gpt-4.1-mini"},
	{ID: "gemini-2.5-flash", Label: "Gemini - gemini-2.5-flash", Provider: ProviderGemini, Model: "gemini-2.5-flash"},
}

// DefaultModels returns a copy of the built-in model list.
func DefaultModels() []ModelSpec {
	return append([]ModelSpec{}, defaultModels...)
}

// DefaultEntries returns the built-in model list in its persisted form.
func DefaultEntries() []Entry {
	return lo.Map(defaultModels, func(m ModelSpec, _ int) Entry {
		return Entry{ID: m.ID, Label: m.Label, Provider: string(m.Provider), Model: m.Model}
	})
}

// Resolve normalizes persisted entries into complete specs. An empty list
// resolves to DefaultModels. Resolve never fails: an unrecognized provider tag
// is kept as-is and rejected at dispatch time.
func Resolve(entries []Entry) []ModelSpec {
	if len(entries) == 0 {
		return DefaultModels()
	}
	return lo.Map(entries, func(e Entry, idx int) ModelSpec {
		return normalize(e, idx)
	})
}

func normalize(e Entry, idx int) ModelSpec {
	id, _ := lo.Coalesce(strings.TrimSpace(e.ID), fmt.Sprintf("model-%d", idx))
	label, _ := lo.Coalesce(
		strings.TrimSpace(e.Label),
		strings.TrimSpace(e.Name),
		strings.TrimSpace(e.Model),
		fmt.Sprintf("Model %d", idx+1),
	)
	provider := DefaultProvider
	if tag := strings.TrimSpace(e.Provider); tag != "" {
		if p, err := ParseProvider(tag); err == nil {
			provider = p
		} else {
			provider = Provider(tag)
		}
	}
	model, _ := lo.Coalesce(strings.TrimSpace(e.Model), DefaultModel)
	return ModelSpec{ID: id, Label: label, Provider: provider, Model: model}
}

// At returns the spec at idx, or false when idx is out of range.
func At(specs []ModelSpec, idx int) (ModelSpec, bool) {
	if idx < 0 || idx >= len(specs) {
		return ModelSpec{}, false
	}
	return specs[idx], true
}
