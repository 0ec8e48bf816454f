package providers

import (
	"context"
	"sort"
	"strings"

	"github.com/dlnilsson/repro-wizard/pkg/models"
)

// Generator turns a bug report into generated page text for one provider.
// The returned text is raw model output; callers strip fences.
type Generator interface {
	Generate(ctx context.Context, apiKey string, spec models.ModelSpec, bugReport string) (string, error)
}

// Set maps each provider to its Generator.
type Set map[models.Provider]Generator

// For returns the Generator registered for p.
func (s Set) For(p models.Provider) (Generator, error) {
	g, ok := s[p]
	if !ok || g == nil {
		return nil, &models.UnknownProviderError{Tag: string(p)}
	}
	return g, nil
}

// Names lists the registered providers, sorted.
func (s Set) Names() string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
