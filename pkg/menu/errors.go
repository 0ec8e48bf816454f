package menu

import (
	"errors"

	"github.com/dlnilsson/repro-wizard/pkg/models"
)

const appTitle = "Repro Wizard"

// NoSelectionError means the menu was used without any selected text.
type NoSelectionError struct{}

func (NoSelectionError) Error() string { return "no text selected" }

// ModelNotFoundError means the clicked entry no longer maps to a model,
// usually because the model list shrank after the menu was built.
type ModelNotFoundError struct {
	Index int
}

func (e *ModelNotFoundError) Error() string {
	return "model entry not found"
}

// MissingAPIKeyError means the entry's provider has no API key configured.
type MissingAPIKeyError struct {
	Provider models.Provider
}

func (e *MissingAPIKeyError) Error() string {
	return "no API key configured for " + string(e.Provider)
}

// EmptyResponseError means nothing was left after stripping fences.
type EmptyResponseError struct{}

func (EmptyResponseError) Error() string { return "empty response" }

// Describe maps a pipeline error to the title and body of the page shown to
// the user.
func Describe(err error) (title, body string) {
	var (
		notFound *ModelNotFoundError
		noKey    *MissingAPIKeyError
	)
	switch {
	case errors.As(err, &NoSelectionError{}):
		return appTitle, "No text selected. Please select a bug report before using the menu."
	case errors.As(err, &notFound):
		return appTitle + " - Model not found",
			"The selected model entry could not be found. " +
				"Try running `repro-wizard config` and saving your models again."
	case errors.As(err, &noKey) && noKey.Provider == models.ProviderOpenAI:
		return appTitle + " - OpenAI setup required",
			"You selected an OpenAI model, but no OpenAI API key is configured.\n\n" +
				"Run `repro-wizard config` and paste your OpenAI API key, or set OPENAI_API_KEY.\n\n" +
				"Note: ChatGPT Plus/Pro uses a different billing system; " +
				"you still need an API key from the OpenAI platform."
	case errors.As(err, &noKey) && noKey.Provider == models.ProviderGemini:
		return appTitle + " - Gemini setup required",
			"You selected a Google Gemini model, but no Gemini API key is configured.\n\n" +
				"Get a Gemini API key from Google AI Studio (aistudio.google.com), " +
				"then paste it into `repro-wizard config` or set GEMINI_API_KEY."
	case errors.As(err, &EmptyResponseError{}):
		return appTitle + " - Empty response", "The AI response was empty or could not be parsed."
	default:
		return appTitle + " - Error", "An error occurred while generating the test page:\n\n" + err.Error()
	}
}
