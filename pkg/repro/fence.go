package repro

import (
	"regexp"
	"strings"
)

var (
	openingFence = regexp.MustCompile("^```[^\n]*\n")
	closingFence = regexp.MustCompile("```\\s*$")
)

// StripCodeFences removes one leading fence line (```html or ```) and one
// trailing ``` from generated text, then trims surrounding whitespace. Fences
// inside the document are left alone.
func StripCodeFences(text string) string {
	if text == "" {
		return ""
	}
	text = openingFence.ReplaceAllString(text, "")
	text = closingFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
