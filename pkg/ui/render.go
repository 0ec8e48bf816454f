package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// RenderInfo formats an info message for the terminal. The body is shown
// as a preformatted block, matching the info page.
func RenderInfo(title, body string) string {
	md := "# " + title + "\n\n```\n" + strings.TrimRight(body, "\n") + "\n```\n"
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return plainInfo(title, body)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return plainInfo(title, body)
	}
	return out
}

func plainInfo(title, body string) string {
	return titleStyle.Render(title) + "\n\n" + body + "\n"
}
