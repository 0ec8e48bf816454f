package repro

import "strings"

// Generation parameters shared by every provider.
const (
	Temperature = 0.2
	MaxTokens   = 8000
)

// SystemInstruction describes the output contract for a reproduction page.
const SystemInstruction = "You are an elite front-end engineer with deep knowledge of browser " +
	"rendering, JavaScript, CSS, and Web APIs.\n" +
	"Given a bug report, you must output a SINGLE, SELF-CONTAINED HTML " +
	"test page that reproduces or illustrates the bug.\n\n" +
	"Requirements:\n" +
	"  - Use only vanilla HTML/CSS/JS (no external libraries).\n" +
	"  - Put CSS in <style> and JS in <script> inside the same HTML file.\n" +
	"  - Add concise comments explaining what the page is testing and " +
	"    how to trigger the behavior.\n" +
	"  - Add any image, audio, or video file/link in the file if necessary to reproduce the bug.\n" +
	"  - Run the test page by a button click and show the result on page.\n" +
	"  - Make page as minimal as possible. No fancy UI or extra features.\n" +
	"  - Prioritize clear variable names rather than excessive comments.\n" +
	"  - Do NOT wrap the result in markdown fences. Output ONLY raw HTML."

const userPromptHeader = "Bug report (from Bugzilla or similar):\n\n"

// UserPrompt builds the user turn for a bug report. The report text is sent
// verbatim.
func UserPrompt(bugReport string) string {
	var prompt strings.Builder
	prompt.WriteString(userPromptHeader)
	prompt.WriteString(bugReport)
	return prompt.String()
}
