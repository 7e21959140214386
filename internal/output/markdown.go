package output

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders markdown for terminal display with glamour.
// Falls back to the raw content when stdout is not a terminal or rendering fails.
func RenderMarkdown(content string) string {
	if !IsTTY() {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(TerminalWidth(80)),
	)
	if err != nil {
		Debug("markdown renderer unavailable", "error", err)
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		Debug("markdown render failed", "error", err)
		return content
	}

	return rendered
}
