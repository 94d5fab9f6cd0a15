package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// plainStyles is set by DisableColor.
var plainStyles bool

// RenderMarkdown renders a task body for the terminal. When rendering fails
// the raw body is returned.
func RenderMarkdown(body string, width int) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	style := glamour.WithAutoStyle()
	if plainStyles {
		style = glamour.WithStandardStyle("notty")
	}
	opts := []glamour.TermRendererOption{style, glamour.WithEmoji()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return body
	}
	out, err := r.Render(body)
	if err != nil {
		return body
	}
	return strings.Trim(out, "\n")
}
