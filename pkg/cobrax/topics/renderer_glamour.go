package topics

import (
	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown topics with glamour
type GlamourRenderer struct {
	// Style is "auto", a built-in style name such as "dark" or "notty", or
	// a path to a JSON style
	Style string
	// Width wraps output at this many columns; 0 keeps glamour's default
	Width int
}

// NewGlamourRenderer creates a renderer with terminal style detection.
// Plain is set when output is not a terminal, so no escape codes leak into
// pipes.
func NewGlamourRenderer(plain bool) *GlamourRenderer {
	style := "auto"
	if plain {
		style = "notty"
	}
	return &GlamourRenderer{Style: style}
}

// Render converts markdown to terminal output; other formats pass through
func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	switch r.Style {
	case "", "auto":
		options = append(options, glamour.WithAutoStyle())
	case "dark", "light", "notty", "dracula", "pink", "ascii":
		options = append(options, glamour.WithStandardStyle(r.Style))
	default:
		options = append(options, glamour.WithStylePath(r.Style))
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
