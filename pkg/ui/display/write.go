package display

import (
	"io"
	"strings"
)

// Styler decorates text with a named style from pkg/ui/styles
type Styler func(style, text string) string

// Plain leaves text untouched
func Plain(_, text string) string {
	return text
}

// Write prints view to w, one block per visible section
func Write(w io.Writer, view *View, style Styler) error {
	var b strings.Builder
	blocks := 0

	if view.Message != "" {
		b.WriteString(style("Bold", view.Message))
		b.WriteString("\n")
		blocks++
	}

	for _, section := range view.Sections {
		if !section.Visible() {
			continue
		}
		if blocks > 0 {
			b.WriteString("\n")
		}
		blocks++

		b.WriteString(style("Section", section.Title))
		b.WriteString("\n")
		if len(section.Items) == 0 {
			b.WriteString("  ")
			b.WriteString(style("Muted", section.Empty))
			b.WriteString("\n")
			continue
		}
		for _, item := range section.Items {
			writeItem(&b, item, style)
		}
	}

	if view.Raw != "" {
		if blocks > 0 {
			b.WriteString("\n")
		}
		b.WriteString(view.Raw)
		if !strings.HasSuffix(view.Raw, "\n") {
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeItem(b *strings.Builder, item Item, style Styler) {
	parts := []string{style(item.Status.Style(), item.Status.Symbol())}
	if item.Label != "" {
		parts = append(parts, style("Package", item.Label))
	}
	if item.Detail != "" {
		parts = append(parts, style("Muted", item.Detail))
	}
	if item.Path != "" {
		parts = append(parts, style("Path", item.Path))
	}
	b.WriteString("  ")
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n")
}
