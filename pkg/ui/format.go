package ui

import (
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how command results are rendered
type Format int

const (
	// FormatAuto picks terminal or text depending on where output goes
	FormatAuto Format = iota
	// FormatTerminal is styled output for interactive terminals
	FormatTerminal
	// FormatText is the same layout without styling
	FormatText
	// FormatJSON encodes the raw result, one document per invocation
	FormatJSON
)

// formatNames lists the canonical name of each format first, then aliases
var formatNames = []struct {
	format Format
	names  []string
}{
	{FormatAuto, []string{"auto", ""}},
	{FormatTerminal, []string{"term", "terminal"}},
	{FormatText, []string{"text", "plain"}},
	{FormatJSON, []string{"json"}},
}

// String returns the canonical name of the format
func (f Format) String() string {
	for _, entry := range formatNames {
		if entry.format == f {
			return entry.names[0]
		}
	}
	return "unknown"
}

// Formats returns the canonical format names, for flag help and completion
func Formats() []string {
	out := make([]string, 0, len(formatNames))
	for _, entry := range formatNames {
		out = append(out, entry.names[0])
	}
	return out
}

// ParseFormat accepts a canonical name or alias, case-insensitively.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, entry := range formatNames {
		for _, name := range entry.names {
			if name == s {
				return entry.format, nil
			}
		}
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %s", s).
		WithDetail("valid", strings.Join(Formats(), ", "))
}

// DetectFormat resolves FormatAuto for output. Only a color-capable
// terminal gets FormatTerminal.
func DetectFormat(output io.Writer) Format {
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}

	// buffers, pipes wrapped in writers and redirected files
	file, ok := output.(*os.File)
	if !ok || (!isatty.IsTerminal(file.Fd()) && !isatty.IsCygwinTerminal(file.Fd())) {
		return FormatText
	}

	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
