// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/shelf/pkg/ui/display"
	"github.com/arthur-debert/shelf/pkg/ui/styles"
)

// Renderer styles display views with the semantic style table
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	if view, ok := display.Convert(result); ok {
		return display.Write(r.output, view, styles.Render)
	}
	_, err := fmt.Fprintf(r.output, "%+v\n", result)
	return err
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, styles.Render("Error", "Error: "+err.Error()))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.Render("Info", msg))
	return err
}
