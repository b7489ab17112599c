// pkg/ui/display/write_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test the plain layout of display views

package display_test

import (
	"bytes"
	"testing"

	"github.com/arthur-debert/shelf/pkg/ui/display"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePlain(t *testing.T) {
	view := &display.View{
		Message: "Done",
		Sections: []display.Section{
			{Title: "Published", Items: []display.Item{
				{Status: display.StatusSuccess, Label: "lib@1.0.0", Detail: "2 files", Path: "/store/lib"},
				{Status: display.StatusSkipped, Label: "dep@1.0.0", Detail: "unchanged"},
			}},
			{Title: "Pushed"},
			{Title: "Updated", Empty: "Nothing to update"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, display.Write(&buf, view, display.Plain))

	expected := "Done\n" +
		"\n" +
		"Published\n" +
		"  +  lib@1.0.0  2 files  /store/lib\n" +
		"  =  dep@1.0.0  unchanged\n" +
		"\n" +
		"Updated\n" +
		"  Nothing to update\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, display.Write(&buf, &display.View{Raw: "[publish]\nchanged = false"}, display.Plain))
	assert.Equal(t, "[publish]\nchanged = false\n", buf.String())
}

func TestWriteUsesStyler(t *testing.T) {
	var seen []string
	styler := func(style, text string) string {
		seen = append(seen, style)
		return text
	}
	view := &display.View{Sections: []display.Section{{Title: "Removed", Items: []display.Item{{Status: display.StatusWarning, Path: "/gone"}}}}}

	var buf bytes.Buffer
	require.NoError(t, display.Write(&buf, view, styler))
	assert.Equal(t, []string{"Section", "Warning", "Path"}, seen)
	assert.Equal(t, "Removed\n  !  /gone\n", buf.String())
}
