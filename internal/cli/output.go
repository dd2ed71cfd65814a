package cli

import (
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// Colors are dropped automatically when stdout is not a terminal.
var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// renderMarkdown renders an artifact for terminal reading.
func renderMarkdown(w io.Writer, text string, width int) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(text)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
