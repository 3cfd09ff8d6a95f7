// Package output renders specinit results for people and for machines.
//
// Three formats are supported: rich terminal output (lipgloss styles, pterm
// tables, glamour markdown), plain text for pipes and NO_COLOR, and JSON.
// Every renderer accepts the same result types:
//
//   - *initializer.Result from a setup run
//   - *initializer.CheckReport from the check command
//   - TokenList from the tokens command
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/specforge/specinit/pkg/logging"
	"github.com/specforge/specinit/pkg/tokens"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderResult renders any supported result type
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error

	// RenderMarkdown renders a markdown document
	RenderMarkdown(md string) error
}

// TokenList is the token table shown by the tokens command
type TokenList struct {
	Definitions []tokens.Definition
	Legacy      bool
}

// NewRenderer creates a renderer for format. FormatAuto inspects output
// when it is a file and falls back to plain text otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	logger := logging.GetLogger("output")
	logger.Debug().Str("format", format.String()).Msg("Creating renderer")

	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return newTextRenderer(output, true), nil
	case FormatText:
		return newTextRenderer(output, false), nil
	case FormatJSON:
		return newJSONRenderer(output), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
