// Package renderer turns a web page URL into a PDF file on disk. The default
// engine shells out to wkhtmltopdf; a headless-Chrome engine is available as
// an alternative backend.
package renderer

import (
	"context"
	"fmt"
	"strings"

	"websnatch/internal/config"
)

// Engine renders the page at url into a PDF at outputPath.
type Engine interface {
	Name() string
	Render(ctx context.Context, url, outputPath string) error
}

// ExitError reports a renderer process that terminated with a non-zero exit
// code. The code is passed through as the tool's own exit code.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("renderer exited with code %d", e.Code)
	}
	return fmt.Sprintf("renderer exited with code %d: %s", e.Code, msg)
}

// New selects an engine from the renderer config.
func New(cfg config.RendererConfig) (Engine, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", "wkhtmltopdf":
		return &Wkhtmltopdf{cfg: cfg}, nil
	case "chrome", "chromium":
		return &Chrome{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown renderer engine %q", cfg.Engine)
	}
}
