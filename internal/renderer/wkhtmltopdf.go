package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"websnatch/internal/config"
	"websnatch/internal/logging"
)

// Wkhtmltopdf invokes the wkhtmltopdf binary as a child process.
type Wkhtmltopdf struct {
	cfg config.RendererConfig
}

// Name implements Engine.
func (w *Wkhtmltopdf) Name() string { return "wkhtmltopdf" }

func (w *Wkhtmltopdf) binary() string {
	if w.cfg.Binary != "" {
		return w.cfg.Binary
	}
	return "wkhtmltopdf"
}

func (w *Wkhtmltopdf) args(url, outputPath string) []string {
	margin := fmt.Sprintf("%.2fin", w.cfg.MarginInches)
	return []string{
		"--page-size", w.cfg.PageSize,
		"--margin-top", margin,
		"--margin-right", margin,
		"--margin-bottom", margin,
		"--margin-left", margin,
		"--encoding", "UTF-8",
		"--no-stop-slow-scripts",
		"--javascript-delay", strconv.Itoa(w.cfg.JavascriptDelayMS),
		url,
		outputPath,
	}
}

// Render implements Engine. Both output streams are captured in full and the
// child is always waited on, so no pipe or process handle outlives the call.
func (w *Wkhtmltopdf) Render(ctx context.Context, url, outputPath string) error {
	bin := w.binary()
	args := w.args(url, outputPath)
	logging.Debug("Executing renderer", "command", bin+" "+strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if out := strings.TrimSpace(stdout.String()); out != "" {
		logging.Info("Renderer stdout", "output", out)
	}
	if out := strings.TrimSpace(stderr.String()); out != "" {
		logging.Warn("Renderer stderr", "output", out)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) && exitErr.ExitCode() > 0 {
			return &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("run %s: %w", bin, runErr)
	}
	return nil
}
