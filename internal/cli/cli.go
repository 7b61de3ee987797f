// Package cli wires the websnatch commands: the root URL-to-PDF conversion,
// a serve mode, and version info.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"websnatch/internal/config"
	"websnatch/internal/logging"
	"websnatch/internal/renderer"
	"websnatch/internal/server"
	"websnatch/internal/target"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ExitError carries the process exit code for main. The user-facing message
// has already been printed when it is returned.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// App is the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	// injectable for tests
	now       func() time.Time
	newEngine func(config.RendererConfig) (renderer.Engine, error)

	output     string
	debug      bool
	configPath string
}

// New creates the CLI application.
func New() *App {
	app := &App{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		now:       time.Now,
		newEngine: renderer.New,
	}

	app.root = &cobra.Command{
		Use:   "websnatch <url>",
		Short: "Convert a web page to a PDF file",
		Long: `websnatch converts the web page at a URL into a PDF file by driving an
external HTML-to-PDF renderer (wkhtmltopdf by default).

When --output is omitted, a filename is generated from the URL's domain and
last path segment plus a timestamp, so repeated runs do not overwrite each
other.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runConvert(cmd.Context(), args[0])
		},
	}

	app.root.Flags().StringVarP(&app.output, "output", "o", "", "output PDF file path (default: generated from the URL)")
	app.root.PersistentFlags().BoolVarP(&app.debug, "debug", "d", false, "enable debug logging")
	app.root.PersistentFlags().StringVar(&app.configPath, "config", "", "path to a YAML config file")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newServeCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// setup loads the configuration and initializes logging from it.
func (a *App) setup() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	logging.Init(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	if a.debug {
		logging.SetLogLevel("debug")
	}
	return cfg, nil
}

// runConvert is the root command: validate, resolve the output name, render.
func (a *App) runConvert(ctx context.Context, rawURL string) error {
	cfg, err := a.setup()
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return &ExitError{Code: 1, Err: err}
	}

	if !target.ValidURL(rawURL) {
		fmt.Fprintf(a.stderr, "Error: invalid URL %q\n", rawURL)
		return &ExitError{Code: 1, Err: fmt.Errorf("invalid URL %q", rawURL)}
	}

	output := a.output
	if output == "" {
		output = target.OutputName(rawURL, a.now())
		fmt.Fprintf(a.stdout, "Using generated output name: %s\n", output)
	}

	eng, err := a.newEngine(cfg.Renderer)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return &ExitError{Code: 1, Err: err}
	}

	if err := eng.Render(ctx, rawURL, output); err != nil {
		var exitErr *renderer.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(a.stderr, "Renderer error: %s\n", strings.TrimSpace(exitErr.Stderr))
			logging.Error("Renderer failed", "exit_code", exitErr.Code, "engine", eng.Name())
			return &ExitError{Code: exitErr.Code, Err: err}
		}
		fmt.Fprintf(a.stderr, "An unexpected error occurred: %v\n", err)
		logging.Error("Conversion failed", "error", err.Error(), "engine", eng.Name())
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintf(a.stdout, "Success! PDF generated: %s\n", output)
	return nil
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "websnatch version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Long:  "serve exposes the same URL-to-PDF conversion over HTTP at GET /v1/pdf?url=...",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.setup()
			if err != nil {
				fmt.Fprintf(a.stderr, "Error: %v\n", err)
				return &ExitError{Code: 1, Err: err}
			}
			return server.Run(cmd.Context(), cfg)
		},
	}
}
