package renderer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"websnatch/internal/config"
)

// paper dimensions in inches, as PrintToPDF expects.
var paperSizes = map[string]struct{ Width, Height float64 }{
	"A3":     {11.69, 16.54},
	"A4":     {8.27, 11.69},
	"A5":     {5.83, 8.27},
	"LETTER": {8.5, 11},
	"LEGAL":  {8.5, 14},
}

// Chrome renders pages with headless Chrome via the DevTools protocol.
type Chrome struct {
	cfg config.RendererConfig
}

// Name implements Engine.
func (c *Chrome) Name() string { return "chrome" }

// Render implements Engine.
func (c *Chrome) Render(ctx context.Context, url, outputPath string) error {
	tmpDir, err := os.MkdirTemp("", "websnatch-chrome-*")
	if err != nil {
		return fmt.Errorf("cannot create temp profile dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(tmpDir),
		// Software rendering avoids GPU issues in minimal container environments.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.cfg.ChromePath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(c.cfg.ChromePath))
	}
	if c.cfg.ChromeNoSandbox {
		allocatorOptions = append(allocatorOptions, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	paper, ok := paperSizes[strings.ToUpper(c.cfg.PageSize)]
	if !ok {
		paper = paperSizes["A4"]
	}
	margin := c.cfg.MarginInches
	settle := time.Duration(c.cfg.JavascriptDelayMS) * time.Millisecond

	var pdfBuf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paper.Width).
				WithPaperHeight(paper.Height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return fmt.Errorf("chrome render: %w", err)
	}

	return os.WriteFile(outputPath, pdfBuf, 0o644)
}
