package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"websnatch/internal/config"
	"websnatch/internal/logging"
	"websnatch/internal/renderer"
	"websnatch/internal/target"
)

type pdfHandler struct {
	cfg    config.Config
	engine renderer.Engine
	rdb    *redis.Client
}

// handleConvert renders the page at ?url= and responds with the PDF bytes,
// serving a cached copy when one exists.
func (h *pdfHandler) handleConvert(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	if !target.ValidURL(rawURL) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid URL: must include scheme and host")
	}

	filename := target.OutputName(rawURL, time.Now())
	cacheKey := h.cacheKey(rawURL)

	if h.rdb != nil && h.cfg.Cache.Enabled {
		if cached := h.getCached(c, cacheKey); cached != nil {
			setPDFHeaders(c, filename)
			return c.Send(cached)
		}
	}

	pdfBuf, err := h.render(rawURL)
	if err != nil {
		requestID, _ := c.Locals("requestid").(string)

		var exitErr *renderer.ExitError
		if errors.As(err, &exitErr) {
			logging.Error("Renderer failed", "exit_code", exitErr.Code, "url", rawURL, "request_id", requestID)
			return fiber.NewError(fiber.StatusBadGateway, "Renderer failed: "+strings.TrimSpace(exitErr.Stderr))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Error("Render timeout", "timeout_secs", h.cfg.Renderer.TimeoutSecs, "url", rawURL, "request_id", requestID)
			return fiber.NewError(fiber.StatusRequestTimeout, "PDF rendering took too long")
		}
		logging.Error("PDF generation failed", "error", err.Error(), "request_id", requestID)
		return fiber.NewError(fiber.StatusInternalServerError, "PDF generation failed: "+err.Error())
	}

	if h.rdb != nil && h.cfg.Cache.Enabled {
		h.setCached(c, cacheKey, pdfBuf)
	}

	logging.Info("PDF generated", "filename", filename, "bytes", len(pdfBuf))

	setPDFHeaders(c, filename)
	return c.Send(pdfBuf)
}

// render runs the engine against a temp output file and returns the bytes.
// Render time is bounded by the configured timeout.
func (h *pdfHandler) render(rawURL string) ([]byte, error) {
	tmp, err := os.CreateTemp("", "websnatch-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	timeout := time.Duration(h.cfg.Renderer.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := h.engine.Render(ctx, rawURL, tmpPath); err != nil {
		return nil, err
	}
	return os.ReadFile(tmpPath)
}

func (h *pdfHandler) cacheKey(rawURL string) string {
	sum := sha256.New()
	sum.Write([]byte(rawURL))
	sum.Write([]byte(h.engine.Name()))
	sum.Write([]byte(h.cfg.Renderer.PageSize))
	sum.Write([]byte(strconv.FormatFloat(h.cfg.Renderer.MarginInches, 'f', 2, 64)))
	return "pdfcache:" + hex.EncodeToString(sum.Sum(nil))
}

// getCached returns the cached PDF or nil; cache errors degrade to a render.
func (h *pdfHandler) getCached(c *fiber.Ctx, key string) []byte {
	ctx, cancel := context.WithTimeout(c.Context(), 1*time.Second)
	defer cancel()

	cached, err := h.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil
	}

	logging.Info("PDF cache hit", "key", key)
	return cached
}

func (h *pdfHandler) setCached(c *fiber.Ctx, key string, data []byte) {
	ctx, cancel := context.WithTimeout(c.Context(), 1*time.Second)
	defer cancel()

	ttl := h.cfg.Cache.TTL.Std()
	if ttl <= 0 {
		ttl = 1 * time.Minute
	}

	if err := h.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err)
	}
}

func setPDFHeaders(c *fiber.Ctx, filename string) {
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", "attachment; filename="+filename)
}
