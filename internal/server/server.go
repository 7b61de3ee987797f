// Package server runs the HTTP serve mode: the same URL-to-PDF conversion as
// the CLI, behind a fiber app with an optional redis byte cache.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"

	"websnatch/internal/config"
	"websnatch/internal/logging"
	"websnatch/internal/renderer"
)

// New creates and configures the fiber app. rdb may be nil when caching is
// disabled.
func New(cfg config.Config, eng renderer.Engine, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}

			logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    code,
					"message": msg,
				},
			})
		},
	})

	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return xid.New().String() },
	}))

	h := &pdfHandler{cfg: cfg, engine: eng, rdb: rdb}

	v1 := app.Group("/v1")
	v1.Get("/pdf", h.handleConvert)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "engine": eng.Name()})
	})

	// Ensure all responses, including 404s, return JSON.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

// Run builds the engine and cache client from cfg, starts the app, and shuts
// it down cleanly when ctx is canceled.
func Run(ctx context.Context, cfg config.Config) error {
	eng, err := renderer.New(cfg.Renderer)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.Cache.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Cache.RedisHost,
			DB:   cfg.Cache.RedisDB,
		})
	}

	app := New(cfg, eng, rdb)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Server.Host + cfg.Server.Port)
	}()
	logging.Info("Server listening", "addr", cfg.Server.Host+cfg.Server.Port, "engine", eng.Name())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Warn("Shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		return err
	}

	logging.Info("Server stopped cleanly")
	return nil
}
