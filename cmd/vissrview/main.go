package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpapi "github.com/sekaiwx/vissrview/internal/api/http"
	"github.com/sekaiwx/vissrview/internal/cache"
	"github.com/sekaiwx/vissrview/internal/config"
	"github.com/sekaiwx/vissrview/internal/fetch"
	"github.com/sekaiwx/vissrview/internal/pipeline"
	"github.com/sekaiwx/vissrview/internal/render"
	"github.com/sekaiwx/vissrview/internal/scheduler"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Retriever over FTP with the configured resilience budget.
	transport := fetch.NewFTPTransport(cfg.FTPHost, cfg.FetchTimeout)
	backoff := fetch.DefaultBackoff
	backoff.MaxAttempts = cfg.FetchRetries
	retriever := fetch.NewRetriever(transport, backoff)

	renderer := render.NewRenderer()
	renderer.Stretch = cfg.RenderStretch
	renderer.DPI = cfg.RenderDPI
	renderer.Scale.Domain = [2]float64{cfg.RenderMinC, cfg.RenderMaxC}

	// Artifact cache owned here, torn down with the process.
	artifactCache := cache.New(cfg.CacheTTL, nil)

	pipe := pipeline.New(retriever, renderer, artifactCache)

	sweeper := scheduler.New(artifactCache, cfg.CacheSweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start cache sweeper")
	}
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "vissrview",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Renders can take the better part of a minute on a cold cache.
		WriteTimeout: 3 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "vissrview",
		})
	})

	httpapi.RegisterRoutes(app, pipe)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
