package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/emissions-explorer/internal/api/http"
	"github.com/i474232898/emissions-explorer/internal/config"
	"github.com/i474232898/emissions-explorer/internal/indicators"
	"github.com/i474232898/emissions-explorer/internal/indicators/worldbank"
	"github.com/i474232898/emissions-explorer/internal/scheduler"
	"github.com/i474232898/emissions-explorer/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for the World Bank API.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source := worldbank.NewClient(httpClient, worldbank.Options{
		BaseURL:     cfg.WorldBankBaseURL,
		PerPage:     cfg.FetchPerPage,
		ConvertDate: cfg.FetchConvertDate,
		Backoff: worldbank.BackoffConfig{
			MaxRetries:      cfg.FetchMaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Breaker: worldbank.BreakerConfig{
			Failures: uint32(cfg.BreakerFailures),
			Timeout:  cfg.BreakerTimeout,
		},
	})

	var cache indicators.Store = store.NewFileStore()
	if cfg.CacheDisabled {
		log.Printf("INFO: cache disabled; indicators are fetched on every start")
		cache = store.NewMemoryStore()
	}

	service := indicators.NewService(source, cache, cfg.Catalog, cfg.Regions)

	// Load once before serving; the dataset is read-only afterwards.
	if _, err := service.Load(context.Background(), cfg.CachePath); err != nil {
		log.Fatalf("failed to load indicators: %v", err)
	}

	if !cfg.CacheDisabled {
		sched := scheduler.New(cfg.CachePath, cfg.RefreshInterval, 10*time.Minute,
			func(ctx context.Context, path string) error {
				_, err := service.FetchAndStore(ctx, path)
				return err
			})
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "emissions-explorer",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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
		ds, err := service.Dataset()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "emissions-explorer",
			"rows":     ds.Len(),
			"entities": len(ds.Entities()),
		})
	})

	httpapi.RegisterRoutes(app, service, cfg.DefaultMetric)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, app, ":"+cfg.Port); err != nil {
		log.Fatalf("fiber server failed: %v", err)
	}
}

// serve runs app on addr until ctx is done and then shuts it down.
// A Listen failure, such as the port being taken, is returned immediately.
func serve(ctx context.Context, app *fiber.App, addr string) error {
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
}
