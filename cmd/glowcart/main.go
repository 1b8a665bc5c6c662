package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"glowcart/internal/config"
	"glowcart/internal/events"
	"glowcart/internal/http/handlers"
	applog "glowcart/internal/log"
	"glowcart/internal/store"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	log.SetOutput(out)
	zl := applog.Init(out)
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := store.Open(ctx, cfg.DBDSN, cfg.RedisURL)
	if err != nil {
		zl.Fatal("store.open", zap.Error(err))
	}
	defer kv.Close()

	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		rabbit, err := events.DialRabbit(cfg.AMQPURL)
		if err != nil {
			// orders still work without a broker
			zl.Warn("events.dial", zap.Error(err))
		} else {
			pub = rabbit
		}
	}
	defer pub.Close()

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews(cfg.TemplatesDir),
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: out}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Status(fiber.StatusTooManyRequests)
			applog.Security(c, "rate.global.hit", nil)
			return c.JSON(fiber.Map{"error": "Too many requests. Please wait a minute."})
		},
	}))

	deps := handlers.NewDeps(kv, pub, cfg)
	handlers.Register(app, deps, kv, cfg)

	go deps.Orders.RunSweeper(ctx, cfg.SweepInterval)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("server.shutdown", zap.Error(err))
		}
	}()

	zl.Info("server.start", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zl.Error("server.listen", zap.Error(err))
	}
}
