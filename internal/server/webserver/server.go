// Package webserver serves the game pages and the browser build of the
// client.
package webserver

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

//go:embed web
var webFS embed.FS

type Config struct {
	// APIURL is where pages send game requests
	APIURL string
	// AssetsDir holds chess-client.wasm, wasm_exec.js and piece images;
	// /assets is not served when empty
	AssetsDir string
	Logger    *zap.Logger
}

// New builds the page server
func New(cfg Config) (*fiber.App, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           30 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(logger.New(logger.Config{
		Format: "WEB ${status} ${method} ${path} ${latency}\n",
		Output: zap.NewStdLog(log.Named("web")).Writer(),
	}))
	app.Use(cors.New())

	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("failed to create web sub-filesystem: %w", err)
	}

	app.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"apiUrl": cfg.APIURL,
		})
	})

	if cfg.AssetsDir != "" {
		app.Static("/assets", cfg.AssetsDir)
	}

	page := func(name string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			return sendFile(c, webContent, name)
		}
	}
	app.Get("/", page("index.html"))
	app.Get("/1vs1", page("game.html"))
	app.Get("/1vsbot", page("game.html"))
	app.Get("/style.css", page("style.css"))

	return app, nil
}

// Start serves pages on host:port until the listener fails
func Start(host string, port int, cfg Config) error {
	app, err := New(cfg)
	if err != nil {
		return err
	}
	return app.Listen(fmt.Sprintf("%s:%d", host, port))
}

func sendFile(c *fiber.Ctx, files fs.FS, name string) error {
	data, err := fs.ReadFile(files, name)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "page not found")
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(name, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".css"):
		contentType = "text/css; charset=utf-8"
	}
	c.Set("Content-Type", contentType)
	return c.Send(data)
}
