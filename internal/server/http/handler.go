// Package http exposes the game service over the JSON API used by the
// board client.
package http

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chessboard/internal/core"
	"chessboard/internal/server/service"
	"chessboard/internal/wire"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler routes API requests to the service
type HTTPHandler struct {
	svc *service.Service
	log *zap.Logger
}

func NewHTTPHandler(svc *service.Service, log *zap.Logger) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{svc: svc, log: log.Named("http")}
}

func NewFiberApp(svc *service.Service, devMode bool, log *zap.Logger) *fiber.App {
	h := NewHTTPHandler(svc, log)

	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} ${method} ${path} ${latency}\n",
		Output: zap.NewStdLog(h.log).Writer(),
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(wire.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrCodeRateLimit,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	app.Use(contentTypeValidator)
	app.Use(validationMiddleware)

	app.Post("/start_game", h.StartGame)
	app.Get("/board/:gameId", h.GetBoard)
	app.Post("/legal_moves", h.LegalMoves)
	app.Post("/move", h.MakeMove)
	app.Post("/bot_move", h.BotMove)
	app.Post("/restart", h.Restart)
	app.Post("/undo", h.Undo)
	app.Get("/captured_pieces/:gameId", h.CapturedPieces)

	return app
}

// contentTypeValidator ensures POST requests carry JSON
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(wire.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrCodeContentType,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := wire.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrCodeInternal,
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		response.Error = e.Message
		switch code {
		case fiber.StatusNotFound:
			response.Code = ""
		case fiber.StatusBadRequest:
			response.Code = core.ErrCodeInvalid
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrCodeRateLimit
		}
	}

	return c.Status(code).JSON(response)
}

// gameError answers unknown games with the 404 document clients expect
func (h *HTTPHandler) gameError(c *fiber.Ctx, gameID string, err error) error {
	if errors.Is(err, core.ErrGameNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(wire.ErrorResponse{
			Error: core.MsgGameNotFound,
			Code:  core.ErrCodeGameNotFound,
		})
	}
	h.log.Error("request failed", zap.String("game_id", gameID), zap.Error(err))
	return err
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"time":    time.Now().Unix(),
		"storage": h.svc.GetStorageHealth(),
	})
}

func (h *HTTPHandler) StartGame(c *fiber.Ctx) error {
	req, err := body[wire.StartGameRequest](c)
	if err != nil {
		return err
	}
	gameID, err := h.svc.StartGame(req.GameID, req.Mode)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(wire.StartGameResponse{Error: err.Error()})
	}
	return c.JSON(wire.StartGameResponse{Status: wire.StatusGameStarted, GameID: gameID})
}

// GetBoard returns the position without captured pieces
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	doc, err := h.svc.Board(gameID)
	if err != nil {
		return h.gameError(c, gameID, err)
	}
	return c.JSON(doc)
}

func (h *HTTPHandler) LegalMoves(c *fiber.Ctx) error {
	req, err := body[wire.LegalMovesRequest](c)
	if err != nil {
		return err
	}
	dests, err := h.svc.LegalMoves(req.GameID, core.Coord{Row: req.Row, Col: req.Col})
	if err != nil {
		return h.gameError(c, req.GameID, err)
	}
	moves := make([][]int, 0, len(dests))
	for _, d := range dests {
		moves = append(moves, []int{d.Row, d.Col})
	}
	return c.JSON(wire.LegalMovesResponse{LegalMoves: moves})
}

func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	req, err := body[wire.MoveRequest](c)
	if err != nil {
		return err
	}
	from := core.Coord{Row: req.Start[0], Col: req.Start[1]}
	to := core.Coord{Row: req.End[0], Col: req.End[1]}
	resp, err := h.svc.Move(req.GameID, from, to)
	if err != nil {
		return h.gameError(c, req.GameID, err)
	}
	return c.JSON(resp)
}

func (h *HTTPHandler) BotMove(c *fiber.Ctx) error {
	req, err := body[wire.GameRequest](c)
	if err != nil {
		return err
	}
	resp, err := h.svc.BotMove(req.GameID)
	if err != nil {
		return h.gameError(c, req.GameID, err)
	}
	return c.JSON(resp)
}

func (h *HTTPHandler) Restart(c *fiber.Ctx) error {
	req, err := body[wire.GameRequest](c)
	if err != nil {
		return err
	}
	if err := h.svc.Restart(req.GameID); err != nil {
		return h.gameError(c, req.GameID, err)
	}
	return c.JSON(wire.RestartResponse{Status: wire.StatusSuccess, Message: "Game restarted"})
}

func (h *HTTPHandler) Undo(c *fiber.Ctx) error {
	req, err := body[wire.GameRequest](c)
	if err != nil {
		return err
	}
	resp, err := h.svc.Undo(req.GameID)
	if err != nil {
		return h.gameError(c, req.GameID, err)
	}
	return c.JSON(resp)
}

func (h *HTTPHandler) CapturedPieces(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	captured, err := h.svc.Captured(gameID)
	if err != nil {
		return h.gameError(c, gameID, err)
	}
	return c.JSON(wire.CapturedResponse{Captured: wire.ToCapturedDoc(captured)})
}
