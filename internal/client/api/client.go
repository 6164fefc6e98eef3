package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"chessboard/internal/core"
	"chessboard/internal/wire"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// StatusError reports a response the client could not interpret as a
// document, e.g. a 502 from a proxy
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type Client struct {
	HTTPClient *http.Client
	Logger     *zap.Logger

	// settings may change from the command line while requests run
	mu      sync.RWMutex
	baseURL string
	verbose bool
}

func New(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: logger.Named("api"),
	}
}

func (c *Client) SetVerbose(v bool) {
	c.mu.Lock()
	c.verbose = v
	c.mu.Unlock()
}

func (c *Client) Verbose() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verbose
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(url, "/")
	c.mu.Unlock()
}

func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// doRequest sends body as JSON and decodes any JSON reply into result,
// including 4xx replies: the game service reports "not found" and rejected
// actions as documents, which callers interpret.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, result any) error {
	if body != nil {
		if err := validate.Struct(body); err != nil {
			return fmt.Errorf("invalid request: %w", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	log := c.Logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	log.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))
	if c.Verbose() && len(respBody) > 0 {
		log.Debug("response body", zap.ByteString("body", respBody))
	}

	if result != nil && len(respBody) > 0 {
		err := json.Unmarshal(respBody, result)
		if err == nil {
			return nil
		}
		if resp.StatusCode < 400 {
			log.Warn("response parse error", zap.Error(err), zap.ByteString("raw", respBody))
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return nil
}

func gamePath(prefix, gameID string) string {
	return prefix + url.PathEscape(gameID)
}

// API Methods

func (c *Client) StartGame(ctx context.Context, mode string) (*wire.StartGameResponse, error) {
	var resp wire.StartGameResponse
	err := c.doRequest(ctx, http.MethodPost, "/start_game", &wire.StartGameRequest{Mode: mode}, &resp)
	return &resp, err
}

func (c *Client) GetState(ctx context.Context, gameID string) (*wire.StateDocument, error) {
	if gameID == "" {
		return nil, core.ErrNoGameID
	}
	var resp wire.StateDocument
	err := c.doRequest(ctx, http.MethodGet, gamePath("/board/", gameID), nil, &resp)
	return &resp, err
}

func (c *Client) LegalMoves(ctx context.Context, gameID string, cell core.Coord) (*wire.LegalMovesResponse, error) {
	req := &wire.LegalMovesRequest{GameID: gameID, Row: cell.Row, Col: cell.Col}
	var resp wire.LegalMovesResponse
	err := c.doRequest(ctx, http.MethodPost, "/legal_moves", req, &resp)
	return &resp, err
}

func (c *Client) Move(ctx context.Context, gameID string, from, to core.Coord) (*wire.MoveResponse, error) {
	req := &wire.MoveRequest{
		GameID: gameID,
		Start:  [2]int{from.Row, from.Col},
		End:    [2]int{to.Row, to.Col},
	}
	var resp wire.MoveResponse
	err := c.doRequest(ctx, http.MethodPost, "/move", req, &resp)
	return &resp, err
}

func (c *Client) BotMove(ctx context.Context, gameID string) (*wire.MoveResponse, error) {
	var resp wire.MoveResponse
	err := c.doRequest(ctx, http.MethodPost, "/bot_move", &wire.GameRequest{GameID: gameID}, &resp)
	return &resp, err
}

func (c *Client) Restart(ctx context.Context, gameID string) (*wire.RestartResponse, error) {
	var resp wire.RestartResponse
	err := c.doRequest(ctx, http.MethodPost, "/restart", &wire.GameRequest{GameID: gameID}, &resp)
	return &resp, err
}

func (c *Client) Undo(ctx context.Context, gameID string) (*wire.UndoResponse, error) {
	var resp wire.UndoResponse
	err := c.doRequest(ctx, http.MethodPost, "/undo", &wire.GameRequest{GameID: gameID}, &resp)
	return &resp, err
}

func (c *Client) Captured(ctx context.Context, gameID string) (*wire.CapturedResponse, error) {
	if gameID == "" {
		return nil, core.ErrNoGameID
	}
	var resp wire.CapturedResponse
	err := c.doRequest(ctx, http.MethodGet, gamePath("/captured_pieces/", gameID), nil, &resp)
	return &resp, err
}

// IsTimeout reports whether err came from an expired request deadline
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
