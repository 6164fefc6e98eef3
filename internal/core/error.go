package core

import "errors"

// Error codes
const (
	ErrCodeGameNotFound = "GAME_NOT_FOUND"
	ErrCodeInvalidMove  = "INVALID_MOVE"
	ErrCodeNotYourTurn  = "NOT_YOUR_TURN"
	ErrCodeGameOver     = "GAME_OVER"
	ErrCodeNoGameID     = "NO_GAME_ID"
	ErrCodeBusy         = "REQUEST_PENDING"
	ErrCodeInvalid      = "INVALID_REQUEST"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeRateLimit    = "RATE_LIMIT_EXCEEDED"
	ErrCodeContentType  = "INVALID_CONTENT_TYPE"
)

var (
	ErrNoGameID     = errors.New("no game ID provided")
	ErrGameNotFound = errors.New("game not found")
	ErrRejected     = errors.New("rejected by server")
	ErrBusy         = errors.New("request already in progress")
	ErrGameOver     = errors.New("game is over")
	ErrNotReady     = errors.New("session not ready")
)

// User-visible alert texts
const (
	MsgNoGameID       = "No game ID provided"
	MsgGameNotFound   = "Game not found"
	MsgInvalidMove    = "Invalid move"
	MsgRestartFailed  = "Failed to restart the game"
	MsgBusy           = "Waiting for the server..."
	MsgGameOverLocked = "Game over - restart or undo to continue"
)
