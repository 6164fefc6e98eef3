// Package wire holds the JSON shapes exchanged between the chess client
// and server.
package wire

import (
	"strings"

	"chessboard/internal/core"
)

// Request types

// StartGameRequest may name the game; the server picks an id otherwise
type StartGameRequest struct {
	GameID string `json:"game_id,omitempty" validate:"omitempty,max=64"`
	Mode   string `json:"mode,omitempty" validate:"omitempty,oneof=1vs1 1vsbot"`
}

type LegalMovesRequest struct {
	GameID string `json:"game_id" validate:"required"`
	Row    int    `json:"row" validate:"min=0,max=7"`
	Col    int    `json:"col" validate:"min=0,max=7"`
}

type MoveRequest struct {
	GameID string `json:"game_id" validate:"required"`
	Start  [2]int `json:"start" validate:"dive,min=0,max=7"` // [row, col]
	End    [2]int `json:"end" validate:"dive,min=0,max=7"`
}

// GameRequest is the body of restart, undo and bot move requests
type GameRequest struct {
	GameID string `json:"game_id" validate:"required"`
}

// Response types

// StateDocument is the full-state shape shared by board, move, undo and bot
// move responses
type StateDocument struct {
	Board    [][]string   `json:"board"`
	Captured *CapturedDoc `json:"captured,omitempty"`
	Turn     string       `json:"turn"`
	GameOver bool         `json:"game_over"`
	Winner   string       `json:"winner"` // null until the game ends
	Error    string       `json:"error,omitempty"`
	Code     string       `json:"code,omitempty"`
}

// CapturedDoc lists captured pieces keyed by the capturing side. Entries are
// either "{color} {kind}" or a bare kind.
type CapturedDoc struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

type StartGameResponse struct {
	Status string `json:"status"`
	GameID string `json:"game_id"`
	Error  string `json:"error,omitempty"`
}

type LegalMovesResponse struct {
	LegalMoves [][]int `json:"legal_moves"` // nil when absent
	Error      string  `json:"error,omitempty"`
}

type MoveResponse struct {
	Status string `json:"status"`
	StateDocument
}

type RestartResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type UndoResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	StateDocument
}

// ErrorResponse is returned for malformed or rate limited requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type CapturedResponse struct {
	Captured *CapturedDoc `json:"captured"`
	Error    string       `json:"error,omitempty"`
}

// Status values
const (
	StatusMoveMade    = "move made"
	StatusSuccess     = "success"
	StatusGameStarted = "game started"
	StatusGameOver    = "game over"
)

// Accepted reports whether the server made the move
func (r *MoveResponse) Accepted() bool {
	return r.Status == StatusMoveMade
}

func (r *RestartResponse) Succeeded() bool {
	return r.Status == StatusSuccess
}

func (r *UndoResponse) Succeeded() bool {
	return r.Status == StatusSuccess
}

// NotFound reports whether the document is the service's unknown game reply.
// Other error bodies (validation, rate limiting) are not.
func (d *StateDocument) NotFound() bool {
	return d.Code == core.ErrCodeGameNotFound || d.Error == core.MsgGameNotFound
}

// Destinations converts the legal moves list, dropping malformed entries
func (r *LegalMovesResponse) Destinations() []core.Coord {
	out := make([]core.Coord, 0, len(r.LegalMoves))
	for _, m := range r.LegalMoves {
		if len(m) != 2 {
			continue
		}
		c := core.Coord{Row: m[0], Col: m[1]}
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// Snapshot converts the document into domain state. The second result is the
// number of board cells that could not be parsed.
func (d *StateDocument) Snapshot() (core.Snapshot, int) {
	board, skipped := core.BoardFromRows(d.Board)
	turn, err := core.ParseColor(d.Turn)
	if err != nil {
		turn = core.NoColor
	}
	return core.Snapshot{
		Board:    board,
		Captured: d.Captured.toCore(),
		Turn:     turn,
		GameOver: d.GameOver,
		Winner:   d.Winner,
	}, skipped
}

func (c *CapturedDoc) toCore() *core.Captured {
	if c == nil {
		return nil
	}
	return &core.Captured{
		White: kindsOf(c.White),
		Black: kindsOf(c.Black),
	}
}

func kindsOf(entries []string) []core.PieceKind {
	kinds := make([]core.PieceKind, 0, len(entries))
	for _, e := range entries {
		fields := strings.Fields(e)
		if len(fields) == 0 {
			continue
		}
		kind, err := core.ParsePieceKind(fields[len(fields)-1])
		if err != nil {
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

// ToCapturedDoc renders captured pieces in the "{color} {kind}" wire form.
// Pieces in a side's list belong to the opposite color.
func ToCapturedDoc(c *core.Captured) *CapturedDoc {
	if c == nil {
		return nil
	}
	name := func(owner core.Color, kinds []core.PieceKind) []string {
		out := make([]string, 0, len(kinds))
		for _, k := range kinds {
			out = append(out, core.Cell{Color: core.OppositeColor(owner), Kind: k}.Name())
		}
		return out
	}
	return &CapturedDoc{
		White: name(core.ColorWhite, c.White),
		Black: name(core.ColorBlack, c.Black),
	}
}
