// Package game wraps a chess rules engine behind the grid coordinates and
// piece names of the board service.
package game

import (
	"errors"
	"fmt"

	"chessboard/internal/core"

	nchess "github.com/corentings/chess/v2"
)

var ErrIllegalMove = errors.New("illegal move")

// Game is one game in progress. It is not safe for concurrent use.
type Game struct {
	g *nchess.Game
}

func New() *Game {
	return &Game{g: nchess.NewGame()}
}

// Replay builds a game from UCI moves played from the start position
func Replay(moves []string) (*Game, error) {
	g := New()
	for i, mv := range moves {
		if err := g.g.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay move %d %q: %w", i+1, mv, err)
		}
	}
	return g, nil
}

// Square converts a grid coordinate; row 0 is rank 8
func Square(c core.Coord) nchess.Square {
	return nchess.NewSquare(nchess.File(c.Col), nchess.Rank(core.BoardSize-1-c.Row))
}

func CoordOf(sq nchess.Square) core.Coord {
	return core.Coord{Row: core.BoardSize - 1 - int(sq.Rank()), Col: int(sq.File())}
}

// Board returns the grid of piece names, "" for empty squares
func (g *Game) Board() [][]string {
	board := g.g.Position().Board()
	rows := make([][]string, core.BoardSize)
	for r := range rows {
		rows[r] = make([]string, core.BoardSize)
		for c := range rows[r] {
			rows[r][c] = pieceName(board.Piece(Square(core.Coord{Row: r, Col: c})))
		}
	}
	return rows
}

func (g *Game) Turn() core.Color {
	return colorOf(g.g.Position().Turn())
}

// Outcome reports whether the game ended and the winner: "white", "black"
// or "draw"
func (g *Game) Outcome() (over bool, winner string) {
	switch g.g.Outcome() {
	case nchess.WhiteWon:
		return true, string(core.ColorWhite)
	case nchess.BlackWon:
		return true, string(core.ColorBlack)
	case nchess.Draw:
		return true, "draw"
	default:
		return false, ""
	}
}

// LegalMoves lists the destinations of the piece on from. Pieces of the
// side not to move have none.
func (g *Game) LegalMoves(from core.Coord) []core.Coord {
	if !from.Valid() {
		return nil
	}
	sq := Square(from)
	seen := make(map[core.Coord]bool)
	dests := []core.Coord{}
	for _, mv := range g.g.ValidMoves() {
		if mv.S1() != sq {
			continue
		}
		to := CoordOf(mv.S2())
		// promotions repeat the same destination
		if !seen[to] {
			seen[to] = true
			dests = append(dests, to)
		}
	}
	return dests
}

// Move plays from->to, promoting to a queen, and returns the UCI move
func (g *Game) Move(from, to core.Coord) (string, error) {
	if over, _ := g.Outcome(); over {
		return "", core.ErrGameOver
	}
	if !from.Valid() || !to.Valid() {
		return "", ErrIllegalMove
	}
	s1, s2 := Square(from), Square(to)
	uci := ""
	for _, mv := range g.g.ValidMoves() {
		if mv.S1() != s1 || mv.S2() != s2 {
			continue
		}
		if uci == "" || mv.Promo() == nchess.Queen {
			uci = mv.String()
		}
	}
	if uci == "" {
		return "", ErrIllegalMove
	}
	if err := g.g.PushNotationMove(uci, nchess.UCINotation{}, nil); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return uci, nil
}

// ParseUCI splits a UCI move into grid coordinates; a promotion suffix is
// dropped since Move always promotes to a queen
func ParseUCI(uci string) (from, to core.Coord, err error) {
	if len(uci) < 4 {
		return from, to, fmt.Errorf("%w: %q", ErrIllegalMove, uci)
	}
	if from, err = core.ParseCoord(uci[:2]); err != nil {
		return from, to, err
	}
	to, err = core.ParseCoord(uci[2:4])
	return from, to, err
}

// Moves returns the UCI moves played so far
func (g *Game) Moves() []string {
	moves := g.g.Moves()
	out := make([]string, 0, len(moves))
	for _, mv := range moves {
		out = append(out, mv.String())
	}
	return out
}

// Captured lists the pieces each side has taken, in capture order
func (g *Game) Captured() *core.Captured {
	captured := &core.Captured{White: []core.PieceKind{}, Black: []core.PieceKind{}}
	moves := g.g.Moves()
	positions := g.g.Positions()
	for i, mv := range moves {
		if i >= len(positions) {
			break
		}
		if !mv.HasTag(nchess.Capture) && !mv.HasTag(nchess.EnPassant) {
			continue
		}
		pos := positions[i]
		target := mv.S2()
		if mv.HasTag(nchess.EnPassant) {
			if pos.Turn() == nchess.White {
				target = nchess.NewSquare(mv.S2().File(), mv.S2().Rank()-1)
			} else {
				target = nchess.NewSquare(mv.S2().File(), mv.S2().Rank()+1)
			}
		}
		piece := pos.Board().Piece(target)
		if piece == nchess.NoPiece {
			continue
		}
		kind := kindOf(piece.Type())
		if pos.Turn() == nchess.White {
			captured.White = append(captured.White, kind)
		} else {
			captured.Black = append(captured.Black, kind)
		}
	}
	return captured
}

func colorOf(c nchess.Color) core.Color {
	switch c {
	case nchess.White:
		return core.ColorWhite
	case nchess.Black:
		return core.ColorBlack
	default:
		return core.NoColor
	}
}

func kindOf(t nchess.PieceType) core.PieceKind {
	switch t {
	case nchess.Pawn:
		return core.Pawn
	case nchess.Knight:
		return core.Knight
	case nchess.Bishop:
		return core.Bishop
	case nchess.Rook:
		return core.Rook
	case nchess.Queen:
		return core.Queen
	case nchess.King:
		return core.King
	default:
		return ""
	}
}

func pieceName(p nchess.Piece) string {
	if p == nchess.NoPiece {
		return ""
	}
	return core.Cell{Color: colorOf(p.Color()), Kind: kindOf(p.Type())}.Name()
}
