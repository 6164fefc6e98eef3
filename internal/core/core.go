package core

import (
	"fmt"
	"strconv"
	"strings"
)

// BoardSize is the number of rows and columns on the board
const BoardSize = 8

type Color string

const (
	NoColor    Color = ""
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

func ParseColor(s string) (Color, error) {
	switch Color(strings.ToLower(strings.TrimSpace(s))) {
	case ColorWhite:
		return ColorWhite, nil
	case ColorBlack:
		return ColorBlack, nil
	default:
		return NoColor, fmt.Errorf("invalid color: %q", s)
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

type PieceKind string

const (
	Pawn   PieceKind = "pawn"
	Knight PieceKind = "knight"
	Bishop PieceKind = "bishop"
	Rook   PieceKind = "rook"
	Queen  PieceKind = "queen"
	King   PieceKind = "king"
)

func ParsePieceKind(s string) (PieceKind, error) {
	switch k := PieceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case Pawn, Knight, Bishop, Rook, Queen, King:
		return k, nil
	default:
		return "", fmt.Errorf("invalid piece kind: %q", s)
	}
}

// Cell is one board position; the zero value is an empty cell
type Cell struct {
	Color Color
	Kind  PieceKind
}

func (c Cell) Empty() bool {
	return c.Kind == ""
}

// Name returns the "{color} {kind}" key used to address piece visuals
func (c Cell) Name() string {
	if c.Empty() {
		return ""
	}
	return string(c.Color) + " " + string(c.Kind)
}

// ParseCell parses a "{color} {kind}" value; the empty string is an empty cell
func ParseCell(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cell{}, nil
	}
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Cell{}, fmt.Errorf("invalid cell: %q", s)
	}
	color, err := ParseColor(parts[0])
	if err != nil {
		return Cell{}, err
	}
	kind, err := ParsePieceKind(parts[1])
	if err != nil {
		return Cell{}, err
	}
	return Cell{Color: color, Kind: kind}, nil
}

// Coord addresses a cell; row 0 is black's back rank
type Coord struct {
	Row int
	Col int
}

func (c Coord) Valid() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}

// Algebraic returns the square name, e.g. (6,0) is "a2"
func (c Coord) Algebraic() string {
	if !c.Valid() {
		return c.String()
	}
	return fmt.Sprintf("%c%d", 'a'+c.Col, BoardSize-c.Row)
}

// ParseCoord accepts "row,col" or an algebraic square such as "e4"
func ParseCoord(s string) (Coord, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, c, ok := strings.Cut(s, ","); ok {
		row, err := strconv.Atoi(strings.TrimSpace(r))
		if err != nil {
			return Coord{}, fmt.Errorf("invalid row in %q", s)
		}
		col, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return Coord{}, fmt.Errorf("invalid column in %q", s)
		}
		coord := Coord{Row: row, Col: col}
		if !coord.Valid() {
			return Coord{}, fmt.Errorf("coordinate out of range: %q", s)
		}
		return coord, nil
	}

	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Coord{}, fmt.Errorf("invalid square: %q (use row,col or a1-h8)", s)
	}
	return Coord{Row: BoardSize - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

// Board is the grid of rows received from the game service
type Board [][]Cell

// At returns the cell at c, or an empty cell when c is outside the grid
func (b Board) At(c Coord) Cell {
	if c.Row < 0 || c.Row >= len(b) || c.Col < 0 || c.Col >= len(b[c.Row]) {
		return Cell{}
	}
	return b[c.Row][c.Col]
}

// BoardFromRows converts wire rows into a Board. Unparseable values become
// empty cells and are counted in the returned skip count.
func BoardFromRows(rows [][]string) (Board, int) {
	skipped := 0
	board := make(Board, len(rows))
	for r, row := range rows {
		board[r] = make([]Cell, len(row))
		for c, value := range row {
			cell, err := ParseCell(value)
			if err != nil {
				skipped++
				continue
			}
			board[r][c] = cell
		}
	}
	return board, skipped
}

// Rows converts a Board back to its wire form
func (b Board) Rows() [][]string {
	rows := make([][]string, len(b))
	for r, row := range b {
		rows[r] = make([]string, len(row))
		for c, cell := range row {
			rows[r][c] = cell.Name()
		}
	}
	return rows
}

// EmptyBoard returns an 8x8 board with no pieces
func EmptyBoard() Board {
	b := make(Board, BoardSize)
	for r := range b {
		b[r] = make([]Cell, BoardSize)
	}
	return b
}
