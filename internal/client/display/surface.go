package display

import (
	"chessboard/internal/core"

	"go.uber.org/zap"
)

// View abstracts the presentation surface driven by the session
type View interface {
	RenderBoard(board core.Board)
	RenderCaptured(color core.Color, pieces []core.PieceKind)
	ClearTrays()
	SetHighlights(cells []core.Coord)
	ClearHighlights()
	MarkSelected(cell core.Coord)
	ClearSelected()
	ShowTurn(turn core.Color)
	ShowGameOver(winner string)
	HideGameOver()
	Alert(msg string)
}

type cellView struct {
	piece     *Visual
	highlight bool
	selected  bool
}

// Surface is the in-memory rendering target: an 8x8 grid of cell visuals,
// two captured-piece trays, the turn display, the game-over banner and a
// queue of pending alerts. It is owned by the event loop goroutine.
type Surface struct {
	cells      [core.BoardSize][core.BoardSize]cellView
	trays      map[core.Color][]Visual
	turnText   string
	bannerText string
	bannerOn   bool
	alerts     []string

	assets  *AssetResolver
	logger  *zap.Logger
	version uint64
}

func NewSurface(assets *AssetResolver, logger *zap.Logger) *Surface {
	if assets == nil {
		assets = NewAssetResolver("", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{
		trays:  make(map[core.Color][]Visual),
		assets: assets,
		logger: logger.Named("display"),
	}
}

// RenderBoard destructively redraws every piece visual. Cells outside the
// 8x8 grid are skipped rather than failing the render.
func (s *Surface) RenderBoard(board core.Board) {
	for r := range s.cells {
		for c := range s.cells[r] {
			s.cells[r][c].piece = nil
		}
	}

	skipped := 0
	for r, row := range board {
		if len(row) != core.BoardSize {
			skipped += max(0, core.BoardSize-len(row))
		}
		for c, cell := range row {
			if r >= core.BoardSize || c >= core.BoardSize {
				skipped++
				continue
			}
			if cell.Empty() {
				continue
			}
			v := s.assets.Resolve(cell)
			s.cells[r][c].piece = &v
		}
	}
	if len(board) != core.BoardSize || skipped > 0 {
		s.logger.Warn("malformed board rendered partially",
			zap.Int("rows", len(board)),
			zap.Int("skipped_cells", skipped))
	}
	s.touch()
}

// RenderCaptured replaces the tray of the capturing side. Pieces in a tray
// belong to the opposite color.
func (s *Surface) RenderCaptured(color core.Color, pieces []core.PieceKind) {
	tray := make([]Visual, 0, len(pieces))
	for _, k := range pieces {
		tray = append(tray, s.assets.Resolve(core.Cell{Color: core.OppositeColor(color), Kind: k}))
	}
	s.trays[color] = tray
	s.touch()
}

func (s *Surface) ClearTrays() {
	s.trays[core.ColorWhite] = nil
	s.trays[core.ColorBlack] = nil
	s.touch()
}

func (s *Surface) SetHighlights(cells []core.Coord) {
	for _, c := range cells {
		if c.Valid() {
			s.cells[c.Row][c.Col].highlight = true
		}
	}
	s.touch()
}

func (s *Surface) ClearHighlights() {
	for r := range s.cells {
		for c := range s.cells[r] {
			s.cells[r][c].highlight = false
		}
	}
	s.touch()
}

func (s *Surface) MarkSelected(cell core.Coord) {
	if cell.Valid() {
		s.cells[cell.Row][cell.Col].selected = true
		s.touch()
	}
}

func (s *Surface) ClearSelected() {
	for r := range s.cells {
		for c := range s.cells[r] {
			s.cells[r][c].selected = false
		}
	}
	s.touch()
}

func (s *Surface) ShowTurn(turn core.Color) {
	s.turnText = core.TurnMessage(turn)
	s.touch()
}

func (s *Surface) ShowGameOver(winner string) {
	s.bannerText = core.GameOverMessage(winner)
	s.bannerOn = true
	s.touch()
}

func (s *Surface) HideGameOver() {
	s.bannerOn = false
	s.touch()
}

func (s *Surface) Alert(msg string) {
	s.alerts = append(s.alerts, msg)
	s.touch()
}

func (s *Surface) touch() {
	s.version++
}

// Version increases on every change; the terminal redraws when it moves
func (s *Surface) Version() uint64 {
	return s.version
}

// PieceAt returns the piece visual at c, if any
func (s *Surface) PieceAt(c core.Coord) (Visual, bool) {
	if !c.Valid() || s.cells[c.Row][c.Col].piece == nil {
		return Visual{}, false
	}
	return *s.cells[c.Row][c.Col].piece, true
}

// Pieces returns every rendered piece keyed by position
func (s *Surface) Pieces() map[core.Coord]string {
	out := make(map[core.Coord]string)
	for r := range s.cells {
		for c := range s.cells[r] {
			if p := s.cells[r][c].piece; p != nil {
				out[core.Coord{Row: r, Col: c}] = p.Name
			}
		}
	}
	return out
}

// Highlighted returns highlighted cells in row-major order
func (s *Surface) Highlighted() []core.Coord {
	var out []core.Coord
	for r := range s.cells {
		for c := range s.cells[r] {
			if s.cells[r][c].highlight {
				out = append(out, core.Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// Selected returns the cell carrying the selected marker
func (s *Surface) Selected() (core.Coord, bool) {
	for r := range s.cells {
		for c := range s.cells[r] {
			if s.cells[r][c].selected {
				return core.Coord{Row: r, Col: c}, true
			}
		}
	}
	return core.Coord{}, false
}

func (s *Surface) Tray(color core.Color) []Visual {
	return s.trays[color]
}

func (s *Surface) TurnText() string {
	return s.turnText
}

// Banner returns the game-over banner text and whether it is visible
func (s *Surface) Banner() (string, bool) {
	return s.bannerText, s.bannerOn
}

// Alerts returns alerts not yet taken, oldest first
func (s *Surface) Alerts() []string {
	return append([]string(nil), s.alerts...)
}

// TakeAlerts returns and clears the pending alerts
func (s *Surface) TakeAlerts() []string {
	out := s.alerts
	s.alerts = nil
	return out
}
