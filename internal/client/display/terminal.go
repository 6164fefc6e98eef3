package display

import (
	"fmt"
	"io"
	"strings"

	"chessboard/internal/core"
)

// Terminal draws a Surface as a coloured text board
type Terminal struct {
	out   io.Writer
	theme Theme
	drawn uint64
}

func NewTerminal(out io.Writer, theme Theme) *Terminal {
	if _, ok := themes[theme]; !ok {
		theme = ThemeOff
	}
	return &Terminal{out: out, theme: theme}
}

func (t *Terminal) SetTheme(theme Theme) {
	t.theme = theme
}

// Refresh redraws the surface if it changed since the last draw, then
// prints pending alerts
func (t *Terminal) Refresh(s *Surface) {
	if s.Version() == t.drawn {
		return
	}
	alerts := s.TakeAlerts()
	t.Draw(s)
	for _, a := range alerts {
		fmt.Fprintln(t.out, t.paint(Red, "! "+a))
	}
	t.drawn = s.Version()
}

func (t *Terminal) Draw(s *Surface) {
	theme := themes[t.theme]
	var sb strings.Builder

	sb.WriteString("\n    a b c d e f g h\n")
	for r := 0; r < core.BoardSize; r++ {
		sb.WriteString(fmt.Sprintf("%d %d ", r, core.BoardSize-r))
		for c := 0; c < core.BoardSize; c++ {
			cv := s.cells[r][c]
			glyph := "."
			if cv.piece != nil {
				glyph = cv.piece.Glyph
			}

			if t.theme == ThemeOff {
				switch {
				case cv.selected:
					sb.WriteString(glyph + "<")
				case cv.highlight:
					if cv.piece == nil {
						glyph = "*"
					}
					sb.WriteString(glyph + "*")
				default:
					sb.WriteString(glyph + " ")
				}
				continue
			}

			bg := theme.darkBg
			if (r+c)%2 == 0 {
				bg = theme.lightBg
			}
			if cv.highlight {
				bg = theme.highlightBg
			}
			if cv.selected {
				bg = theme.selectedBg
			}
			fg := theme.black
			if cv.piece != nil && strings.HasPrefix(cv.piece.Name, string(core.ColorWhite)) {
				fg = theme.white
			}
			if cv.piece == nil {
				glyph = " "
			}
			sb.WriteString(fmt.Sprintf("%s%s%s %s", bg, fg, glyph, theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", core.BoardSize-r))
	}
	sb.WriteString("    a b c d e f g h\n")
	sb.WriteString("    0 1 2 3 4 5 6 7\n\n")

	for _, color := range []core.Color{core.ColorWhite, core.ColorBlack} {
		sb.WriteString(fmt.Sprintf("Captured by %s: ", color))
		for _, v := range s.Tray(color) {
			sb.WriteString(v.Glyph + " ")
		}
		sb.WriteString("\n")
	}

	if turn := s.TurnText(); turn != "" {
		sb.WriteString(t.paint(Cyan, turn) + "\n")
	}
	if text, on := s.Banner(); on {
		sb.WriteString(t.paint(Yellow, text) + "\n")
	}

	fmt.Fprint(t.out, sb.String())
}

func (t *Terminal) paint(color, text string) string {
	if t.theme == ThemeOff {
		return text
	}
	return color + text + Reset
}
