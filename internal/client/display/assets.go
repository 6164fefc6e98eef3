package display

import (
	"strings"

	"chessboard/internal/core"
)

// DefaultAssetPattern matches the web client's image layout
const DefaultAssetPattern = "/static/assets/images/{name}.png"

// Visual is a rendered piece, addressed by its "{color} {kind}" name
type Visual struct {
	Name  string
	Asset string
	Glyph string
}

// AssetResolver maps piece names to asset paths and terminal glyphs.
// The mapping is configuration and can be replaced wholesale.
type AssetResolver struct {
	Pattern string
	Glyphs  map[string]string
}

func NewAssetResolver(pattern string, glyphs map[string]string) *AssetResolver {
	if pattern == "" {
		pattern = DefaultAssetPattern
	}
	merged := make(map[string]string, len(UnicodeGlyphs))
	for k, v := range UnicodeGlyphs {
		merged[k] = v
	}
	for k, v := range glyphs {
		merged[k] = v
	}
	return &AssetResolver{Pattern: pattern, Glyphs: merged}
}

func (r *AssetResolver) Resolve(cell core.Cell) Visual {
	name := cell.Name()
	glyph, ok := r.Glyphs[name]
	if !ok {
		glyph = "?"
	}
	return Visual{
		Name:  name,
		Asset: strings.ReplaceAll(r.Pattern, "{name}", name),
		Glyph: glyph,
	}
}

var UnicodeGlyphs = map[string]string{
	"white king":   "♔",
	"white queen":  "♕",
	"white rook":   "♖",
	"white bishop": "♗",
	"white knight": "♘",
	"white pawn":   "♙",
	"black king":   "♚",
	"black queen":  "♛",
	"black rook":   "♜",
	"black bishop": "♝",
	"black knight": "♞",
	"black pawn":   "♟",
}

// LetterGlyphs uses FEN letters for terminals without unicode chess symbols
var LetterGlyphs = map[string]string{
	"white king":   "K",
	"white queen":  "Q",
	"white rook":   "R",
	"white bishop": "B",
	"white knight": "N",
	"white pawn":   "P",
	"black king":   "k",
	"black queen":  "q",
	"black rook":   "r",
	"black bishop": "b",
	"black knight": "n",
	"black pawn":   "p",
}
