package game

import (
	"math/rand/v2"

	"chessboard/internal/core"

	nchess "github.com/corentings/chess/v2"
)

var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
}

// BotMove picks a reply for the side to move: the most valuable capture or
// promotion, preferring checks, with ties broken by rng. ok is false when
// there is no legal move.
func (g *Game) BotMove(rng *rand.Rand) (from, to core.Coord, ok bool) {
	board := g.g.Position().Board()
	bestScore := -1
	var candidates []core.Coord // from, to pairs

	for _, mv := range g.g.ValidMoves() {
		score := 0
		if mv.HasTag(nchess.Check) {
			score++
		}
		if target := board.Piece(mv.S2()); target != nchess.NoPiece {
			score += 10 * pieceValues[target.Type()]
		}
		if mv.Promo() == nchess.Queen {
			score += 10 * pieceValues[nchess.Queen]
		}

		if score > bestScore {
			bestScore = score
			candidates = candidates[:0]
		}
		if score == bestScore {
			candidates = append(candidates, CoordOf(mv.S1()), CoordOf(mv.S2()))
		}
	}
	if len(candidates) == 0 {
		return core.Coord{}, core.Coord{}, false
	}

	pick := 0
	if rng != nil {
		pick = rng.IntN(len(candidates) / 2)
	}
	return candidates[2*pick], candidates[2*pick+1], true
}
