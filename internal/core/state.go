package core

import "fmt"

// Captured holds the pieces removed from play, in capture order
type Captured struct {
	White []PieceKind
	Black []PieceKind
}

func (c *Captured) Pieces(color Color) []PieceKind {
	if c == nil {
		return nil
	}
	if color == ColorWhite {
		return c.White
	}
	return c.Black
}

// Snapshot is one authoritative state document from the game service.
// A nil Captured means the document carried no captured pieces.
type Snapshot struct {
	Board    Board
	Captured *Captured
	Turn     Color
	GameOver bool
	Winner   string
}

// Phase is the lifecycle of a client session
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseFailed // Non-interactive; the page cannot proceed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// GameOverMessage is the banner text shown when the game has ended
func GameOverMessage(winner string) string {
	return fmt.Sprintf("Game Over! Winner: %s", winner)
}

// TurnMessage is the turn display text
func TurnMessage(turn Color) string {
	return fmt.Sprintf("Turn: %s", turn)
}
