package game

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"chessboard/internal/core"
)

func at(t *testing.T, s string) core.Coord {
	t.Helper()
	c, err := core.ParseCoord(s)
	if err != nil {
		t.Fatalf("ParseCoord(%q): %v", s, err)
	}
	return c
}

func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		if _, err := g.Move(at(t, mv[:2]), at(t, mv[2:])); err != nil {
			t.Fatalf("move %s: %v", mv, err)
		}
	}
}

func TestInitialBoard(t *testing.T) {
	g := New()
	board := g.Board()

	if board[0][0] != "black rook" || board[0][4] != "black king" || board[7][3] != "white queen" {
		t.Fatalf("unexpected back ranks: %v / %v", board[0], board[7])
	}
	if board[6][0] != "white pawn" || board[1][7] != "black pawn" || board[4][4] != "" {
		t.Fatalf("unexpected pawn ranks")
	}
	if g.Turn() != core.ColorWhite {
		t.Fatalf("white should move first")
	}
}

func TestLegalMoves(t *testing.T) {
	g := New()

	got := g.LegalMoves(core.Coord{Row: 6, Col: 0})
	want := map[core.Coord]bool{{Row: 5, Col: 0}: true, {Row: 4, Col: 0}: true}
	if len(got) != len(want) {
		t.Fatalf("a2 legal moves = %v", got)
	}
	for _, c := range got {
		if !want[c] {
			t.Fatalf("unexpected destination %v", c)
		}
	}

	if moves := g.LegalMoves(core.Coord{Row: 1, Col: 0}); len(moves) != 0 {
		t.Fatalf("black pawn should have no moves on white's turn: %v", moves)
	}
	if moves := g.LegalMoves(core.Coord{Row: 4, Col: 4}); moves == nil || len(moves) != 0 {
		t.Fatalf("empty square should give an empty, non-nil list")
	}
}

func TestMoveAndCapture(t *testing.T) {
	g := New()
	play(t, g, "e2e4", "d7d5", "e4d5")

	if g.Board()[3][3] != "white pawn" {
		t.Fatalf("pawn not on d5")
	}
	if g.Turn() != core.ColorBlack {
		t.Fatalf("turn = %s", g.Turn())
	}
	captured := g.Captured()
	if !reflect.DeepEqual(captured.White, []core.PieceKind{core.Pawn}) || len(captured.Black) != 0 {
		t.Fatalf("captured = %+v", captured)
	}
	if !reflect.DeepEqual(g.Moves(), []string{"e2e4", "d7d5", "e4d5"}) {
		t.Fatalf("moves = %v", g.Moves())
	}
}

func TestIllegalMove(t *testing.T) {
	g := New()
	if _, err := g.Move(at(t, "e2"), at(t, "e5")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := g.Move(at(t, "e7"), at(t, "e5")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("moving out of turn must fail, got %v", err)
	}
	if len(g.Moves()) != 0 {
		t.Fatalf("illegal moves were recorded")
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	g := New()
	play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")

	over, winner := g.Outcome()
	if !over || winner != "black" {
		t.Fatalf("outcome = %v %q", over, winner)
	}
	if _, err := g.Move(at(t, "a2"), at(t, "a3")); !errors.Is(err, core.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if _, _, ok := g.BotMove(nil); ok {
		t.Fatalf("bot found a move in a finished game")
	}
}

func TestReplayUndoesByTruncation(t *testing.T) {
	g := New()
	play(t, g, "e2e4", "d7d5", "e4d5")

	moves := g.Moves()
	prev, err := Replay(moves[:len(moves)-1])
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if prev.Board()[4][4] != "white pawn" || prev.Turn() != core.ColorWhite {
		t.Fatalf("replayed position is wrong")
	}
	if len(prev.Captured().White) != 0 {
		t.Fatalf("capture survived undo")
	}

	if _, err := Replay([]string{"e2e5"}); err == nil {
		t.Fatalf("expected replay error")
	}
}

func TestParseUCI(t *testing.T) {
	from, to, err := ParseUCI("e7e8q")
	if err != nil || from != at(t, "e7") || to != at(t, "e8") {
		t.Fatalf("ParseUCI = %v %v %v", from, to, err)
	}
	if _, _, err := ParseUCI("e7"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("short move accepted: %v", err)
	}
}

func TestBotPrefersCapture(t *testing.T) {
	g := New()
	play(t, g, "e2e4", "d7d5")

	from, to, ok := g.BotMove(rand.New(rand.NewPCG(1, 2)))
	if !ok {
		t.Fatalf("no bot move")
	}
	if from != at(t, "e4") || to != at(t, "d5") {
		t.Fatalf("bot played %v->%v, want the pawn capture", from, to)
	}
}

func TestBotMoveIsLegal(t *testing.T) {
	g := New()
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 6; i++ {
		from, to, ok := g.BotMove(rng)
		if !ok {
			t.Fatalf("no move at ply %d", i)
		}
		if _, err := g.Move(from, to); err != nil {
			t.Fatalf("bot move %v->%v rejected: %v", from, to, err)
		}
	}
}
