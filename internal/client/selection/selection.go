// Package selection tracks the armed piece and its legal-move highlights.
//
// The machine is "one piece armed, next click always attempts a move": it
// never checks destination legality, only the optimistic turn color.
// Legal-move requests carry a sequence number; a response is applied only
// if it answers the latest request and the machine is still waiting for
// it, so a click that lands before the response supersedes it.
package selection

import (
	"fmt"

	"chessboard/internal/core"
)

type State int

const (
	Idle State = iota
	AwaitingLegalMoves
	Selected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingLegalMoves:
		return "awaiting legal moves"
	case Selected:
		return "selected"
	default:
		return "unknown"
	}
}

type ActionKind int

const (
	None ActionKind = iota
	RequestLegalMoves
	SubmitMove
	Reject
)

// Action is what the caller must do in response to a click
type Action struct {
	Kind    ActionKind
	Seq     uint64     // RequestLegalMoves
	From    core.Coord // RequestLegalMoves, SubmitMove
	To      core.Coord // SubmitMove
	Message string     // Reject
}

// Context is the authoritative session state a click is evaluated against
type Context struct {
	Board core.Board
	Turn  core.Color
}

type Machine struct {
	state      State
	cell       core.Coord
	highlights []core.Coord
	seq        uint64
}

func New() *Machine {
	return &Machine{}
}

func (m *Machine) Click(cell core.Coord, ctx Context) Action {
	switch m.state {
	case AwaitingLegalMoves, Selected:
		from := m.cell
		m.toIdle()
		return Action{Kind: SubmitMove, From: from, To: cell}
	}

	if !cell.Valid() {
		return Action{Kind: None}
	}
	piece := ctx.Board.At(cell)
	if piece.Empty() {
		return Action{Kind: None}
	}
	if piece.Color != ctx.Turn {
		return Action{Kind: Reject, Message: fmt.Sprintf("It's %s's turn!", ctx.Turn)}
	}

	m.seq++
	m.state = AwaitingLegalMoves
	m.cell = cell
	m.highlights = nil
	return Action{Kind: RequestLegalMoves, Seq: m.seq, From: cell}
}

// ResolveLegalMoves applies a legal-moves response. It reports false when
// the response was superseded and must be ignored.
func (m *Machine) ResolveLegalMoves(seq uint64, moves []core.Coord) bool {
	if m.state != AwaitingLegalMoves || seq != m.seq {
		return false
	}
	m.state = Selected
	m.highlights = append([]core.Coord(nil), moves...)
	return true
}

// FailLegalMoves abandons the selection when its request failed. It reports
// false when the request was already superseded.
func (m *Machine) FailLegalMoves(seq uint64) bool {
	if m.state != AwaitingLegalMoves || seq != m.seq {
		return false
	}
	m.toIdle()
	return true
}

// Reset returns to Idle and invalidates every outstanding request
func (m *Machine) Reset() {
	m.seq++
	m.toIdle()
}

func (m *Machine) toIdle() {
	m.state = Idle
	m.cell = core.Coord{}
	m.highlights = nil
}

func (m *Machine) State() State {
	return m.state
}

// Cell returns the armed cell, if any
func (m *Machine) Cell() (core.Coord, bool) {
	return m.cell, m.state != Idle
}

func (m *Machine) Highlights() []core.Coord {
	return append([]core.Coord(nil), m.highlights...)
}
