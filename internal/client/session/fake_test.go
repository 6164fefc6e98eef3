package session

import (
	"context"
	"sync"

	"chessboard/internal/core"
	"chessboard/internal/wire"
)

type moveCall struct {
	GameID   string
	From, To core.Coord
}

// fakeService scripts game service responses. A non-nil gate blocks the
// matching call until it is closed or the request context ends.
type fakeService struct {
	mu sync.Mutex

	state      func() (*wire.StateDocument, error)
	captured   *wire.CapturedResponse
	legal      func(cell core.Coord) (*wire.LegalMovesResponse, error)
	move       func(from, to core.Coord) (*wire.MoveResponse, error)
	botMove    func() (*wire.MoveResponse, error)
	restart    *wire.RestartResponse
	undo       *wire.UndoResponse
	legalGate  chan struct{}
	moveGate   chan struct{}
	capGate    chan struct{}
	stateCalls int
	legalCalls []core.Coord
	moveCalls  []moveCall
	botCalls   int
	capCalls   int
}

func wait(ctx context.Context, gate chan struct{}) error {
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeService) GetState(ctx context.Context, gameID string) (*wire.StateDocument, error) {
	f.mu.Lock()
	f.stateCalls++
	f.mu.Unlock()
	return f.state()
}

func (f *fakeService) Captured(ctx context.Context, gameID string) (*wire.CapturedResponse, error) {
	f.mu.Lock()
	f.capCalls++
	gate := f.capGate
	f.mu.Unlock()
	if err := wait(ctx, gate); err != nil {
		return nil, err
	}
	if f.captured == nil {
		return &wire.CapturedResponse{Error: "Game not found"}, nil
	}
	return f.captured, nil
}

func (f *fakeService) LegalMoves(ctx context.Context, gameID string, cell core.Coord) (*wire.LegalMovesResponse, error) {
	f.mu.Lock()
	f.legalCalls = append(f.legalCalls, cell)
	gate := f.legalGate
	f.mu.Unlock()
	if err := wait(ctx, gate); err != nil {
		return nil, err
	}
	return f.legal(cell)
}

func (f *fakeService) Move(ctx context.Context, gameID string, from, to core.Coord) (*wire.MoveResponse, error) {
	f.mu.Lock()
	f.moveCalls = append(f.moveCalls, moveCall{GameID: gameID, From: from, To: to})
	gate := f.moveGate
	f.mu.Unlock()
	if err := wait(ctx, gate); err != nil {
		return nil, err
	}
	return f.move(from, to)
}

func (f *fakeService) BotMove(ctx context.Context, gameID string) (*wire.MoveResponse, error) {
	f.mu.Lock()
	f.botCalls++
	f.mu.Unlock()
	return f.botMove()
}

func (f *fakeService) Restart(ctx context.Context, gameID string) (*wire.RestartResponse, error) {
	return f.restart, nil
}

func (f *fakeService) Undo(ctx context.Context, gameID string) (*wire.UndoResponse, error) {
	return f.undo, nil
}

func (f *fakeService) moves() []moveCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]moveCall(nil), f.moveCalls...)
}

func (f *fakeService) legalRequests() []core.Coord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Coord(nil), f.legalCalls...)
}

// rows builds wire rows with the given pieces on an empty board
func rows(pieces map[core.Coord]string) [][]string {
	out := make([][]string, core.BoardSize)
	for r := range out {
		out[r] = make([]string, core.BoardSize)
	}
	for c, name := range pieces {
		out[c.Row][c.Col] = name
	}
	return out
}

func stateDoc(pieces map[core.Coord]string, turn string) wire.StateDocument {
	return wire.StateDocument{
		Board:    rows(pieces),
		Turn:     turn,
		Captured: &wire.CapturedDoc{White: []string{}, Black: []string{}},
	}
}
