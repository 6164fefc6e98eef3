package coordinator

import (
	"context"
	"fmt"

	"chessboard/internal/client/api"
	"chessboard/internal/client/display"
	"chessboard/internal/client/eventloop"
	"chessboard/internal/client/selection"
	"chessboard/internal/core"
	"chessboard/internal/wire"

	"go.uber.org/zap"
)

// Service is the part of the game service used for moves
type Service interface {
	LegalMoves(ctx context.Context, gameID string, cell core.Coord) (*wire.LegalMovesResponse, error)
	Move(ctx context.Context, gameID string, from, to core.Coord) (*wire.MoveResponse, error)
	BotMove(ctx context.Context, gameID string) (*wire.MoveResponse, error)
}

// StateSink applies an accepted state document to the session
type StateSink interface {
	ApplyDocument(doc *wire.StateDocument)
}

type Coordinator struct {
	loop    *eventloop.Loop
	svc     Service
	view    display.View
	machine *selection.Machine
	sink    StateSink
	logger  *zap.Logger

	// BotMode asks the server for a reply move after every accepted move
	BotMode bool
}

func New(loop *eventloop.Loop, svc Service, view display.View, machine *selection.Machine, sink StateSink, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		loop:    loop,
		svc:     svc,
		view:    view,
		machine: machine,
		sink:    sink,
		logger:  logger.Named("coordinator"),
	}
}

// RequestLegalMoves marks the armed cell and asks the server for its
// destinations. The response is applied only if the machine still waits
// for request seq.
func (c *Coordinator) RequestLegalMoves(gameID string, seq uint64, cell core.Coord) {
	c.view.MarkSelected(cell)

	var resp *wire.LegalMovesResponse
	c.loop.Go(func(ctx context.Context) error {
		var err error
		resp, err = c.svc.LegalMoves(ctx, gameID, cell)
		return err
	}, func(err error) {
		if err != nil {
			if c.machine.FailLegalMoves(seq) {
				c.view.ClearSelected()
				c.view.Alert(FailureMessage(err))
			}
			c.logger.Warn("legal moves request failed", zap.Uint64("seq", seq), zap.Error(err))
			return
		}

		dests := resp.Destinations()
		if !c.machine.ResolveLegalMoves(seq, dests) {
			c.logger.Debug("discarding superseded legal moves", zap.Uint64("seq", seq))
			return
		}
		c.view.SetHighlights(dests)
	})
}

// SubmitMove sends from->to and renders the outcome from the single
// response document. settled runs once the attempt, and any bot reply, is
// finished.
func (c *Coordinator) SubmitMove(gameID string, from, to core.Coord, settled func()) {
	c.view.ClearHighlights()

	var resp *wire.MoveResponse
	c.loop.Go(func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Move(ctx, gameID, from, to)
		return err
	}, func(err error) {
		c.view.ClearSelected()
		if err != nil {
			c.logger.Warn("move request failed", zap.Error(err))
			c.view.Alert(FailureMessage(err))
			settled()
			return
		}
		if !resp.Accepted() {
			c.logger.Info("move rejected",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
				zap.String("status", resp.Status))
			c.view.Alert(core.MsgInvalidMove)
			settled()
			return
		}

		c.logger.Info("move made", zap.String("from", from.String()), zap.String("to", to.String()))
		c.sink.ApplyDocument(&resp.StateDocument)
		if c.BotMode && !resp.GameOver {
			c.requestBotMove(gameID, settled)
			return
		}
		settled()
	})
}

func (c *Coordinator) requestBotMove(gameID string, settled func()) {
	var resp *wire.MoveResponse
	c.loop.Go(func(ctx context.Context) error {
		var err error
		resp, err = c.svc.BotMove(ctx, gameID)
		return err
	}, func(err error) {
		defer settled()
		if err != nil {
			c.logger.Warn("bot move request failed", zap.Error(err))
			c.view.Alert(FailureMessage(err))
			return
		}
		switch resp.Status {
		case wire.StatusMoveMade, wire.StatusGameOver:
			c.sink.ApplyDocument(&resp.StateDocument)
		default:
			c.logger.Warn("bot move rejected", zap.String("status", resp.Status))
			c.view.Alert("Bot could not move")
		}
	})
}

// FailureMessage is the user-visible text for a failed request
func FailureMessage(err error) string {
	if api.IsTimeout(err) {
		return "The server did not respond in time"
	}
	return fmt.Sprintf("Request failed: %v", err)
}
