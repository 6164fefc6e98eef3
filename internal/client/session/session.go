// Package session orchestrates one game page: initial load, clicks,
// restart and undo. Every method must run on the event loop goroutine.
package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"chessboard/internal/client/coordinator"
	"chessboard/internal/client/display"
	"chessboard/internal/client/eventloop"
	"chessboard/internal/client/selection"
	"chessboard/internal/core"
	"chessboard/internal/wire"

	"go.uber.org/zap"
)

// Service is the game service as seen by a session
type Service interface {
	coordinator.Service
	GetState(ctx context.Context, gameID string) (*wire.StateDocument, error)
	Captured(ctx context.Context, gameID string) (*wire.CapturedResponse, error)
	Restart(ctx context.Context, gameID string) (*wire.RestartResponse, error)
	Undo(ctx context.Context, gameID string) (*wire.UndoResponse, error)
}

type Options struct {
	// BotMode requests a server reply move after every accepted move
	BotMode bool
	// LockOnGameOver refuses board clicks once the game has ended
	LockOnGameOver bool
}

type Controller struct {
	loop    *eventloop.Loop
	svc     Service
	view    display.View
	machine *selection.Machine
	coord   *coordinator.Coordinator
	logger  *zap.Logger
	opts    Options

	gameID   string
	phase    core.Phase
	snapshot core.Snapshot
	busy     bool

	// gen counts state replacements; side fetches issued under an older
	// generation are dropped
	gen uint64
}

func New(loop *eventloop.Loop, svc Service, view display.View, logger *zap.Logger, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		loop:    loop,
		svc:     svc,
		view:    view,
		machine: selection.New(),
		logger:  logger.Named("session"),
		opts:    opts,
		phase:   core.PhaseLoading,
	}
	c.coord = coordinator.New(loop, svc, view, c.machine, c, logger)
	c.coord.BotMode = opts.BotMode
	return c
}

// GameStarter creates games on the service
type GameStarter interface {
	StartGame(ctx context.Context, mode string) (*wire.StartGameResponse, error)
}

// NewGame starts a game in mode and returns the page URL that opens it,
// e.g. http://host/1vs1?game_id=<id>
func NewGame(ctx context.Context, svc GameStarter, pageBase, mode string) (string, error) {
	resp, err := svc.StartGame(ctx, mode)
	if err != nil {
		return "", fmt.Errorf("start game: %w", err)
	}
	if resp.GameID == "" {
		if resp.Error != "" {
			return "", fmt.Errorf("start game: %s", resp.Error)
		}
		return "", fmt.Errorf("start game: %w", core.ErrNoGameID)
	}
	if mode == "" {
		mode = "1vs1"
	}
	return fmt.Sprintf("%s/%s?game_id=%s", strings.TrimRight(pageBase, "/"), mode, url.QueryEscape(resp.GameID)), nil
}

// GameIDFromURL reads the game_id query parameter of a navigation URL
func GameIDFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	id := strings.TrimSpace(u.Query().Get("game_id"))
	if id == "" {
		return "", core.ErrNoGameID
	}
	return id, nil
}

// Load reads the game id from the navigation URL and fetches full state.
// A missing id or unknown game leaves the session non-interactive.
func (c *Controller) Load(navURL string) {
	gameID, err := GameIDFromURL(navURL)
	if err != nil {
		c.logger.Error("cannot start session", zap.String("url", navURL), zap.Error(err))
		c.fail(core.MsgNoGameID)
		return
	}
	c.gameID = gameID
	c.logger = c.logger.With(zap.String("game_id", gameID))
	c.phase = core.PhaseLoading

	c.fetchState(func(doc *wire.StateDocument, err error) {
		if err != nil {
			c.logger.Error("initial fetch failed", zap.Error(err))
			c.fail(coordinator.FailureMessage(err))
			return
		}
		if doc.Error != "" {
			c.logger.Error("initial fetch rejected", zap.String("error", doc.Error), zap.String("code", doc.Code))
			c.fail(rejectionMessage(doc))
			return
		}
		c.ApplyDocument(doc)
		c.phase = core.PhaseReady
		if doc.Captured == nil {
			c.fetchCaptured()
		}
	})
}

// Click handles a pointer click on cell
func (c *Controller) Click(cell core.Coord) {
	if c.phase != core.PhaseReady {
		c.logger.Debug("click ignored", zap.Stringer("phase", c.phase))
		return
	}
	if c.busy {
		c.view.Alert(core.MsgBusy)
		return
	}
	if c.snapshot.GameOver && c.opts.LockOnGameOver {
		c.view.Alert(core.MsgGameOverLocked)
		return
	}

	c.view.ClearHighlights()
	action := c.machine.Click(cell, selection.Context{
		Board: c.snapshot.Board,
		Turn:  c.snapshot.Turn,
	})

	switch action.Kind {
	case selection.RequestLegalMoves:
		c.coord.RequestLegalMoves(c.gameID, action.Seq, action.From)
	case selection.SubmitMove:
		c.busy = true
		c.coord.SubmitMove(c.gameID, action.From, action.To, c.settle)
	case selection.Reject:
		c.view.Alert(action.Message)
	}
}

// Restart resets the game on the server, then re-fetches and re-renders
// everything
func (c *Controller) Restart() {
	if !c.beginAction() {
		return
	}

	var resp *wire.RestartResponse
	c.loop.Go(func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Restart(ctx, c.gameID)
		return err
	}, func(err error) {
		if err != nil {
			c.logger.Warn("restart failed", zap.Error(err))
			c.view.Alert(coordinator.FailureMessage(err))
			c.settle()
			return
		}
		if !resp.Succeeded() {
			c.logger.Warn("restart rejected", zap.String("status", resp.Status), zap.String("error", resp.Error))
			c.view.Alert(core.MsgRestartFailed)
			c.settle()
			return
		}
		c.logger.Info(resp.Message)

		c.fetchState(func(doc *wire.StateDocument, err error) {
			defer c.settle()
			if err != nil {
				c.view.Alert(coordinator.FailureMessage(err))
				return
			}
			if doc.Error != "" {
				c.logger.Warn("refetch after restart rejected", zap.String("error", doc.Error), zap.String("code", doc.Code))
				c.view.Alert(rejectionMessage(doc))
				return
			}
			c.view.HideGameOver()
			c.ApplyDocument(doc)
			c.view.ClearTrays()
			c.snapshot.Captured = &core.Captured{}
			c.phase = core.PhaseReady
		})
	})
}

// Undo takes back the last move and renders the returned state directly
func (c *Controller) Undo() {
	if !c.beginAction() {
		return
	}

	var resp *wire.UndoResponse
	c.loop.Go(func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Undo(ctx, c.gameID)
		return err
	}, func(err error) {
		defer c.settle()
		if err != nil {
			c.logger.Warn("undo failed", zap.Error(err))
			c.view.Alert(coordinator.FailureMessage(err))
			return
		}
		if !resp.Succeeded() {
			msg := resp.Message
			if msg == "" {
				msg = resp.Error
			}
			c.logger.Info("undo rejected", zap.String("message", msg))
			c.view.Alert(msg)
			return
		}
		c.ApplyDocument(&resp.StateDocument)
	})
}

// ApplyDocument replaces all authoritative state from one server document
// and renders it
func (c *Controller) ApplyDocument(doc *wire.StateDocument) {
	snap, skipped := doc.Snapshot()
	if skipped > 0 {
		c.logger.Warn("unparseable board cells skipped", zap.Int("cells", skipped))
	}

	c.gen++
	c.machine.Reset()
	c.view.ClearHighlights()
	c.view.ClearSelected()

	c.view.RenderBoard(snap.Board)
	if snap.Captured != nil {
		c.view.RenderCaptured(core.ColorWhite, snap.Captured.White)
		c.view.RenderCaptured(core.ColorBlack, snap.Captured.Black)
	} else {
		c.logger.Warn("captured pieces data is missing")
		snap.Captured = c.snapshot.Captured
	}
	c.snapshot = snap
	c.evaluateGameOver()
}

// evaluateGameOver always updates the turn display before the banner
func (c *Controller) evaluateGameOver() {
	c.view.ShowTurn(c.snapshot.Turn)
	if c.snapshot.GameOver {
		c.view.ShowGameOver(c.snapshot.Winner)
		c.logger.Info("game over", zap.String("winner", c.snapshot.Winner))
		return
	}
	c.view.HideGameOver()
}

func (c *Controller) fetchState(then func(doc *wire.StateDocument, err error)) {
	var doc *wire.StateDocument
	c.loop.Go(func(ctx context.Context) error {
		var err error
		doc, err = c.svc.GetState(ctx, c.gameID)
		return err
	}, func(err error) {
		then(doc, err)
	})
}

// rejectionMessage is the alert for an error document from the board
// endpoint
func rejectionMessage(doc *wire.StateDocument) string {
	if doc.NotFound() {
		return core.MsgGameNotFound
	}
	return "Request failed: " + doc.Error
}

// fetchCaptured fills the trays when the board document carried none. The
// reply is dropped if any later state replaced the snapshot meanwhile.
func (c *Controller) fetchCaptured() {
	gen := c.gen
	var resp *wire.CapturedResponse
	c.loop.Go(func(ctx context.Context) error {
		var err error
		resp, err = c.svc.Captured(ctx, c.gameID)
		return err
	}, func(err error) {
		if gen != c.gen {
			c.logger.Debug("stale captured pieces reply dropped")
			return
		}
		if err != nil || resp.Captured == nil {
			c.logger.Warn("captured pieces unavailable", zap.Error(err))
			return
		}
		doc := wire.StateDocument{Captured: resp.Captured}
		snap, _ := doc.Snapshot()
		c.snapshot.Captured = snap.Captured
		c.view.RenderCaptured(core.ColorWhite, snap.Captured.White)
		c.view.RenderCaptured(core.ColorBlack, snap.Captured.Black)
	})
}

func (c *Controller) beginAction() bool {
	if c.gameID == "" {
		c.view.Alert(core.MsgNoGameID)
		return false
	}
	if c.busy {
		c.view.Alert(core.MsgBusy)
		return false
	}
	c.busy = true
	c.gen++
	c.machine.Reset()
	c.view.ClearHighlights()
	c.view.ClearSelected()
	return true
}

func (c *Controller) settle() {
	c.busy = false
}

func (c *Controller) fail(msg string) {
	c.phase = core.PhaseFailed
	c.view.Alert(msg)
}

func (c *Controller) Phase() core.Phase {
	return c.phase
}

func (c *Controller) GameID() string {
	return c.gameID
}

// Snapshot returns the last authoritative state
func (c *Controller) Snapshot() core.Snapshot {
	return c.snapshot
}

func (c *Controller) Busy() bool {
	return c.busy
}

func (c *Controller) Selection() selection.State {
	return c.machine.State()
}
