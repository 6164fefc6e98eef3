package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chessboard/internal/client/display"
	"chessboard/internal/client/session"
	"chessboard/internal/core"
)

const newGameTimeout = 10 * time.Second

func (r *Registry) registerGameCommands() {
	r.Register(&Command{
		Name:        "click",
		ShortName:   "c",
		Description: "Click a square",
		Usage:       "click <square> (e2 or row,col)",
		Handler:     r.clickHandler,
	})

	r.Register(&Command{
		Name:        "restart",
		ShortName:   "r",
		Description: "Restart the game",
		Usage:       "restart",
		Handler:     r.restartHandler,
	})

	r.Register(&Command{
		Name:        "undo",
		ShortName:   "u",
		Description: "Take back the last move",
		Usage:       "undo",
		Handler:     r.undoHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Redraw the board",
		Usage:       "show",
		Handler:     r.showBoardHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show session state",
		Usage:       "state",
		Handler:     r.stateHandler,
	})

	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Start a new game and open it",
		Usage:       "new [1vs1|1vsbot]",
		Handler:     r.newGameHandler,
	})
}

func (r *Registry) clickHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: click <square>")
	}
	cell, err := core.ParseCoord(args[0])
	if err != nil {
		return err
	}
	r.loop.Post(func() { s.Click(cell) })
	return nil
}

func (r *Registry) restartHandler(s Session, args []string) error {
	r.loop.Post(s.Restart)
	return nil
}

func (r *Registry) undoHandler(s Session, args []string) error {
	r.loop.Post(s.Undo)
	return nil
}

func (r *Registry) showBoardHandler(s Session, args []string) error {
	r.loop.Post(func() { r.term.Draw(r.surface) })
	return nil
}

func (r *Registry) stateHandler(s Session, args []string) error {
	header := r.paint(display.Cyan, "Session:")
	r.loop.Post(func() {
		snap := s.Snapshot()
		var sb strings.Builder
		sb.WriteString(header + "\n")
		fmt.Fprintf(&sb, "  Game:      %s\n", s.GameID())
		fmt.Fprintf(&sb, "  Phase:     %s\n", s.Phase())
		fmt.Fprintf(&sb, "  Turn:      %s\n", snap.Turn)
		fmt.Fprintf(&sb, "  Game over: %t\n", snap.GameOver)
		if snap.GameOver {
			fmt.Fprintf(&sb, "  Winner:    %s\n", snap.Winner)
		}
		fmt.Fprintf(&sb, "  Selection: %s\n", s.Selection())
		if s.Busy() {
			sb.WriteString("  Waiting for the server\n")
		}
		fmt.Fprint(r.out, sb.String())
	})
	return nil
}

// newGameHandler runs on the input goroutine; the session is replaced by
// the caller once Execute reports exit
func (r *Registry) newGameHandler(s Session, args []string) error {
	mode := "1vs1"
	if len(args) > 0 {
		mode = strings.ToLower(args[0])
	}
	if mode != "1vs1" && mode != "1vsbot" {
		return fmt.Errorf("invalid mode: %s (use 1vs1 or 1vsbot)", mode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), newGameTimeout)
	defer cancel()
	page, err := session.NewGame(ctx, r.client, r.pageBase, mode)
	if err != nil {
		return err
	}
	r.next = page
	r.printf(display.Green, "Opening %s\n", page)
	return errExit
}
