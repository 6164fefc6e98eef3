package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"chessboard/internal/server/storage"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	return run(os.Stdout, args)
}

func run(out io.Writer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, moves")
	}

	switch args[0] {
	case "init":
		return runInit(out, args[1:])
	case "delete":
		return runDelete(out, args[1:])
	case "query":
		return runQuery(out, args[1:])
	case "moves":
		return runMoves(out, args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// open parses -path plus any extra flags and opens the store
func open(name string, args []string, extra func(fs *flag.FlagSet)) (*storage.Store, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if *path == "" {
		return nil, "", fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open store: %w", err)
	}
	return store, *path, nil
}

func runInit(out io.Writer, args []string) error {
	store, path, err := open("init", args, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", path)
	return nil
}

func runDelete(out io.Writer, args []string) error {
	store, path, err := open("delete", args, nil)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Fprintf(out, "Database deleted: %s\n", path)
	return nil
}

func runQuery(out io.Writer, args []string) error {
	var gameID *string
	store, _, err := open("query", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tMode\tMoves\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 72))

	for _, g := range games {
		moves, err := store.QueryMoves(g.GameID)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			g.GameID,
			g.Mode,
			len(moves),
			g.StartTimeUTC.Format(time.DateTime),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

func runMoves(out io.Writer, args []string) error {
	var gameID *string
	store, _, err := open("moves", args, func(fs *flag.FlagSet) {
		gameID = fs.String("gameId", "", "Game ID (required)")
	})
	if err != nil {
		return err
	}
	defer store.Close()

	if *gameID == "" {
		return fmt.Errorf("game ID required")
	}

	moves, err := store.QueryMoves(*gameID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(moves) == 0 {
		fmt.Fprintf(out, "No moves recorded for %s\n", *gameID)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tColor\tMove\tTime")
	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.MoveNumber, m.PlayerColor, m.MoveUCI, m.MoveTimeUTC.Format(time.DateTime))
	}
	return w.Flush()
}
