package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"chessboard/internal/client/api"
	"chessboard/internal/client/display"
	"chessboard/internal/client/selection"
	"chessboard/internal/core"
)

var errExit = errors.New("exit")

// Session is the board session driven by commands. Its methods are only
// called on the event loop.
type Session interface {
	Click(cell core.Coord)
	Restart()
	Undo()
	Phase() core.Phase
	GameID() string
	Snapshot() core.Snapshot
	Selection() selection.State
	Busy() bool
}

// Poster runs fn on the event loop
type Poster interface {
	Post(fn func())
}

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Handler     func(Session, []string) error
}

// Registry manages command registration and execution. Handlers run on the
// input goroutine and post their work to the event loop.
type Registry struct {
	session  Session
	loop     Poster
	surface  *display.Surface
	term     *display.Terminal
	client   *api.Client
	out      io.Writer
	color    bool
	pageBase string
	next     string
	commands map[string]*Command
}

type Options struct {
	Session  Session
	Loop     Poster
	Surface  *display.Surface
	Terminal *display.Terminal
	Client   *api.Client
	Out      io.Writer
	// Color enables ANSI colours in command output
	Color bool
	// PageBase is the origin game pages are served from, used by new
	PageBase string
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{
		session:  opts.Session,
		loop:     opts.Loop,
		surface:  opts.Surface,
		term:     opts.Terminal,
		client:   opts.Client,
		out:      opts.Out,
		color:    opts.Color,
		pageBase: opts.PageBase,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Handler:     exitHandler,
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Execute runs one input line. A bare coordinate is a click. It reports
// whether the client should exit.
func (r *Registry) Execute(input string) (exit bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, exists := r.commands[cmdName]
	if !exists {
		if _, err := core.ParseCoord(parts[0]); err == nil && len(args) == 0 {
			cmd, args = r.commands["click"], parts
		} else {
			r.printf(display.Red, "Unknown command: %s\n", cmdName)
			fmt.Fprintf(r.out, "Type 'help' for available commands\n")
			return false
		}
	}

	if err := cmd.Handler(r.session, args); err != nil {
		if errors.Is(err, errExit) {
			return true
		}
		r.printf(display.Red, "Error: %s\n", err.Error())
	}
	return false
}

func (r *Registry) helpHandler(s Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(r.out, "\n%s - %s\n", r.paint(display.Cyan, cmd.Name), cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(r.out, "Short form: %s\n", r.paint(display.Cyan, cmd.ShortName))
		}
		fmt.Fprintf(r.out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	r.printf(display.Cyan, "\nAvailable Commands:\n\n")

	type cmdInfo struct {
		name      string
		shortName string
	}

	gameCommands := []cmdInfo{
		{"click", "c"},
		{"restart", "r"},
		{"undo", "u"},
		{"show", "h"},
		{"state", "s"},
		{"new", "n"},
	}

	utilCommands := []cmdInfo{
		{"theme", "t"},
		{"url", "/"},
		{"verbose", "v"},
		{"clear", "-"},
		{"help", "?"},
		{"exit", "x"},
	}

	printCommandGroup := func(title string, cmds []cmdInfo) {
		r.printf(display.Yellow, "%s:\n", title)
		for _, info := range cmds {
			if cmd, exists := r.commands[info.name]; exists {
				shortPart := ""
				if info.shortName != "" {
					shortPart = "[" + r.paint(display.Cyan, info.shortName) + "] "
				}
				fmt.Fprintf(r.out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
			}
		}
	}

	printCommandGroup("Game Commands", gameCommands)
	fmt.Fprintln(r.out)
	printCommandGroup("Utility Commands", utilCommands)

	fmt.Fprintf(r.out, "\nType a square (e.g. 'e2' or '6,4') to click it\n")
	fmt.Fprintf(r.out, "Type 'help <command>' for detailed usage\n")
	return nil
}

// NextPage is the page URL of a game started with new, empty otherwise
func (r *Registry) NextPage() string {
	return r.next
}

func exitHandler(s Session, args []string) error {
	return errExit
}

func (r *Registry) paint(color, text string) string {
	if !r.color {
		return text
	}
	return color + text + display.Reset
}

func (r *Registry) printf(color, format string, a ...any) {
	fmt.Fprint(r.out, r.paint(color, fmt.Sprintf(format, a...)))
}
