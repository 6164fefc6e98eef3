package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"chessboard/internal/client/display"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "theme",
		ShortName:   "t",
		Description: "Set board colour theme",
		Usage:       "theme <off|brown|green|gray>",
		Handler:     r.themeHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Show or set API base URL",
		Usage:       "url [apiUrl]",
		Handler:     r.urlHandler,
	})

	r.Register(&Command{
		Name:        "verbose",
		ShortName:   "v",
		Description: "Toggle request tracing",
		Usage:       "verbose",
		Handler:     r.verboseHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Handler:     clearHandler,
	})
}

func (r *Registry) themeHandler(s Session, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: theme <off|brown|green|gray>")
	}
	theme, err := display.ParseTheme(args[0])
	if err != nil {
		return err
	}
	r.color = theme != display.ThemeOff
	r.loop.Post(func() {
		r.term.SetTheme(theme)
		r.term.Draw(r.surface)
	})
	return nil
}

func (r *Registry) urlHandler(s Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current API URL: %s\n", r.client.BaseURL())
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	r.client.SetBaseURL(url)
	r.printf(display.Cyan, "API URL set to: %s\n", url)
	return nil
}

func (r *Registry) verboseHandler(s Session, args []string) error {
	r.client.SetVerbose(!r.client.Verbose())
	fmt.Fprintf(r.out, "Verbose: %t\n", r.client.Verbose())
	return nil
}

func clearHandler(s Session, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}
