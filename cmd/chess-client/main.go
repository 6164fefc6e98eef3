// Package main implements the interactive board client for the game service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"chessboard/internal/client/api"
	"chessboard/internal/client/commands"
	"chessboard/internal/client/config"
	"chessboard/internal/client/display"
	"chessboard/internal/client/eventloop"
	"chessboard/internal/client/session"
	"chessboard/internal/logging"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const startTimeout = 10 * time.Second

type options struct {
	cfg     *config.Config
	newMode string
	color   bool
}

func main() {
	var (
		pageURL    = flag.String("url", defaultPageURL, "Game page URL carrying ?game_id=<id>")
		apiURL     = flag.String("api", "", "Game service base URL")
		configPath = flag.String("config", "", "Path to YAML config file")
		envFile    = flag.String("env", config.DefaultEnvFile, "Dotenv file with CHESS_* settings")
		timeout    = flag.Duration("timeout", 0, "Per-request timeout, e.g. 5s")
		theme      = flag.String("theme", "", "Board theme: auto, off, brown, green, gray")
		bot        = flag.Bool("bot", false, "Ask the service for a reply move after every move")
		newMode    = flag.String("new", "", "Start a new game (1vs1 or 1vsbot) instead of opening -url")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error, off")
	)
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", display.Red, err, display.Reset)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sFailed to load config: %v%s\n", display.Red, err, display.Reset)
		os.Exit(1)
	}

	// flags set on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.PageURL = *pageURL
		case "api":
			cfg.APIBaseURL = *apiURL
		case "timeout":
			cfg.RequestTimeout = *timeout
		case "theme":
			cfg.Theme = *theme
		case "bot":
			cfg.BotMode = *bot
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if cfg.PageURL == "" {
		cfg.PageURL = *pageURL
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", display.Red, err, display.Reset)
		os.Exit(1)
	}
	if *newMode != "" && *newMode != "1vs1" && *newMode != "1vsbot" {
		fmt.Fprintf(os.Stderr, "%sInvalid -new mode: %s (use 1vs1 or 1vsbot)%s\n", display.Red, *newMode, display.Reset)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sFailed to create logger: %v%s\n", display.Red, err, display.Reset)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := options{
		cfg:     cfg,
		newMode: *newMode,
		color:   term.IsTerminal(int(os.Stdout.Fd())),
	}
	for {
		next, again := run(opts, logger)
		if next != "" {
			opts.cfg.PageURL, opts.newMode = next, ""
			continue
		}
		if !again {
			break
		}
	}
}

// run drives one client session. next is the page of a game opened with
// the new command; again asks for a fresh session on the same page.
func run(opts options, logger *zap.Logger) (next string, again bool) {
	cfg := opts.cfg
	theme := cfg.ResolveTheme(opts.color)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(theme, "chess", ""),
		HistoryFile:     cfg.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", display.Red, err.Error(), display.Reset)
		return "", false
	}
	defer rl.Close()
	out := rl.Stdout()

	client := api.New(cfg.APIBaseURL, logger)

	pageURL := cfg.PageURL
	if opts.newMode != "" {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		pageURL, err = session.NewGame(ctx, client, pageBase(pageURL, cfg.APIBaseURL), opts.newMode)
		cancel()
		if err != nil {
			fmt.Fprintf(out, "%s\n", paint(theme, display.Red, err.Error()))
			return "", false
		}
	}

	glyphs := display.UnicodeGlyphs
	if !opts.color {
		glyphs = display.LetterGlyphs
	}
	merged := make(map[string]string, len(glyphs)+len(cfg.Glyphs))
	for k, v := range glyphs {
		merged[k] = v
	}
	for k, v := range cfg.Glyphs {
		merged[k] = v
	}

	loop := eventloop.New(cfg.RequestTimeout, logger)
	surface := display.NewSurface(display.NewAssetResolver(cfg.AssetPattern, merged), logger)
	terminal := display.NewTerminal(out, theme)
	ctrl := session.New(loop, client, surface, logger, session.Options{
		BotMode:        cfg.BotMode || isBotPage(pageURL),
		LockOnGameOver: cfg.LockOnGameOver,
	})

	lastPrompt := ""
	loop.OnIdle(func() {
		terminal.Refresh(surface)
		p := prompt(theme, "chess", ctrl.GameID())
		if snap := ctrl.Snapshot(); snap.Turn != "" && !snap.GameOver {
			p = prompt(theme, "chess", ctrl.GameID()+" - "+turnLabel(theme, string(snap.Turn)))
		}
		if p != lastPrompt {
			rl.SetPrompt(p)
			rl.Refresh()
			lastPrompt = p
		}
	})

	registry := commands.NewRegistry(commands.Options{
		Session:  ctrl,
		Loop:     loop,
		Surface:  surface,
		Terminal: terminal,
		Client:   client,
		Out:      out,
		Color:    theme != display.ThemeOff,
		PageBase: pageBase(pageURL, cfg.APIBaseURL),
	})

	fmt.Fprintf(out, "%s\n", paint(theme, display.Cyan, "Chess Board Client"))
	fmt.Fprintf(out, "%s\n", paint(theme, display.Cyan, "API: "+cfg.APIBaseURL))
	fmt.Fprintf(out, "Type a square to click it, 'help' for commands\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	loop.Post(func() { ctrl.Load(pageURL) })

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || registry.Execute(line) {
			break
		}
	}

	loop.Stop()
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("event loop stopped", zap.Error(err))
	}
	if next := registry.NextPage(); next != "" {
		return next, true
	}
	return "", handleExit(out, theme)
}

// pageBase derives where game pages live from the page URL, falling back
// to the API origin
func pageBase(pageURL, apiURL string) string {
	for _, raw := range []string{pageURL, apiURL} {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		return u.Scheme + "://" + u.Host
	}
	return apiURL
}

func isBotPage(pageURL string) bool {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return false
	}
	return path.Base(strings.TrimRight(u.Path, "/")) == "1vsbot"
}

func prompt(theme display.Theme, base, label string) string {
	text := base
	if label != "" {
		text += " [" + label + "]"
	}
	if theme == display.ThemeOff {
		return text + " > "
	}
	return display.Prompt(text)
}

func turnLabel(theme display.Theme, turn string) string {
	if theme == display.ThemeOff {
		return turn
	}
	return display.ColorForTurn(turn)
}

func paint(theme display.Theme, color, text string) string {
	if theme == display.ThemeOff {
		return text
	}
	return color + text + display.Reset
}
