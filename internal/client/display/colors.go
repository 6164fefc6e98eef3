package display

import (
	"fmt"
	"strings"
)

// Terminal color codes
const (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

type Theme string

const (
	ThemeOff   Theme = "off"
	ThemeBrown Theme = "brown"
	ThemeGreen Theme = "green"
	ThemeGray  Theme = "gray"
)

type themeColors struct {
	lightBg     string
	darkBg      string
	highlightBg string
	selectedBg  string
	white       string
	black       string
	reset       string
}

var themes = map[Theme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg:     "\033[48;5;230m", // Beige
		darkBg:      "\033[48;5;94m",  // Brown
		highlightBg: "\033[48;5;149m",
		selectedBg:  "\033[48;5;220m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       Reset,
	},
	ThemeGreen: {
		lightBg:     "\033[48;5;157m", // Light green
		darkBg:      "\033[48;5;22m",  // Dark green
		highlightBg: "\033[48;5;117m",
		selectedBg:  "\033[48;5;220m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       Reset,
	},
	ThemeGray: {
		lightBg:     "\033[48;5;251m", // Light gray
		darkBg:      "\033[48;5;240m", // Dark gray
		highlightBg: "\033[48;5;114m",
		selectedBg:  "\033[48;5;220m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       Reset,
	},
}

func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := themes[t]; !ok {
		return ThemeOff, fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", s)
	}
	return t, nil
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + Yellow + " > " + Reset
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn string) string {
	if turn == "white" {
		return Blue + "white" + Reset
	}
	return Red + turn + Reset
}
