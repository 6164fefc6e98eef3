// Package config loads the board client configuration: built-in defaults,
// then an optional YAML file, then CHESS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"chessboard/internal/client/display"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL     = "http://localhost:5000"
	DefaultRequestTimeout = 10 * time.Second
	DefaultHistoryFile    = ".chessboard_history"
	DefaultEnvFile        = ".env"

	// ThemeAuto picks a colour theme only when stdout is a terminal
	ThemeAuto = "auto"
)

var validate = validator.New()

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error off none"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

type Config struct {
	// PageURL is the navigation URL carrying the game_id query parameter
	PageURL        string            `yaml:"page_url" validate:"omitempty,url"`
	APIBaseURL     string            `yaml:"api_base_url" validate:"required,url"`
	RequestTimeout time.Duration     `yaml:"request_timeout" validate:"gt=0"`
	Theme          string            `yaml:"theme" validate:"oneof=auto off brown green gray"`
	AssetPattern   string            `yaml:"asset_pattern" validate:"required"`
	Glyphs         map[string]string `yaml:"glyphs"`
	BotMode        bool              `yaml:"bot_mode"`
	LockOnGameOver bool              `yaml:"lock_on_game_over"`
	HistoryFile    string            `yaml:"history_file"`
	Log            LogConfig         `yaml:"log"`
}

func Default() *Config {
	return &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		Theme:          ThemeAuto,
		AssetPattern:   display.DefaultAssetPattern,
		LockOnGameOver: true,
		HistoryFile:    DefaultHistoryFile,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Load reads path over the defaults, then applies the environment. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping fields the document does not set
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadDotEnv exports the variables of a dotenv file without overriding the
// real environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from CHESS_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %q", key, v)
		}
		*dst = b
		return nil
	}

	str("CHESS_PAGE_URL", &c.PageURL)
	str("CHESS_API_URL", &c.APIBaseURL)
	str("CHESS_THEME", &c.Theme)
	str("CHESS_ASSET_PATTERN", &c.AssetPattern)
	str("CHESS_HISTORY_FILE", &c.HistoryFile)
	str("CHESS_LOG_LEVEL", &c.Log.Level)
	str("CHESS_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("CHESS_TIMEOUT"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid CHESS_TIMEOUT: %q", v)
		}
		c.RequestTimeout = d
	}
	if err := boolean("CHESS_BOT", &c.BotMode); err != nil {
		return err
	}
	return boolean("CHESS_LOCK_ON_GAME_OVER", &c.LockOnGameOver)
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: field %s failed %s", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if !strings.Contains(c.AssetPattern, "{name}") {
		return fmt.Errorf("invalid config: asset_pattern %q has no {name} placeholder", c.AssetPattern)
	}
	return nil
}

// ResolveTheme turns the configured theme into a display theme; auto
// enables colour only on a terminal
func (c *Config) ResolveTheme(isTerminal bool) display.Theme {
	if c.Theme == ThemeAuto {
		if isTerminal {
			return display.ThemeBrown
		}
		return display.ThemeOff
	}
	theme, err := display.ParseTheme(c.Theme)
	if err != nil {
		return display.ThemeOff
	}
	return theme
}
