package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
)

type Config struct {
	Shell      string `json:"shell"`
	Theme      string `json:"theme"`
	Scrollback int    `json:"scrollback"`
}

type ColorScheme struct {
	Name        string
	Background  tcell.Color
	Foreground  tcell.Color
	Border      tcell.Color
	TitleBarBg  tcell.Color
	TitleBarFg  tcell.Color
	IndicatorBg tcell.Color
}

var Themes = map[string]*ColorScheme{
	"dark": {
		Name:        "Dark",
		Background:  tcell.ColorBlack,
		Foreground:  tcell.ColorWhite,
		Border:      tcell.ColorGray,
		TitleBarBg:  tcell.ColorDarkBlue,
		TitleBarFg:  tcell.ColorWhite,
		IndicatorBg: tcell.ColorBlue,
	},
	"light": {
		Name:        "Light",
		Background:  tcell.ColorWhite,
		Foreground:  tcell.ColorBlack,
		Border:      tcell.ColorGray,
		TitleBarBg:  tcell.ColorLightBlue,
		TitleBarFg:  tcell.ColorBlack,
		IndicatorBg: tcell.ColorBlue,
	},
	"monokai": {
		Name:        "Monokai",
		Background:  tcell.NewRGBColor(39, 40, 34),
		Foreground:  tcell.NewRGBColor(248, 248, 242),
		Border:      tcell.NewRGBColor(117, 113, 94),
		TitleBarBg:  tcell.NewRGBColor(73, 72, 62),
		TitleBarFg:  tcell.NewRGBColor(248, 248, 242),
		IndicatorBg: tcell.NewRGBColor(102, 217, 239),
	},
	"dracula": {
		Name:        "Dracula",
		Background:  tcell.NewRGBColor(40, 42, 54),
		Foreground:  tcell.NewRGBColor(248, 248, 242),
		Border:      tcell.NewRGBColor(98, 114, 164),
		TitleBarBg:  tcell.NewRGBColor(68, 71, 90),
		TitleBarFg:  tcell.NewRGBColor(248, 248, 242),
		IndicatorBg: tcell.NewRGBColor(189, 147, 249),
	},
}

func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return &Config{
		Shell:      shell,
		Theme:      "monokai",
		Scrollback: 10000,
	}
}

func (c *Config) GetTheme() *ColorScheme {
	theme, ok := Themes[c.Theme]
	if !ok {
		return Themes["monokai"]
	}
	return theme
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "termemu", "settings.json")
}

func Load() (*Config, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Scrollback < 0 {
		cfg.Scrollback = 0
	}
	return cfg, nil
}

func (c *Config) Save() error {
	path := ConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
