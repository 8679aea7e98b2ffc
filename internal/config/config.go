// Package config resolves the XDG-style configuration directory and loads
// config.toml, per spec §6.
//
// Directory resolution is grounded on the teacher's InitConfigDir
// (internal/config/config.go): TERMIDE_CONFIG_HOME, then XDG_CONFIG_HOME,
// then mitchellh/go-homedir's platform-aware home lookup, renamed from
// THICC_CONFIG_HOME/MICRO_CONFIG_HOME to TERMIDE_CONFIG_HOME.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
)

// IndentStyle selects how the editor indents new lines.
type IndentStyle string

const (
	IndentSpaces IndentStyle = "spaces"
	IndentTab    IndentStyle = "tab"
)

// WrapMode selects the editor's soft-wrap behavior.
type WrapMode string

const (
	WrapOff    WrapMode = "off"
	WrapSimple WrapMode = "simple"
	WrapSmart  WrapMode = "smart"
)

// General holds top-level behavior knobs.
type General struct {
	MinPanelWidth        int `toml:"min_panel_width"`
	SessionRetentionDays int `toml:"session_retention_days"`
}

// Editor holds editor-panel behavior knobs.
type Editor struct {
	IndentStyle        IndentStyle `toml:"indent_style"`
	IndentWidth        int         `toml:"indent_width"`
	WrapMode           WrapMode    `toml:"wrap_mode"`
	SyntaxHighlighting bool        `toml:"syntax_highlighting"`
	ShowGitDiff        bool        `toml:"show_git_diff"`
}

// Logging holds logging knobs, consumed by internal/logging.
type Logging struct {
	MinLevel                string `toml:"min_level"`
	FilePath                string `toml:"file_path"`
	ResourceMonitorInterval int    `toml:"resource_monitor_interval"`
}

// Config is the full set of recognized options, all optional with
// defaults per spec §6.
type Config struct {
	General General `toml:"general"`
	Editor  Editor  `toml:"editor"`
	Logging Logging `toml:"logging"`
}

// Default returns the configuration spec §6 describes when config.toml is
// absent or a key is unset.
func Default() Config {
	return Config{
		General: General{MinPanelWidth: 40, SessionRetentionDays: 7},
		Editor: Editor{
			IndentStyle:        IndentSpaces,
			IndentWidth:        4,
			WrapMode:           WrapSimple,
			SyntaxHighlighting: true,
			ShowGitDiff:        true,
		},
		Logging: Logging{MinLevel: "info", ResourceMonitorInterval: 2000},
	}
}

// Dir resolves the configuration directory, creating it if absent.
// flagConfigDir is returned first when it names an existing path;
// otherwise TERMIDE_CONFIG_HOME, then XDG_CONFIG_HOME/termide, then
// ~/.config/termide via go-homedir.
func Dir(flagConfigDir string) (string, error) {
	if flagConfigDir != "" {
		if _, err := os.Stat(flagConfigDir); err == nil {
			return flagConfigDir, nil
		}
	}

	dir := os.Getenv("TERMIDE_CONFIG_HOME")
	if dir == "" {
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg == "" {
			home, err := homedir.Dir()
			if err != nil {
				return "", fmt.Errorf("config: resolve home directory: %w", err)
			}
			xdg = filepath.Join(home, ".config")
		}
		dir = filepath.Join(xdg, "termide")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: create config directory: %w", err)
	}
	return dir, nil
}

// Load reads config.toml from dir, layering recognized keys over Default().
// A missing file is not an error.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, "config.toml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
