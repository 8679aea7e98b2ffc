package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirPrefersTermideConfigHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TERMIDE_CONFIG_HOME", tmp)
	dir, err := Dir("")
	require.NoError(t, err)
	assert.Equal(t, tmp, dir)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.General.MinPanelWidth)
	assert.Equal(t, IndentSpaces, cfg.Editor.IndentStyle)
}

func TestLoadOverridesDefaults(t *testing.T) {
	tmp := t.TempDir()
	content := "[general]\nmin_panel_width = 60\n\n[editor]\nwrap_mode = \"off\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "config.toml"), []byte(content), 0o644))

	cfg, err := Load(tmp)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.General.MinPanelWidth)
	assert.Equal(t, WrapOff, cfg.Editor.WrapMode)
	assert.Equal(t, 7, cfg.General.SessionRetentionDays)
}
