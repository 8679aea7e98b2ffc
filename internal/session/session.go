// Package session persists and restores a project's panel-group layout
// across restarts, per spec §6's session file layout.
//
// Directory naming and the session-root resolution sequence are grounded
// on the teacher's PTY-socket-sharing session package (GetSessionDir,
// hashProjectPath) — generalized from naming a Unix socket to naming a
// session directory, since this spec's "session" is a saved layout rather
// than a shared live PTY connection; the socket-multiplexing client/server
// halves of that package have no SPEC_FULL.md component and were dropped
// (see DESIGN.md).
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// PanelKind tags which variant a SessionPanel descriptor represents.
type PanelKind string

const (
	PanelFileManager PanelKind = "file_manager"
	PanelEditor      PanelKind = "editor"
	PanelTerminal    PanelKind = "terminal"
	PanelDebug       PanelKind = "debug"
	PanelWelcome     PanelKind = "welcome"
)

// SessionPanel is the serializable form of one panel, per spec §6.
type SessionPanel struct {
	Kind              PanelKind `toml:"kind"`
	Path              string    `toml:"path,omitempty"`
	UnsavedBufferFile string    `toml:"unsaved_buffer_file,omitempty"`
	WorkingDir        string    `toml:"working_dir,omitempty"`
}

// PanelGroup is one horizontal group's vertical stack of panels.
type PanelGroup struct {
	Panels        []SessionPanel `toml:"panels"`
	ExpandedIndex int            `toml:"expanded_index"`
	Width         int            `toml:"width"`
}

// Session is the top-level serialized layout, written to session.toml.
type Session struct {
	PanelGroups  []PanelGroup `toml:"panel_groups"`
	FocusedGroup int          `toml:"focused_group"`
}

// Dir wraps a project's on-disk session directory: session.toml, a
// buffers/ directory for unsaved editor content, and logs/.
type Dir struct {
	Root string
}

// sessionsRoot returns (and creates) the parent directory all project
// session directories live under, defaulting to ~/.config/termide/sessions
// unless TERMIDE_CONFIG_HOME or XDG_CONFIG_HOME override the config root.
func sessionsRoot() (string, error) {
	base, err := configRoot()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "sessions")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("session: create sessions root: %w", err)
	}
	return dir, nil
}

func configRoot() (string, error) {
	if v := os.Getenv("TERMIDE_CONFIG_HOME"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "termide"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("session: resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "termide"), nil
}

// hashProjectPath derives a stable directory name from an absolute
// project path, matching the teacher's 16-hex-char SHA256 prefix scheme.
func hashProjectPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	sum := sha256.Sum256([]byte(absPath))
	return hex.EncodeToString(sum[:])[:16]
}

// Open resolves (creating if necessary) the session directory for
// projectRoot: <sessionsRoot>/<hash>/.
func Open(projectRoot string) (*Dir, error) {
	root, err := sessionsRoot()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(root, hashProjectPath(projectRoot))
	for _, sub := range []string{"", "buffers", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o700); err != nil {
			return nil, fmt.Errorf("session: mkdir %s: %w", sub, err)
		}
	}
	return &Dir{Root: dir}, nil
}

func (d *Dir) tomlPath() string   { return filepath.Join(d.Root, "session.toml") }
func (d *Dir) buffersDir() string { return filepath.Join(d.Root, "buffers") }
func (d *Dir) LogsDir() string    { return filepath.Join(d.Root, "logs") }

// Load reads session.toml, returning (nil, nil) if it does not exist yet.
func (d *Dir) Load() (*Session, error) {
	data, err := os.ReadFile(d.tomlPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read: %w", err)
	}
	var s Session
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: parse: %w", err)
	}
	return &s, nil
}

// Save atomically writes s as session.toml.
func (d *Dir) Save(s *Session) error {
	tmp, err := os.CreateTemp(d.Root, "session-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("session: tempfile: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := toml.NewEncoder(tmp)
	if err := enc.Encode(s); err != nil {
		tmp.Close()
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close tempfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.tomlPath()); err != nil {
		return fmt.Errorf("session: rename: %w", err)
	}
	return nil
}

// NewUnsavedBuffer allocates a fresh, unique file in buffers/ for an
// editor panel with no backing path, and writes content to it.
func (d *Dir) NewUnsavedBuffer(content string) (string, error) {
	name := uuid.New().String() + ".buf"
	path := filepath.Join(d.buffersDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("session: write unsaved buffer: %w", err)
	}
	return name, nil
}

// ReadUnsavedBuffer loads a buffer previously created by NewUnsavedBuffer.
func (d *Dir) ReadUnsavedBuffer(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(d.buffersDir(), name))
	if err != nil {
		return "", fmt.Errorf("session: read unsaved buffer: %w", err)
	}
	return string(data), nil
}

// CleanOrphanBuffers removes files in buffers/ not referenced by any
// panel in s, per spec §6 "orphaned buffer files ... cleaned up on load".
func (d *Dir) CleanOrphanBuffers(s *Session) error {
	referenced := map[string]bool{}
	if s != nil {
		for _, g := range s.PanelGroups {
			for _, p := range g.Panels {
				if p.UnsavedBufferFile != "" {
					referenced[p.UnsavedBufferFile] = true
				}
			}
		}
	}
	entries, err := os.ReadDir(d.buffersDir())
	if err != nil {
		return fmt.Errorf("session: read buffers dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || referenced[e.Name()] {
			continue
		}
		_ = os.Remove(filepath.Join(d.buffersDir(), e.Name()))
	}
	return nil
}

// RotateLogs deletes log files in logs/ older than retention.
func (d *Dir) RotateLogs(retention time.Duration) error {
	entries, err := os.ReadDir(d.LogsDir())
	if err != nil {
		return fmt.Errorf("session: read logs dir: %w", err)
	}
	cutoff := time.Now().Add(-retention)
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(d.LogsDir(), e.Name()))
		}
	}
	return nil
}
