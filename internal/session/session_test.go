package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenIsStableForSameProjectPath(t *testing.T) {
	t.Setenv("TERMIDE_CONFIG_HOME", t.TempDir())
	d1, err := Open("/tmp/project-a")
	require.NoError(t, err)
	d2, err := Open("/tmp/project-a")
	require.NoError(t, err)
	assert.Equal(t, d1.Root, d2.Root)

	d3, err := Open("/tmp/project-b")
	require.NoError(t, err)
	assert.NotEqual(t, d1.Root, d3.Root)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("TERMIDE_CONFIG_HOME", t.TempDir())
	d, err := Open("/tmp/project-c")
	require.NoError(t, err)

	s := &Session{
		PanelGroups: []PanelGroup{
			{Panels: []SessionPanel{{Kind: PanelEditor, Path: "/tmp/a.go"}}, ExpandedIndex: 0, Width: 80},
		},
		FocusedGroup: 0,
	}
	require.NoError(t, d.Save(s))

	loaded, err := d.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "/tmp/a.go", loaded.PanelGroups[0].Panels[0].Path)
}

func TestLoadMissingReturnsNilNil(t *testing.T) {
	t.Setenv("TERMIDE_CONFIG_HOME", t.TempDir())
	d, err := Open("/tmp/project-d")
	require.NoError(t, err)
	s, err := d.Load()
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestCleanOrphanBuffers(t *testing.T) {
	t.Setenv("TERMIDE_CONFIG_HOME", t.TempDir())
	d, err := Open("/tmp/project-e")
	require.NoError(t, err)

	kept, err := d.NewUnsavedBuffer("keep me")
	require.NoError(t, err)
	orphan, err := d.NewUnsavedBuffer("orphaned")
	require.NoError(t, err)

	s := &Session{PanelGroups: []PanelGroup{
		{Panels: []SessionPanel{{Kind: PanelEditor, UnsavedBufferFile: kept}}},
	}}
	require.NoError(t, d.CleanOrphanBuffers(s))

	_, err = d.ReadUnsavedBuffer(kept)
	assert.NoError(t, err)
	_, err = d.ReadUnsavedBuffer(orphan)
	assert.Error(t, err)
}

func TestRotateLogsRemovesOldFiles(t *testing.T) {
	t.Setenv("TERMIDE_CONFIG_HOME", t.TempDir())
	d, err := Open("/tmp/project-f")
	require.NoError(t, err)

	old := filepath.Join(d.LogsDir(), "old.log")
	fresh := filepath.Join(d.LogsDir(), "fresh.log")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(fresh, []byte("fresh"), 0o600))
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	require.NoError(t, d.RotateLogs(24*time.Hour))
	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err), "a log older than the retention is removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "a recent log is kept")
}
