package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termide/termide/internal/panel"
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/session"
)

// fakePanel is a minimal Panel implementation for layout tests; it
// carries only a title, the one thing the nav bar and these tests need.
type fakePanel struct{ name string }

func (f *fakePanel) Render(render.Rect, render.CellBuffer, bool, render.Theme)      {}
func (f *fakePanel) HandleKey(panel.Key) []panel.Event                             { return nil }
func (f *fakePanel) HandleMouse(panel.MouseEvent, render.Rect) []panel.Event        { return nil }
func (f *fakePanel) Title() string                                                 { return f.name }
func (f *fakePanel) ShouldAutoClose() bool                                         { return false }
func (f *fakePanel) NeedsCloseConfirmation() (string, bool)                        { return "", false }
func (f *fakePanel) CapturesEscape() bool                                          { return false }
func (f *fakePanel) ToSessionDescriptor() (session.SessionPanel, bool)             { return session.SessionPanel{}, false }
func (f *fakePanel) HandleCommand(panel.Command) panel.CommandResult               { return panel.CommandResult{} }

func TestAddPanelAutoStacksScenarioS1(t *testing.T) {
	m := New(40)

	m.AddPanel(&fakePanel{name: "FileManager"}, 80)
	require.Len(t, m.Groups, 1)
	m.RedistributeWidthsProportionally(80)
	assert.Equal(t, 80, *m.Groups[0].Width)

	m.AddPanel(&fakePanel{name: "a.txt"}, 80)
	require.Len(t, m.Groups, 2)
	assert.Equal(t, 40, *m.Groups[0].Width)
	assert.Equal(t, 40, *m.Groups[1].Width)
	assert.Equal(t, 1, m.FocusGroupIndex)

	m.AddPanel(&fakePanel{name: "b.txt"}, 80)
	require.Len(t, m.Groups, 2, "b.txt auto-stacks instead of opening a third group")
	assert.Equal(t, 40, *m.Groups[0].Width)
	assert.Equal(t, 40, *m.Groups[1].Width)

	focused := m.Groups[m.FocusGroupIndex]
	require.Len(t, focused.Panels, 2)
	expanded, ok := focused.Expanded()
	require.True(t, ok)
	assert.Equal(t, "b.txt", expanded.Title())
}

func TestFocusedGroupInvariant(t *testing.T) {
	m := New(40)
	_, ok := m.FocusedGroup()
	assert.False(t, ok, "an empty layout has no focused group")

	m.AddPanel(&fakePanel{name: "one"}, 80)
	g, ok := m.FocusedGroup()
	require.True(t, ok)
	assert.Less(t, g.ExpandedIndex, len(g.Panels))
}

func TestRedistributeWidthSum(t *testing.T) {
	m := New(20)
	for i := 0; i < 4; i++ {
		m.AddPanel(&fakePanel{name: "p"}, 200)
	}
	m.RedistributeWidthsProportionally(97)

	sum := 0
	for _, g := range m.Groups {
		require.NotNil(t, g.Width)
		assert.GreaterOrEqual(t, *g.Width, MinGroupWidth)
		sum += *g.Width
	}
	assert.Equal(t, 97, sum)
}

func TestCloseActivePanelRemovesEmptyGroup(t *testing.T) {
	m := New(40)
	m.AddPanel(&fakePanel{name: "a"}, 80)
	m.AddPanel(&fakePanel{name: "b"}, 80)
	require.Len(t, m.Groups, 2)

	closed, ok := m.CloseActivePanel(80)
	require.True(t, ok)
	assert.Equal(t, "b", closed.Title())
	assert.Len(t, m.Groups, 1, "the now-empty group is removed")
	assert.Equal(t, 80, *m.Groups[0].Width)
}

func TestToggleStackingSplitsMultiPanelGroup(t *testing.T) {
	m := New(10)
	m.AddPanel(&fakePanel{name: "a"}, 200)
	m.AddPanel(&fakePanel{name: "b"}, 200) // second group (width allows it)
	// Force both into one group to exercise the split path.
	m.Groups[0].Panels = append(m.Groups[0].Panels, m.Groups[1].Panels...)
	m.Groups[0].ExpandedIndex = 1
	m.Groups = m.Groups[:1]
	m.FocusGroupIndex = 0

	m.ToggleStacking(200)
	require.Len(t, m.Groups, 2)
	assert.Equal(t, 1, m.FocusGroupIndex)
}

func TestMovePanelToNextGroup(t *testing.T) {
	m := New(10)
	m.AddPanel(&fakePanel{name: "a"}, 200)
	m.AddPanel(&fakePanel{name: "b"}, 200)
	m.FocusGroupIndex = 0

	m.MovePanel(MoveNext, 200)
	assert.Len(t, m.Groups, 1, "source group empties and is removed")
	assert.Len(t, m.Groups[0].Panels, 2)
}
