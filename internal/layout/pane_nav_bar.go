package layout

import (
	"fmt"

	"github.com/termide/termide/internal/render"
)

// Pane icons (Nerd Font glyphs), kept from the teacher's nav bar.
const (
	PaneIconFolder        = '' // nf-fa-folder
	PaneIconSourceControl = '' // nf-dev-git_branch
	PaneIconCode          = '' // nf-fa-code
	PaneIconTerminal      = '' // nf-oct-terminal
)

// PaneInfo describes one entry in the nav bar: a group and whether it
// currently holds focus (generalized from the teacher's fixed
// Files/Git/Editor/Term1-3 slots into one entry per dynamic group).
type PaneInfo struct {
	Key      string // display shortcut, "1".."9" then "a"
	Name     string
	Icon     rune
	IsFocus  bool
	GroupIdx int
}

// paneClickRegion tracks a clickable nav-bar span, populated during Render.
type paneClickRegion struct {
	StartX, EndX int
	GroupIdx     int
}

// NavBar is the persistent top-of-screen strip listing groups and their
// focus state (spec's supplemented "Pane navigation bar" feature).
// Adapted from the teacher's tcell-bound PaneNavBar onto the render
// collaborator interface, and generalized from a fixed pane set to the
// dynamic group sequence a LayoutManager actually holds.
type NavBar struct {
	Region       Region
	Manager      *LayoutManager
	clickRegions []paneClickRegion
}

func NewNavBar(m *LayoutManager) *NavBar { return &NavBar{Manager: m} }

func iconFor(title string) rune {
	switch title {
	case "Terminal":
		return PaneIconTerminal
	default:
		return PaneIconCode
	}
}

// panes builds one PaneInfo per group, named by its expanded panel's
// title, with a key from "1".."9" then "a", "b", ... past nine groups.
func (n *NavBar) panes() []PaneInfo {
	if n.Manager == nil {
		return nil
	}
	out := make([]PaneInfo, 0, len(n.Manager.Groups))
	for i, g := range n.Manager.Groups {
		title := "(empty)"
		if p, ok := g.Expanded(); ok {
			title = p.Title()
		}
		var key string
		if i < 9 {
			key = fmt.Sprintf("%d", i+1)
		} else {
			key = string(rune('a' + i - 9))
		}
		out = append(out, PaneInfo{
			Key: key, Name: title, Icon: iconFor(title),
			IsFocus: i == n.Manager.FocusGroupIndex, GroupIdx: i,
		})
	}
	return out
}

// Render draws "ALT+ " followed by each group's key, icon, and name,
// highlighting the focused group, and records click regions.
func (n *NavBar) Render(cb render.CellBuffer, theme render.Theme) {
	bg := render.Style{Fg: theme.Foreground, Bg: theme.Background}
	for x := 0; x < n.Region.W; x++ {
		cb.DrawText(n.Region.X+x, n.Region.Y, bg, " ")
	}

	x := n.Region.X
	altStyle := render.Style{Fg: theme.GutterDefault, Bg: theme.Background}
	cb.DrawText(x, n.Region.Y, altStyle, " ALT+ ")
	x += len(" ALT+ ") + 1

	n.clickRegions = nil
	for _, p := range n.panes() {
		start := x
		style := render.Style{Fg: theme.GutterDefault, Bg: theme.Background}
		if p.IsFocus {
			style = render.Style{Fg: theme.Accent, Bg: theme.Background, Bold: true}
		}
		label := fmt.Sprintf("%s %c %s", p.Key, p.Icon, p.Name)
		cb.DrawText(x, n.Region.Y, style, label)
		x += len(label)
		n.clickRegions = append(n.clickRegions, paneClickRegion{StartX: start, EndX: x, GroupIdx: p.GroupIdx})
		x += 4
	}
}

// IsInNavBar reports whether (x, y) falls within the nav bar's region.
func (n *NavBar) IsInNavBar(x, y int) bool {
	return y == n.Region.Y && x >= n.Region.X && x < n.Region.X+n.Region.W
}

// GetClickedGroup returns the group index under (x, y), or (-1, false)
// if the click missed every entry.
func (n *NavBar) GetClickedGroup(x, y int) (int, bool) {
	if y != n.Region.Y {
		return -1, false
	}
	for _, r := range n.clickRegions {
		if x >= r.StartX && x < r.EndX {
			return r.GroupIdx, true
		}
	}
	return -1, false
}

// HandleClick focuses the group at (x, y) if one was clicked there.
func (n *NavBar) HandleClick(x, y int) bool {
	idx, ok := n.GetClickedGroup(x, y)
	if !ok {
		return false
	}
	n.Manager.FocusGroupIndex = idx
	return true
}
