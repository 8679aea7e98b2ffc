// Package layout implements the Panel Group / Layout Manager of spec
// §4.4: panels are organized into horizontal groups, each a vertical
// accordion with exactly one expanded panel, auto-stacking under a
// configurable minimum width and redistributing width proportionally
// as groups come and go.
package layout

import "github.com/termide/termide/internal/panel"

// Region is a screen area in cells, shared by the nav bar and group
// rendering.
type Region struct {
	X, Y, W, H int
}

// MinGroupWidth is the structural floor every group width must respect
// after redistribution (spec §4.4 invariant).
const MinGroupWidth = 20

// PanelGroup is a vertical accordion of panels with exactly one
// expanded at any time (spec §3's PanelGroup, restated unchanged).
type PanelGroup struct {
	Panels        []panel.Panel
	ExpandedIndex int
	Width         *int // nil means "competes for leftover space"
}

// Expanded returns the group's currently expanded panel, or (nil,
// false) if the group is empty.
func (g *PanelGroup) Expanded() (panel.Panel, bool) {
	if len(g.Panels) == 0 || g.ExpandedIndex >= len(g.Panels) {
		return nil, false
	}
	return g.Panels[g.ExpandedIndex], true
}

// Empty reports whether the group has no panels left (eligible for
// removal, spec §3).
func (g *PanelGroup) Empty() bool { return len(g.Panels) == 0 }

// removeAt removes the panel at index i, clamping ExpandedIndex to stay
// valid for the panels that remain.
func (g *PanelGroup) removeAt(i int) panel.Panel {
	p := g.Panels[i]
	g.Panels = append(g.Panels[:i], g.Panels[i+1:]...)
	if g.ExpandedIndex >= len(g.Panels) && len(g.Panels) > 0 {
		g.ExpandedIndex = len(g.Panels) - 1
	}
	return p
}

// LayoutManager is the ordered sequence of groups plus the focused one
// (spec §3's LayoutManager, restated unchanged).
type LayoutManager struct {
	Groups          []*PanelGroup
	FocusGroupIndex int
	MinPanelWidth   int // config general.min_panel_width, default 40
}

// New creates an empty LayoutManager using minPanelWidth as the
// auto-stacking threshold (config key general.min_panel_width).
func New(minPanelWidth int) *LayoutManager {
	if minPanelWidth <= 0 {
		minPanelWidth = 40
	}
	return &LayoutManager{MinPanelWidth: minPanelWidth}
}

// FocusedGroup returns the group holding focus, or (nil, false) if the
// layout is empty.
func (m *LayoutManager) FocusedGroup() (*PanelGroup, bool) {
	if len(m.Groups) == 0 || m.FocusGroupIndex >= len(m.Groups) {
		return nil, false
	}
	return m.Groups[m.FocusGroupIndex], true
}

// ActivePanel is the expanded panel of the focused group (spec §3:
// "the active panel is groups[focus].panels[groups[focus].expanded_index]").
func (m *LayoutManager) ActivePanel() (panel.Panel, bool) {
	g, ok := m.FocusedGroup()
	if !ok {
		return nil, false
	}
	return g.Expanded()
}

// PanelCount is the total number of panels across every group.
func (m *LayoutManager) PanelCount() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Panels)
	}
	return n
}

// AddPanel implements spec §4.4's "Adding a panel": with no groups,
// create one; otherwise auto-stack into the focused group if a new
// group would fall under availableWidth/(count+1) < MinPanelWidth,
// else open a new focused group to the right and redistribute.
func (m *LayoutManager) AddPanel(p panel.Panel, availableWidth int) {
	if len(m.Groups) == 0 {
		m.Groups = []*PanelGroup{{Panels: []panel.Panel{p}, ExpandedIndex: 0}}
		m.FocusGroupIndex = 0
		return
	}

	wouldBe := availableWidth / (len(m.Groups) + 1)
	if wouldBe < m.MinPanelWidth {
		g, ok := m.FocusedGroup()
		if !ok {
			g = m.Groups[0]
			m.FocusGroupIndex = 0
		}
		g.Panels = append(g.Panels, p)
		g.ExpandedIndex = len(g.Panels) - 1
		return
	}

	newGroup := &PanelGroup{Panels: []panel.Panel{p}, ExpandedIndex: 0}
	m.Groups = append(m.Groups, newGroup)
	m.FocusGroupIndex = len(m.Groups) - 1
	m.RedistributeWidthsProportionally(availableWidth)
}

// ToggleStacking implements spec §4.4: a single-panel focused group
// merges into a neighbor (left preferred); a multi-panel group splits
// its expanded panel into a new group to the right.
func (m *LayoutManager) ToggleStacking(availableWidth int) {
	g, ok := m.FocusedGroup()
	if !ok {
		return
	}

	if len(g.Panels) <= 1 {
		var dest *PanelGroup
		destIdx := -1
		if m.FocusGroupIndex > 0 {
			destIdx = m.FocusGroupIndex - 1
		} else if m.FocusGroupIndex+1 < len(m.Groups) {
			destIdx = m.FocusGroupIndex + 1
		} else {
			return // only group: nothing to merge into
		}
		dest = m.Groups[destIdx]
		dest.Panels = append(dest.Panels, g.Panels...)
		dest.ExpandedIndex = len(dest.Panels) - 1

		removeIdx := m.FocusGroupIndex
		m.Groups = append(m.Groups[:removeIdx], m.Groups[removeIdx+1:]...)
		if removeIdx < destIdx {
			destIdx--
		}
		m.FocusGroupIndex = destIdx
	} else {
		p, _ := g.Expanded()
		g.removeAt(g.ExpandedIndex)
		newGroup := &PanelGroup{Panels: []panel.Panel{p}, ExpandedIndex: 0}
		insertAt := m.FocusGroupIndex + 1
		m.Groups = append(m.Groups[:insertAt], append([]*PanelGroup{newGroup}, m.Groups[insertAt:]...)...)
		m.FocusGroupIndex = insertAt
	}

	m.RedistributeWidthsProportionally(availableWidth)
}

// MoveDirection selects a MovePanel destination.
type MoveDirection int

const (
	MovePrev MoveDirection = iota
	MoveNext
	MoveFirst
	MoveLast
)

// MovePanel implements spec §4.4's "Moving a panel": the active panel
// moves to an adjacent/first/last group, becomes expanded there, and
// focus follows it. If the source group becomes empty it is removed
// and widths redistribute.
func (m *LayoutManager) MovePanel(dir MoveDirection, availableWidth int) {
	srcIdx := m.FocusGroupIndex
	src, ok := m.FocusedGroup()
	if !ok || len(src.Panels) == 0 {
		return
	}

	var dstIdx int
	switch dir {
	case MovePrev:
		dstIdx = srcIdx - 1
	case MoveNext:
		dstIdx = srcIdx + 1
	case MoveFirst:
		dstIdx = 0
	case MoveLast:
		dstIdx = len(m.Groups) - 1
	}
	if dstIdx == srcIdx || dstIdx < 0 || dstIdx >= len(m.Groups) {
		return
	}

	p := src.removeAt(src.ExpandedIndex)
	dst := m.Groups[dstIdx]
	dst.Panels = append(dst.Panels, p)
	dst.ExpandedIndex = len(dst.Panels) - 1

	if src.Empty() {
		m.Groups = append(m.Groups[:srcIdx], m.Groups[srcIdx+1:]...)
		if dstIdx > srcIdx {
			dstIdx--
		}
		m.RedistributeWidthsProportionally(availableWidth)
	}
	m.FocusGroupIndex = dstIdx
}

// CloseActivePanel implements spec §4.4: if the active panel is the
// last in its group, the group is removed and widths redistribute;
// otherwise only the panel is removed and the group keeps its width.
// Focus shifts to the nearest surviving group.
func (m *LayoutManager) CloseActivePanel(availableWidth int) (panel.Panel, bool) {
	g, ok := m.FocusedGroup()
	if !ok {
		return nil, false
	}
	p, ok := g.Expanded()
	if !ok {
		return nil, false
	}
	g.removeAt(g.ExpandedIndex)

	if g.Empty() {
		idx := m.FocusGroupIndex
		m.Groups = append(m.Groups[:idx], m.Groups[idx+1:]...)
		switch {
		case len(m.Groups) == 0:
			m.FocusGroupIndex = 0
		case idx < len(m.Groups):
			m.FocusGroupIndex = idx
		default:
			m.FocusGroupIndex = len(m.Groups) - 1
		}
		m.RedistributeWidthsProportionally(availableWidth)
	}
	return p, true
}

// FocusNextGroup / FocusPrevGroup cycle focus across groups, used by
// the pane navigation bar and global next/prev-panel shortcuts.
func (m *LayoutManager) FocusNextGroup() {
	if len(m.Groups) == 0 {
		return
	}
	m.FocusGroupIndex = (m.FocusGroupIndex + 1) % len(m.Groups)
}

func (m *LayoutManager) FocusPrevGroup() {
	if len(m.Groups) == 0 {
		return
	}
	m.FocusGroupIndex = (m.FocusGroupIndex - 1 + len(m.Groups)) % len(m.Groups)
}

// RedistributeWidthsProportionally implements spec §4.4's final
// paragraph: freeze previously-auto groups to their currently-computed
// actual widths, scale every width so the sum equals total, give the
// last group the remainder for an exact fit, and never let a width
// fall below MinGroupWidth.
func (m *LayoutManager) RedistributeWidthsProportionally(total int) {
	n := len(m.Groups)
	if n == 0 {
		return
	}

	actual := m.computedWidths(total)
	sum := 0
	for _, w := range actual {
		sum += w
	}
	if sum == 0 {
		sum = 1
	}

	widths := make([]int, n)
	assigned := 0
	for i := 0; i < n-1; i++ {
		w := actual[i] * total / sum
		if w < MinGroupWidth {
			w = MinGroupWidth
		}
		widths[i] = w
		assigned += w
	}
	last := total - assigned
	if last < MinGroupWidth {
		last = MinGroupWidth
	}
	widths[n-1] = last

	for i, g := range m.Groups {
		w := widths[i]
		g.Width = &w
	}
}

// computedWidths returns each group's best-known current width: its
// frozen Width if set; a group without one gets the mean of the frozen
// widths when any exist, else an equal share of total.
func (m *LayoutManager) computedWidths(total int) []int {
	n := len(m.Groups)
	out := make([]int, n)
	share := total / n
	frozenSum, frozenCount := 0, 0
	for _, g := range m.Groups {
		if g.Width != nil {
			frozenSum += *g.Width
			frozenCount++
		}
	}
	if frozenCount > 0 {
		share = frozenSum / frozenCount
	}
	for i, g := range m.Groups {
		if g.Width != nil {
			out[i] = *g.Width
		} else {
			out[i] = share
		}
	}
	return out
}

// Regions returns the screen Region for every group in left-to-right
// order, given the full available area, per the widths last computed
// by RedistributeWidthsProportionally.
func (m *LayoutManager) Regions(area Region) []Region {
	regions := make([]Region, len(m.Groups))
	x := area.X
	divisor := len(m.Groups)
	if divisor == 0 {
		divisor = 1
	}
	for i, g := range m.Groups {
		w := area.W / divisor
		if g.Width != nil {
			w = *g.Width
		}
		regions[i] = Region{X: x, Y: area.Y, W: w, H: area.H}
		x += w
	}
	return regions
}
